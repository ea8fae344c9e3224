package fullmath

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromString(s string) *big.Int {
	n, _ := new(big.Int).SetString(s, 10)
	return n
}

func TestMulDiv(t *testing.T) {
	q128 := new(big.Int).Lsh(big.NewInt(1), 128)

	t.Run("reverts on zero denominator", func(t *testing.T) {
		dest := new(big.Int)
		err := MulDiv(dest, q128, big.NewInt(5), big.NewInt(0))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDivisionByZero)
	})

	t.Run("accurate without phantom overflow", func(t *testing.T) {
		// q128 * 0.5 / 1.5 = q128 / 3
		dest := new(big.Int)
		err := MulDiv(dest, q128, new(big.Int).Rsh(q128, 1), new(big.Int).Add(q128, new(big.Int).Rsh(q128, 1)))
		require.NoError(t, err)
		assert.Zero(t, dest.Cmp(new(big.Int).Div(q128, big.NewInt(3))))
	})

	t.Run("accurate with phantom overflow", func(t *testing.T) {
		// The full product exceeds 256 bits; big.Int carries it anyway.
		dest := new(big.Int)
		err := MulDiv(dest, q128, new(big.Int).Mul(big.NewInt(35), q128), new(big.Int).Mul(big.NewInt(8), q128))
		require.NoError(t, err)
		want := new(big.Int).Div(new(big.Int).Mul(big.NewInt(4375), q128), big.NewInt(1000))
		assert.Zero(t, dest.Cmp(want))
	})

	t.Run("truncates toward zero", func(t *testing.T) {
		dest := new(big.Int)
		err := MulDiv(dest, big.NewInt(7), big.NewInt(1), big.NewInt(2))
		require.NoError(t, err)
		assert.Equal(t, int64(3), dest.Int64())
	})
}

func TestMulDivRoundingUp(t *testing.T) {
	t.Run("reverts on zero denominator", func(t *testing.T) {
		dest := new(big.Int)
		err := MulDivRoundingUp(dest, big.NewInt(1), big.NewInt(5), big.NewInt(0))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDivisionByZero)
	})

	t.Run("exact division does not round", func(t *testing.T) {
		dest := new(big.Int)
		err := MulDivRoundingUp(dest, big.NewInt(6), big.NewInt(2), big.NewInt(3))
		require.NoError(t, err)
		assert.Equal(t, int64(4), dest.Int64())
	})

	t.Run("nonzero remainder rounds up", func(t *testing.T) {
		dest := new(big.Int)
		err := MulDivRoundingUp(dest, big.NewInt(7), big.NewInt(1), big.NewInt(2))
		require.NoError(t, err)
		assert.Equal(t, int64(4), dest.Int64())
	})

	t.Run("never smaller than floor", func(t *testing.T) {
		a := fromString("115792089237316195423570985008687907853269984665640564039457")
		b := big.NewInt(777)
		d := big.NewInt(131)

		up, down := new(big.Int), new(big.Int)
		require.NoError(t, MulDivRoundingUp(up, a, b, d))
		require.NoError(t, MulDiv(down, a, b, d))
		diff := new(big.Int).Sub(up, down)
		assert.True(t, diff.Sign() >= 0)
		assert.True(t, diff.Cmp(big.NewInt(2)) < 0)
	})
}

func TestIn256Helpers(t *testing.T) {
	maxU256 := uint256.MustFromBig(MaxUint256)

	t.Run("add wraps at 2^256", func(t *testing.T) {
		got := AddIn256(maxU256, uint256.NewInt(1))
		assert.True(t, got.IsZero())
	})

	t.Run("sub wraps below zero", func(t *testing.T) {
		got := SubIn256(uint256.NewInt(0), uint256.NewInt(1))
		assert.Zero(t, got.Cmp(maxU256))
	})

	t.Run("mul wraps at 2^256", func(t *testing.T) {
		half := new(uint256.Int).Rsh(maxU256, 1) // 2^255 - 1
		got := MulIn256(new(uint256.Int).Add(half, uint256.NewInt(2)), uint256.NewInt(2))
		// (2^255 + 1) * 2 = 2^256 + 2 -> wraps to 2
		assert.Zero(t, got.Cmp(uint256.NewInt(2)))
	})
}
