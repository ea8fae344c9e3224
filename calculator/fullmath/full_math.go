package fullmath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	// MaxUint256 is 2^256 - 1, the largest value the protocol's unchecked
	// accumulators can hold.
	MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	ErrDivisionByZero = errors.New("fullmath: division by zero")

	one = big.NewInt(1)
)

// MulDiv writes floor(a * b / denominator) into dest. The intermediate product
// is computed at full width, so no 256-bit overflow handling is needed.
func MulDiv(dest, a, b, denominator *big.Int) error {
	if denominator.Sign() == 0 {
		return ErrDivisionByZero
	}
	product := new(big.Int).Mul(a, b)
	dest.Div(product, denominator)
	return nil
}

// MulDivRoundingUp writes ceil(a * b / denominator) into dest: the truncated
// quotient is bumped by one whenever the division left a nonzero remainder.
func MulDivRoundingUp(dest, a, b, denominator *big.Int) error {
	if denominator.Sign() == 0 {
		return ErrDivisionByZero
	}
	product := new(big.Int).Mul(a, b)
	rem := new(big.Int)
	dest.QuoRem(product, denominator, rem)
	if rem.Sign() != 0 {
		dest.Add(dest, one)
	}
	return nil
}

// The In256 helpers replicate Solidity unchecked uint256 arithmetic. The
// protocol's fee-growth accumulators intentionally wrap, so these must not
// saturate or error. uint256.Int arithmetic wraps mod 2^256 natively.

// MulIn256 returns a * b mod 2^256.
func MulIn256(a, b *uint256.Int) *uint256.Int {
	return new(uint256.Int).Mul(a, b)
}

// AddIn256 returns a + b mod 2^256.
func AddIn256(a, b *uint256.Int) *uint256.Int {
	return new(uint256.Int).Add(a, b)
}

// SubIn256 returns a - b mod 2^256: an underflow wraps around by 2^256.
func SubIn256(a, b *uint256.Int) *uint256.Int {
	return new(uint256.Int).Sub(a, b)
}
