package tickmath

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create a big.Int from a string for tests.
func fromString(s string) *big.Int {
	n, _ := new(big.Int).SetString(s, 10)
	return n
}

// powFloat computes 1.0001^exp by squaring at 256-bit precision.
func powFloat(exp int) *big.Float {
	// 1.0001 held exactly as 10001/10000.
	base := new(big.Float).SetPrec(256).Quo(
		new(big.Float).SetPrec(256).SetInt64(10001),
		new(big.Float).SetPrec(256).SetInt64(10000),
	)
	result := new(big.Float).SetPrec(256).SetInt64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result.Mul(result, base)
		}
		base.Mul(base, base)
		exp >>= 1
	}
	return result
}

// encodePriceSqrt is a Go equivalent of the ethers.js helper for testing.
func encodePriceSqrt(reserve1, reserve0 *big.Int) *big.Int {
	num := new(big.Int).Mul(reserve1, new(big.Int).Lsh(big.NewInt(1), 192))
	ratio := new(big.Int).Div(num, reserve0)
	return new(big.Int).Sqrt(ratio)
}

func TestSqrtRatioAtTick(t *testing.T) {

	t.Run("throws for too low", func(t *testing.T) {
		temp := new(big.Int)
		err := SqrtRatioAtTick(temp, MIN_TICK-1)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidTick)
	})

	t.Run("throws for too high", func(t *testing.T) {
		temp := new(big.Int)
		err := SqrtRatioAtTick(temp, MAX_TICK+1)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidTick)
	})

	t.Run("min tick", func(t *testing.T) {
		sqrtP := new(big.Int)
		err := SqrtRatioAtTick(sqrtP, MIN_TICK)
		require.NoError(t, err)
		assert.Zero(t, fromString("4295128739").Cmp(sqrtP))
	})

	t.Run("max tick", func(t *testing.T) {
		sqrtP := new(big.Int)
		err := SqrtRatioAtTick(sqrtP, MAX_TICK)
		require.NoError(t, err)
		assert.Zero(t, fromString("1461446703485210103287273052203988822378723970342").Cmp(sqrtP))
	})

	t.Run("tick zero is exactly 2^96", func(t *testing.T) {
		sqrtP := new(big.Int)
		err := SqrtRatioAtTick(sqrtP, 0)
		require.NoError(t, err)
		assert.Zero(t, new(big.Int).Lsh(big.NewInt(1), 96).Cmp(sqrtP))
	})

	t.Run("matches float reference within 1 ppm", func(t *testing.T) {
		for _, absTick := range []int{50, 100, 250, 500, 1000, 2500, 3000, 4000, 50000, 150000, 250000, 500000, 738203} {
			for _, tick := range []int{-absTick, absTick} {
				sqrtP := new(big.Int)
				require.NoError(t, SqrtRatioAtTick(sqrtP, tick))

				// sqrt(1.0001^tick) * 2^96 at 256-bit float precision.
				ref := powFloat(absTick)
				if tick < 0 {
					ref.Quo(new(big.Float).SetPrec(256).SetInt64(1), ref)
				}
				ref.Sqrt(ref)
				ref.Mul(ref, new(big.Float).SetPrec(256).SetInt(new(big.Int).Lsh(big.NewInt(1), 96)))

				got := new(big.Float).SetPrec(256).SetInt(sqrtP)
				diff := new(big.Float).Sub(got, ref)
				diff.Abs(diff)
				bound := new(big.Float).Quo(ref, big.NewFloat(1e6))
				assert.True(t, diff.Cmp(bound) < 0, "tick %d off by more than 1ppm", tick)
			}
		}
	})

	t.Run("monotonically increasing", func(t *testing.T) {
		prev := new(big.Int)
		require.NoError(t, SqrtRatioAtTick(prev, -1000))
		for tick := -999; tick <= 1000; tick++ {
			sqrtP := new(big.Int)
			require.NoError(t, SqrtRatioAtTick(sqrtP, tick))
			assert.True(t, sqrtP.Cmp(prev) > 0, "tick %d", tick)
			prev.Set(sqrtP)
		}
	})
}

func TestTickAtSqrtRatio(t *testing.T) {
	t.Run("throws for too low", func(t *testing.T) {
		_, err := TickAtSqrtRatio(new(big.Int).Sub(MIN_SQRT_RATIO, big.NewInt(1)))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidSqrtRatio)
	})

	t.Run("throws for too high", func(t *testing.T) {
		_, err := TickAtSqrtRatio(MAX_SQRT_RATIO)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidSqrtRatio)
	})

	t.Run("ratio of min tick", func(t *testing.T) {
		tick, err := TickAtSqrtRatio(MIN_SQRT_RATIO)
		require.NoError(t, err)
		assert.Equal(t, MIN_TICK, tick)
	})

	t.Run("ratio closest to max tick", func(t *testing.T) {
		tick, err := TickAtSqrtRatio(new(big.Int).Sub(MAX_SQRT_RATIO, big.NewInt(1)))
		require.NoError(t, err)
		assert.Equal(t, MAX_TICK-1, tick)
	})

	// Table-driven test for various ratios
	ratios := []struct {
		name  string
		ratio *big.Int
	}{
		{"MIN_SQRT_RATIO", MIN_SQRT_RATIO},
		{"1e12:1", encodePriceSqrt(new(big.Int).Exp(big.NewInt(10), big.NewInt(12), nil), big.NewInt(1))},
		{"1e6:1", encodePriceSqrt(new(big.Int).Exp(big.NewInt(10), big.NewInt(6), nil), big.NewInt(1))},
		{"1:64", encodePriceSqrt(big.NewInt(1), big.NewInt(64))},
		{"1:8", encodePriceSqrt(big.NewInt(1), big.NewInt(8))},
		{"1:2", encodePriceSqrt(big.NewInt(1), big.NewInt(2))},
		{"1:1", encodePriceSqrt(big.NewInt(1), big.NewInt(1))},
		{"2:1", encodePriceSqrt(big.NewInt(2), big.NewInt(1))},
		{"8:1", encodePriceSqrt(big.NewInt(8), big.NewInt(1))},
		{"64:1", encodePriceSqrt(big.NewInt(64), big.NewInt(1))},
		{"1:1e6", encodePriceSqrt(big.NewInt(1), new(big.Int).Exp(big.NewInt(10), big.NewInt(6), nil))},
		{"1:1e12", encodePriceSqrt(big.NewInt(1), new(big.Int).Exp(big.NewInt(10), big.NewInt(12), nil))},
		{"MAX_SQRT_RATIO-1", new(big.Int).Sub(MAX_SQRT_RATIO, big.NewInt(1))},
	}

	for _, tc := range ratios {
		t.Run(tc.name, func(t *testing.T) {
			tick, err := TickAtSqrtRatio(tc.ratio)
			require.NoError(t, err)
			ratioOfTick := new(big.Int)
			err = SqrtRatioAtTick(ratioOfTick, tick)
			require.NoError(t, err)
			ratioOfTickPlusOne := new(big.Int)
			err = SqrtRatioAtTick(ratioOfTickPlusOne, tick+1)
			require.NoError(t, err)

			// Invariant: ratioOfTick <= ratio < ratioOfTickPlusOne
			assert.True(t, tc.ratio.Cmp(ratioOfTick) >= 0)
			assert.True(t, tc.ratio.Cmp(ratioOfTickPlusOne) < 0)
		})
	}
}

// TestInvariants_InverseFunctions checks that TickAtSqrtRatio is the inverse of
// SqrtRatioAtTick across the whole tick range.
func TestInvariants_InverseFunctions(t *testing.T) {
	for i := 0; i < 1000; i++ {
		// Generate a random tick within the valid range.
		tickRange := big.NewInt(int64(MAX_TICK - MIN_TICK))
		randomOffset, _ := rand.Int(rand.Reader, tickRange)
		tick := MIN_TICK + int(randomOffset.Int64())
		sqrtP := new(big.Int)
		err := SqrtRatioAtTick(sqrtP, tick)
		require.NoError(t, err)

		tickCalculated, err := TickAtSqrtRatio(sqrtP)
		require.NoError(t, err)

		// The calculated tick should be equal to the original tick.
		assert.Equal(t, tick, tickCalculated, "tick %d -> sqrtP %s -> tick %d", tick, sqrtP.String(), tickCalculated)
	}
}
