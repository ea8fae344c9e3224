package liquiditymath

import (
	"errors"
	"math/big"

	"github.com/defiroute/clamm-go/calculator/fullmath"
	"github.com/defiroute/clamm-go/calculator/sqrtpricemath"
)

var (
	// maxUint128 is the maximum value for a uint128 (2^128 - 1), the width of
	// on-chain liquidity.
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	ErrLiquidityOverflow  = errors.New("liquiditymath: liquidity overflow")
	ErrLiquidityUnderflow = errors.New("liquiditymath: liquidity underflow")
)

// AddDelta adds a signed liquidity delta to an unsigned liquidity value,
// failing if the result leaves the uint128 range.
func AddDelta(dest *big.Int, x *big.Int, y *big.Int) error {
	dest.Add(x, y)
	if dest.Sign() < 0 {
		return ErrLiquidityUnderflow
	}
	if dest.Cmp(maxUint128) > 0 {
		return ErrLiquidityOverflow
	}
	return nil
}

// maxLiquidityForAmount0Imprecise matches the simplified on-chain
// LiquidityAmounts helper: the sqrtA*sqrtB product is pre-truncated to Q96,
// losing precision on the way.
func maxLiquidityForAmount0Imprecise(sqrtRatioAX96, sqrtRatioBX96, amount0 *big.Int) *big.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	intermediate := new(big.Int)
	_ = fullmath.MulDiv(intermediate, sqrtRatioAX96, sqrtRatioBX96, sqrtpricemath.Q96)
	dest := new(big.Int)
	_ = fullmath.MulDiv(dest, amount0, intermediate, new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96))
	return dest
}

// maxLiquidityForAmount0Precise keeps the full numerator width. Only usable
// off-chain; on-chain callers must use the imprecise form for parity.
func maxLiquidityForAmount0Precise(sqrtRatioAX96, sqrtRatioBX96, amount0 *big.Int) *big.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	numerator := new(big.Int).Mul(amount0, sqrtRatioAX96)
	numerator.Mul(numerator, sqrtRatioBX96)
	denominator := new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)
	denominator.Mul(denominator, sqrtpricemath.Q96)
	return numerator.Div(numerator, denominator)
}

func maxLiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1 *big.Int) *big.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	dest := new(big.Int)
	_ = fullmath.MulDiv(dest, amount1, sqrtpricemath.Q96, new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96))
	return dest
}

// MaxLiquidityForAmounts computes the maximum liquidity a position over
// [sqrtRatioAX96, sqrtRatioBX96] can receive for the given token amounts at
// the current price. Below the range only token0 counts, above it only
// token1; in range the binding side wins. useFullPrecision selects the
// precise token0 formula, which must be off for on-chain mint parity.
func MaxLiquidityForAmounts(sqrtRatioCurrentX96, sqrtRatioAX96, sqrtRatioBX96, amount0, amount1 *big.Int, useFullPrecision bool) *big.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	maxLiquidityForAmount0 := maxLiquidityForAmount0Imprecise
	if useFullPrecision {
		maxLiquidityForAmount0 = maxLiquidityForAmount0Precise
	}

	if sqrtRatioCurrentX96.Cmp(sqrtRatioAX96) <= 0 {
		return maxLiquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0)
	}
	if sqrtRatioCurrentX96.Cmp(sqrtRatioBX96) < 0 {
		liquidity0 := maxLiquidityForAmount0(sqrtRatioCurrentX96, sqrtRatioBX96, amount0)
		liquidity1 := maxLiquidityForAmount1(sqrtRatioAX96, sqrtRatioCurrentX96, amount1)
		if liquidity0.Cmp(liquidity1) < 0 {
			return liquidity0
		}
		return liquidity1
	}
	return maxLiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1)
}
