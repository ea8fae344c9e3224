package sqrtpricemath

import (
	"errors"
	"math/big"
	"sync"
)

var (
	// Q96 is the UQ64.96 fixed-point number representing 1.
	Q96 = new(big.Int).Lsh(big.NewInt(1), 96)
	// Resolution is the number of fractional bits in the Q96 format.
	Resolution = uint(96)

	ErrLiquidityZero = errors.New("sqrtpricemath: liquidity must be greater than zero")
	ErrSqrtPriceZero = errors.New("sqrtpricemath: sqrt price must be greater than zero")

	// ErrInsufficientLiquidity is returned when removing the requested amount
	// would push the price past what the current liquidity can support.
	ErrInsufficientLiquidity = errors.New("sqrtpricemath: insufficient liquidity for requested amount")

	one = big.NewInt(1)
)

// sqrtPriceMath holds reusable big.Int scratch values. Instances are managed
// by a sync.Pool for safe concurrent use.
type sqrtPriceMath struct {
	product     *big.Int
	numerator1  *big.Int
	numerator2  *big.Int
	denominator *big.Int
	quotient    *big.Int
	term        *big.Int
	rem         *big.Int
}

var pool = sync.Pool{
	New: func() any {
		return &sqrtPriceMath{
			product:     new(big.Int),
			numerator1:  new(big.Int),
			numerator2:  new(big.Int),
			denominator: new(big.Int),
			quotient:    new(big.Int),
			term:        new(big.Int),
			rem:         new(big.Int),
		}
	},
}

// --- Zero-allocation helper methods (internal) ---

// mulDiv writes (a * b) / c into dest.
func (s *sqrtPriceMath) mulDiv(dest, a, b, c *big.Int) {
	s.product.Mul(a, b)
	dest.Div(s.product, c)
}

// mulDivRoundingUp writes ceil((a * b) / c) into dest.
func (s *sqrtPriceMath) mulDivRoundingUp(dest, a, b, c *big.Int) {
	s.product.Mul(a, b)
	dest.Div(s.product, c)
	if s.rem.Rem(s.product, c).Sign() > 0 {
		dest.Add(dest, one)
	}
}

// divRoundingUp writes ceil(a / b) into dest.
func (s *sqrtPriceMath) divRoundingUp(dest, a, b *big.Int) {
	dest.Div(a, b)
	if s.rem.Rem(a, b).Sign() > 0 {
		dest.Add(dest, one)
	}
}

// --- Public API with destination-passing ---

// NextSqrtPriceFromAmount0RoundingUp calculates the price after a delta of
// token0 is added to (or removed from) the pool.
func NextSqrtPriceFromAmount0RoundingUp(dest, sqrtPX96, liquidity, amount *big.Int, add bool) error {
	s := pool.Get().(*sqrtPriceMath)
	defer pool.Put(s)
	return s.nextSqrtPriceFromAmount0RoundingUp(dest, sqrtPX96, liquidity, amount, add)
}

// NextSqrtPriceFromAmount1RoundingDown calculates the price after a delta of
// token1 is added to (or removed from) the pool.
func NextSqrtPriceFromAmount1RoundingDown(dest, sqrtPX96, liquidity, amount *big.Int, add bool) error {
	s := pool.Get().(*sqrtPriceMath)
	defer pool.Put(s)
	return s.nextSqrtPriceFromAmount1RoundingDown(dest, sqrtPX96, liquidity, amount, add)
}

// NextSqrtPriceFromInput calculates the price after an input amount is swapped
// in. Rounds in the pool's favor: the returned price never lets the swapper
// receive more than the input pays for.
func NextSqrtPriceFromInput(dest, sqrtPX96, liquidity, amountIn *big.Int, zeroForOne bool) error {
	if sqrtPX96.Sign() <= 0 {
		return ErrSqrtPriceZero
	}
	if liquidity.Sign() <= 0 {
		return ErrLiquidityZero
	}

	if zeroForOne {
		return NextSqrtPriceFromAmount0RoundingUp(dest, sqrtPX96, liquidity, amountIn, true)
	}
	return NextSqrtPriceFromAmount1RoundingDown(dest, sqrtPX96, liquidity, amountIn, true)
}

// NextSqrtPriceFromOutput calculates the price after an output amount is
// swapped out. Fails with ErrInsufficientLiquidity when the requested output
// exceeds what the in-range liquidity holds.
func NextSqrtPriceFromOutput(dest, sqrtPX96, liquidity, amountOut *big.Int, zeroForOne bool) error {
	if sqrtPX96.Sign() <= 0 {
		return ErrSqrtPriceZero
	}
	if liquidity.Sign() <= 0 {
		return ErrLiquidityZero
	}

	if zeroForOne {
		return NextSqrtPriceFromAmount1RoundingDown(dest, sqrtPX96, liquidity, amountOut, false)
	}
	return NextSqrtPriceFromAmount0RoundingUp(dest, sqrtPX96, liquidity, amountOut, false)
}

// Amount0Delta calculates the token0 amount between two prices for a given
// liquidity; roundUp selects which of the two equivalent formulas is used.
func Amount0Delta(dest, sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int, roundUp bool) error {
	s := pool.Get().(*sqrtPriceMath)
	defer pool.Put(s)
	return s.amount0Delta(dest, sqrtRatioAX96, sqrtRatioBX96, liquidity, roundUp)
}

// Amount1Delta calculates the token1 amount between two prices for a given
// liquidity.
func Amount1Delta(dest, sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int, roundUp bool) {
	s := pool.Get().(*sqrtPriceMath)
	defer pool.Put(s)
	s.amount1Delta(dest, sqrtRatioAX96, sqrtRatioBX96, liquidity, roundUp)
}

// EncodeSqrtRatioX96 converts a price given as amount1/amount0 into its
// Q64.96 square-root representation.
func EncodeSqrtRatioX96(amount1, amount0 *big.Int) *big.Int {
	ratio := new(big.Int).Lsh(amount1, 192)
	ratio.Div(ratio, amount0)
	return ratio.Sqrt(ratio)
}

// --- Internal implementations ---

func (s *sqrtPriceMath) nextSqrtPriceFromAmount0RoundingUp(dest, sqrtPX96, liquidity, amount *big.Int, add bool) error {
	if amount.Sign() == 0 {
		dest.Set(sqrtPX96)
		return nil
	}

	s.numerator1.Lsh(liquidity, Resolution)

	if add {
		// The on-chain contract detects overflow of amount * sqrtPX96 via
		// product / amount == sqrtPX96; with unbounded integers the check
		// always passes, and only the denominator-fits branch matters.
		s.product.Mul(amount, sqrtPX96)
		s.denominator.Add(s.numerator1, s.product)
		if s.denominator.Cmp(s.numerator1) >= 0 {
			s.mulDivRoundingUp(dest, s.numerator1, sqrtPX96, s.denominator)
			return nil
		}
		// Overflow-safe fallback: liquidity / (liquidity/sqrtP + amount).
		s.denominator.Div(s.numerator1, sqrtPX96)
		s.denominator.Add(s.denominator, amount)
		s.divRoundingUp(dest, s.numerator1, s.denominator)
		return nil
	}

	s.product.Mul(amount, sqrtPX96)
	if s.numerator1.Cmp(s.product) <= 0 {
		return ErrInsufficientLiquidity
	}
	s.denominator.Sub(s.numerator1, s.product)
	s.mulDivRoundingUp(dest, s.numerator1, sqrtPX96, s.denominator)
	return nil
}

func (s *sqrtPriceMath) nextSqrtPriceFromAmount1RoundingDown(dest, sqrtPX96, liquidity, amount *big.Int, add bool) error {
	if add {
		s.mulDiv(s.quotient, amount, Q96, liquidity)
		dest.Add(sqrtPX96, s.quotient)
		return nil
	}

	s.mulDivRoundingUp(s.quotient, amount, Q96, liquidity)
	if sqrtPX96.Cmp(s.quotient) <= 0 {
		return ErrInsufficientLiquidity
	}
	dest.Sub(sqrtPX96, s.quotient)
	return nil
}

func (s *sqrtPriceMath) amount0Delta(dest, sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int, roundUp bool) error {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	if sqrtRatioAX96.Sign() <= 0 {
		return ErrSqrtPriceZero
	}

	s.numerator1.Lsh(liquidity, Resolution)
	s.numerator2.Sub(sqrtRatioBX96, sqrtRatioAX96)

	if roundUp {
		s.mulDivRoundingUp(s.term, s.numerator1, s.numerator2, sqrtRatioBX96)
		s.divRoundingUp(dest, s.term, sqrtRatioAX96)
	} else {
		s.mulDiv(s.term, s.numerator1, s.numerator2, sqrtRatioBX96)
		dest.Div(s.term, sqrtRatioAX96)
	}
	return nil
}

func (s *sqrtPriceMath) amount1Delta(dest, sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int, roundUp bool) {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	s.numerator1.Sub(sqrtRatioBX96, sqrtRatioAX96)
	if roundUp {
		s.mulDivRoundingUp(dest, liquidity, s.numerator1, Q96)
	} else {
		s.mulDiv(dest, liquidity, s.numerator1, Q96)
	}
}
