package position

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/defiroute/clamm-go/calculator/liquiditymath"
	"github.com/defiroute/clamm-go/calculator/sqrtpricemath"
	"github.com/defiroute/clamm-go/calculator/tickmath"
	"github.com/defiroute/clamm-go/entities"
	"github.com/defiroute/clamm-go/pool"
	"github.com/defiroute/clamm-go/ticklist"
)

var (
	ErrTickOrder     = errors.New("position: tickLower must be below tickUpper")
	ErrTickBound     = errors.New("position: tick outside protocol bounds")
	ErrTickAlignment = errors.New("position: tick not aligned to pool tick spacing")

	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// Position is a liquidity position on a pool over [TickLower, TickUpper].
// Like its pool, a position is an immutable snapshot; all amount math is pure
// recomputation from the pool's current price.
type Position struct {
	Pool      *pool.Pool
	TickLower int
	TickUpper int
	Liquidity *big.Int

	// lazily cached tick boundary prices
	sqrtRatioLowerX96 *big.Int
	sqrtRatioUpperX96 *big.Int
}

// New validates the tick range against the pool and constructs a position.
func New(p *pool.Pool, tickLower, tickUpper int, liquidity *big.Int) (*Position, error) {
	if tickLower >= tickUpper {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrTickOrder, tickLower, tickUpper)
	}
	if tickLower < tickmath.MIN_TICK || tickUpper > tickmath.MAX_TICK {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrTickBound, tickLower, tickUpper)
	}
	if tickLower%p.TickSpacing != 0 || tickUpper%p.TickSpacing != 0 {
		return nil, fmt.Errorf("%w: [%d, %d] with spacing %d", ErrTickAlignment, tickLower, tickUpper, p.TickSpacing)
	}
	return &Position{
		Pool:      p,
		TickLower: tickLower,
		TickUpper: tickUpper,
		Liquidity: new(big.Int).Set(liquidity),
	}, nil
}

func (pos *Position) boundPrices() (lower, upper *big.Int, err error) {
	if pos.sqrtRatioLowerX96 == nil {
		lower = new(big.Int)
		if err = tickmath.SqrtRatioAtTick(lower, pos.TickLower); err != nil {
			return nil, nil, err
		}
		upper = new(big.Int)
		if err = tickmath.SqrtRatioAtTick(upper, pos.TickUpper); err != nil {
			return nil, nil, err
		}
		pos.sqrtRatioLowerX96, pos.sqrtRatioUpperX96 = lower, upper
	}
	return pos.sqrtRatioLowerX96, pos.sqrtRatioUpperX96, nil
}

// Amount0 is the amount of currency0 this position's liquidity represents at
// the pool's current price, rounded down.
func (pos *Position) Amount0() (*entities.CurrencyAmount, error) {
	lower, upper, err := pos.boundPrices()
	if err != nil {
		return nil, err
	}
	amount := new(big.Int)
	switch {
	case pos.Pool.TickCurrent < pos.TickLower:
		err = sqrtpricemath.Amount0Delta(amount, lower, upper, pos.Liquidity, false)
	case pos.Pool.TickCurrent < pos.TickUpper:
		err = sqrtpricemath.Amount0Delta(amount, pos.Pool.SqrtRatioX96, upper, pos.Liquidity, false)
	}
	if err != nil {
		return nil, err
	}
	return entities.NewCurrencyAmount(pos.Pool.Currency0, amount)
}

// Amount1 is the amount of currency1 this position's liquidity represents at
// the pool's current price, rounded down.
func (pos *Position) Amount1() (*entities.CurrencyAmount, error) {
	lower, upper, err := pos.boundPrices()
	if err != nil {
		return nil, err
	}
	amount := new(big.Int)
	switch {
	case pos.Pool.TickCurrent < pos.TickLower:
	case pos.Pool.TickCurrent < pos.TickUpper:
		sqrtpricemath.Amount1Delta(amount, lower, pos.Pool.SqrtRatioX96, pos.Liquidity, false)
	default:
		sqrtpricemath.Amount1Delta(amount, lower, upper, pos.Liquidity, false)
	}
	return entities.NewCurrencyAmount(pos.Pool.Currency1, amount)
}

// MintAmounts is the pair of token amounts the pool would demand to mint this
// position's liquidity, rounded up against the minter.
func (pos *Position) MintAmounts() (amount0, amount1 *big.Int, err error) {
	lower, upper, err := pos.boundPrices()
	if err != nil {
		return nil, nil, err
	}
	amount0, amount1 = new(big.Int), new(big.Int)
	switch {
	case pos.Pool.TickCurrent < pos.TickLower:
		err = sqrtpricemath.Amount0Delta(amount0, lower, upper, pos.Liquidity, true)
	case pos.Pool.TickCurrent < pos.TickUpper:
		err = sqrtpricemath.Amount0Delta(amount0, pos.Pool.SqrtRatioX96, upper, pos.Liquidity, true)
		sqrtpricemath.Amount1Delta(amount1, lower, pos.Pool.SqrtRatioX96, pos.Liquidity, true)
	default:
		sqrtpricemath.Amount1Delta(amount1, lower, upper, pos.Liquidity, true)
	}
	if err != nil {
		return nil, nil, err
	}
	return amount0, amount1, nil
}

// ratiosAfterSlippage shifts the pool's current raw price down and up by the
// tolerance and returns the corresponding sqrt prices, clamped just inside the
// protocol bounds.
func (pos *Position) ratiosAfterSlippage(tolerance *entities.Percent) (lower, upper *big.Int, err error) {
	if tolerance.Sign() < 0 {
		return nil, nil, entities.ErrNegativeSlippageTolerance
	}
	price, err := pos.Pool.Token0Price()
	if err != nil {
		return nil, nil, err
	}

	one := entities.NewInt(1)
	down, err := one.Subtract(tolerance.Fraction)
	if err != nil {
		return nil, nil, err
	}
	up, err := one.Add(tolerance.Fraction)
	if err != nil {
		return nil, nil, err
	}
	priceLower, err := price.Fraction.Multiply(down)
	if err != nil {
		return nil, nil, err
	}
	priceUpper, err := price.Fraction.Multiply(up)
	if err != nil {
		return nil, nil, err
	}

	lower = sqrtpricemath.EncodeSqrtRatioX96(priceLower.Numerator, priceLower.Denominator)
	if lower.Cmp(tickmath.MIN_SQRT_RATIO) <= 0 {
		lower.Add(tickmath.MIN_SQRT_RATIO, big.NewInt(1))
	}
	upper = sqrtpricemath.EncodeSqrtRatioX96(priceUpper.Numerator, priceUpper.Denominator)
	if upper.Cmp(tickmath.MAX_SQRT_RATIO) >= 0 {
		upper.Sub(tickmath.MAX_SQRT_RATIO, big.NewInt(1))
	}
	return lower, upper, nil
}

// counterfactualPool rebuilds the position's pool as if its price had already
// slipped to sqrtRatioX96. No tick data is attached: the counterfactual pool
// exists only for amount math, never for swaps.
func (pos *Position) counterfactualPool(sqrtRatioX96 *big.Int) (*pool.Pool, error) {
	tick, err := tickmath.TickAtSqrtRatio(sqrtRatioX96)
	if err != nil {
		return nil, err
	}
	empty, err := ticklist.NewList(nil, pos.Pool.TickSpacing)
	if err != nil {
		return nil, err
	}
	return pool.New(
		pos.Pool.Currency0, pos.Pool.Currency1,
		pos.Pool.Fee, pos.Pool.TickSpacing, pos.Pool.Hooks,
		sqrtRatioX96, big.NewInt(0), tick, empty,
	)
}

// MintAmountsWithSlippage is the worst-case pair of amounts a mint can cost
// once the price is allowed to slip by the tolerance in either direction. Each
// side is taken from the counterfactual pool that maximizes it; the two sides
// move oppositely as the price slips, so scaling MintAmounts by the tolerance
// would be wrong.
func (pos *Position) MintAmountsWithSlippage(tolerance *entities.Percent) (amount0, amount1 *big.Int, err error) {
	lower, upper, err := pos.ratiosAfterSlippage(tolerance)
	if err != nil {
		return nil, nil, err
	}
	poolLower, err := pos.counterfactualPool(lower)
	if err != nil {
		return nil, nil, err
	}
	poolUpper, err := pos.counterfactualPool(upper)
	if err != nil {
		return nil, nil, err
	}

	// The liquidity that would actually be minted for this position's amounts
	// at the current price, with on-chain helper parity.
	mint0, mint1, err := pos.MintAmounts()
	if err != nil {
		return nil, nil, err
	}
	created, err := FromAmounts(pos.Pool, pos.TickLower, pos.TickUpper, mint0, mint1, false)
	if err != nil {
		return nil, nil, err
	}

	atUpper, err := New(poolUpper, pos.TickLower, pos.TickUpper, created.Liquidity)
	if err != nil {
		return nil, nil, err
	}
	atLower, err := New(poolLower, pos.TickLower, pos.TickUpper, created.Liquidity)
	if err != nil {
		return nil, nil, err
	}

	amount0, _, err = atUpper.MintAmounts()
	if err != nil {
		return nil, nil, err
	}
	_, amount1, err = atLower.MintAmounts()
	if err != nil {
		return nil, nil, err
	}
	return amount0, amount1, nil
}

// BurnAmountsWithSlippage is the worst-case (smallest) pair of amounts a burn
// of this position's liquidity can return once the price slips by the
// tolerance.
func (pos *Position) BurnAmountsWithSlippage(tolerance *entities.Percent) (amount0, amount1 *big.Int, err error) {
	lower, upper, err := pos.ratiosAfterSlippage(tolerance)
	if err != nil {
		return nil, nil, err
	}
	poolLower, err := pos.counterfactualPool(lower)
	if err != nil {
		return nil, nil, err
	}
	poolUpper, err := pos.counterfactualPool(upper)
	if err != nil {
		return nil, nil, err
	}

	atUpper, err := New(poolUpper, pos.TickLower, pos.TickUpper, pos.Liquidity)
	if err != nil {
		return nil, nil, err
	}
	atLower, err := New(poolLower, pos.TickLower, pos.TickUpper, pos.Liquidity)
	if err != nil {
		return nil, nil, err
	}

	a0, err := atUpper.Amount0()
	if err != nil {
		return nil, nil, err
	}
	a1, err := atLower.Amount1()
	if err != nil {
		return nil, nil, err
	}
	return a0.Raw(), a1.Raw(), nil
}

// FromAmounts builds the largest position the given amounts can fund over the
// range. useFullPrecision selects the precise token0 liquidity formula; pass
// false for parity with on-chain mints.
func FromAmounts(p *pool.Pool, tickLower, tickUpper int, amount0, amount1 *big.Int, useFullPrecision bool) (*Position, error) {
	lower := new(big.Int)
	if err := tickmath.SqrtRatioAtTick(lower, tickLower); err != nil {
		return nil, err
	}
	upper := new(big.Int)
	if err := tickmath.SqrtRatioAtTick(upper, tickUpper); err != nil {
		return nil, err
	}
	liquidity := liquiditymath.MaxLiquidityForAmounts(p.SqrtRatioX96, lower, upper, amount0, amount1, useFullPrecision)
	return New(p, tickLower, tickUpper, liquidity)
}

// FromAmount0 builds the largest position amount0 alone can fund.
func FromAmount0(p *pool.Pool, tickLower, tickUpper int, amount0 *big.Int, useFullPrecision bool) (*Position, error) {
	return FromAmounts(p, tickLower, tickUpper, amount0, maxUint256, useFullPrecision)
}

// FromAmount1 builds the largest position amount1 alone can fund. The token1
// formula is always exact, so there is no precision mode.
func FromAmount1(p *pool.Pool, tickLower, tickUpper int, amount1 *big.Int) (*Position, error) {
	return FromAmounts(p, tickLower, tickUpper, maxUint256, amount1, true)
}
