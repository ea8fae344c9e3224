package pool

import (
	"math/big"
	"sync"

	"github.com/defiroute/clamm-go/calculator/liquiditymath"
	"github.com/defiroute/clamm-go/calculator/swapmath"
	"github.com/defiroute/clamm-go/calculator/tickmath"
)

var (
	minSqrtLimit = new(big.Int).Add(tickmath.MIN_SQRT_RATIO, big.NewInt(1))
	maxSqrtLimit = new(big.Int).Sub(tickmath.MAX_SQRT_RATIO, big.NewInt(1))
)

// swapState carries the loop state of one simulated swap plus reusable
// scratch values, pooled to keep the hot path allocation-free.
type swapState struct {
	amountSpecifiedRemaining *big.Int
	amountCalculated         *big.Int
	sqrtPriceX96             *big.Int
	tick                     int
	liquidity                *big.Int

	sqrtPriceStartX96 *big.Int
	sqrtPriceNextX96  *big.Int
	targetPrice       *big.Int
	step              *swapmath.StepResult
	tempAmount        *big.Int
	liquidityNet      *big.Int
}

var swapStatePool = sync.Pool{
	New: func() any {
		return &swapState{
			amountSpecifiedRemaining: new(big.Int),
			amountCalculated:         new(big.Int),
			sqrtPriceX96:             new(big.Int),
			liquidity:                new(big.Int),
			sqrtPriceStartX96:        new(big.Int),
			sqrtPriceNextX96:         new(big.Int),
			targetPrice:              new(big.Int),
			step:                     swapmath.NewStepResult(),
			tempAmount:               new(big.Int),
			liquidityNet:             new(big.Int),
		}
	},
}

// swapResult is the terminal state of a simulated swap, detached from the
// pooled scratch state so it can outlive the call.
type swapResult struct {
	amountCalculated         *big.Int
	amountSpecifiedRemaining *big.Int
	sqrtRatioX96             *big.Int
	liquidity                *big.Int
	tick                     int
}

// checkPriceLimit validates a caller-supplied limit against the current price
// and the protocol bounds before the loop starts.
func (p *Pool) checkPriceLimit(sqrtPriceLimitX96 *big.Int, zeroForOne bool) error {
	if zeroForOne {
		if sqrtPriceLimitX96.Cmp(tickmath.MIN_SQRT_RATIO) <= 0 {
			return ErrPriceLimit
		}
		if sqrtPriceLimitX96.Cmp(p.SqrtRatioX96) >= 0 {
			return ErrPriceLimit
		}
		return nil
	}
	if sqrtPriceLimitX96.Cmp(tickmath.MAX_SQRT_RATIO) >= 0 {
		return ErrPriceLimit
	}
	if sqrtPriceLimitX96.Cmp(p.SqrtRatioX96) <= 0 {
		return ErrPriceLimit
	}
	return nil
}

// swap runs the tick-crossing state machine: one swapmath step per initialized
// tick (or word boundary) until the specified amount is exhausted or the price
// limit is hit. amountSpecified >= 0 selects exact-input, negative
// exact-output. The receiver snapshot is never mutated.
func (p *Pool) swap(zeroForOne bool, amountSpecified, sqrtPriceLimitX96 *big.Int) (*swapResult, error) {
	if sqrtPriceLimitX96 == nil {
		if zeroForOne {
			sqrtPriceLimitX96 = minSqrtLimit
		} else {
			sqrtPriceLimitX96 = maxSqrtLimit
		}
	}
	if err := p.checkPriceLimit(sqrtPriceLimitX96, zeroForOne); err != nil {
		return nil, err
	}

	state := swapStatePool.Get().(*swapState)
	defer swapStatePool.Put(state)

	state.amountSpecifiedRemaining.Set(amountSpecified)
	state.amountCalculated.SetInt64(0)
	state.sqrtPriceX96.Set(p.SqrtRatioX96)
	state.tick = p.TickCurrent
	state.liquidity.Set(p.Liquidity)

	exactInput := amountSpecified.Sign() >= 0

	for state.amountSpecifiedRemaining.Sign() != 0 && state.sqrtPriceX96.Cmp(sqrtPriceLimitX96) != 0 {
		state.sqrtPriceStartX96.Set(state.sqrtPriceX96)

		tickNext, initialized, err := p.Ticks.NextInitializedTickWithinOneWord(state.tick, zeroForOne, p.TickSpacing)
		if err != nil {
			return nil, err
		}
		if tickNext < tickmath.MIN_TICK {
			tickNext = tickmath.MIN_TICK
		} else if tickNext > tickmath.MAX_TICK {
			tickNext = tickmath.MAX_TICK
		}

		if err := tickmath.SqrtRatioAtTick(state.sqrtPriceNextX96, tickNext); err != nil {
			return nil, err
		}

		// The step never moves past the caller's limit, even when the next
		// initialized tick lies beyond it.
		if (zeroForOne && state.sqrtPriceNextX96.Cmp(sqrtPriceLimitX96) < 0) ||
			(!zeroForOne && state.sqrtPriceNextX96.Cmp(sqrtPriceLimitX96) > 0) {
			state.targetPrice.Set(sqrtPriceLimitX96)
		} else {
			state.targetPrice.Set(state.sqrtPriceNextX96)
		}

		if err := swapmath.ComputeSwapStep(
			state.step,
			state.sqrtPriceStartX96,
			state.targetPrice,
			state.liquidity,
			state.amountSpecifiedRemaining,
			p.Fee,
		); err != nil {
			return nil, err
		}
		state.sqrtPriceX96.Set(state.step.SqrtRatioNextX96)

		if exactInput {
			state.amountSpecifiedRemaining.Sub(state.amountSpecifiedRemaining, state.tempAmount.Add(state.step.AmountIn, state.step.FeeAmount))
			state.amountCalculated.Add(state.amountCalculated, state.step.AmountOut)
		} else {
			state.amountSpecifiedRemaining.Add(state.amountSpecifiedRemaining, state.step.AmountOut)
			state.amountCalculated.Add(state.amountCalculated, state.tempAmount.Add(state.step.AmountIn, state.step.FeeAmount))
		}

		if state.sqrtPriceX96.Cmp(state.sqrtPriceNextX96) == 0 {
			// The boundary was reached exactly: cross the tick if it is
			// initialized, applying its net liquidity (negated moving down).
			if initialized {
				info, err := p.Ticks.Tick(tickNext)
				if err != nil {
					return nil, err
				}
				state.liquidityNet.Set(info.LiquidityNet)
				if zeroForOne {
					state.liquidityNet.Neg(state.liquidityNet)
				}
				if err := liquiditymath.AddDelta(state.liquidity, state.liquidity, state.liquidityNet); err != nil {
					return nil, err
				}
			}
			if zeroForOne {
				state.tick = tickNext - 1
			} else {
				state.tick = tickNext
			}
		} else if state.sqrtPriceX96.Cmp(state.sqrtPriceStartX96) != 0 {
			// The amount ran out mid-range: recompute the tick from the final
			// price. The loop exits on the next iteration.
			tick, err := tickmath.TickAtSqrtRatio(state.sqrtPriceX96)
			if err != nil {
				return nil, err
			}
			state.tick = tick
		}
	}

	return &swapResult{
		amountCalculated:         new(big.Int).Set(state.amountCalculated),
		amountSpecifiedRemaining: new(big.Int).Set(state.amountSpecifiedRemaining),
		sqrtRatioX96:             new(big.Int).Set(state.sqrtPriceX96),
		liquidity:                new(big.Int).Set(state.liquidity),
		tick:                     state.tick,
	}, nil
}
