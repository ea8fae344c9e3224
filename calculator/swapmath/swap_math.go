package swapmath

import (
	"math/big"
	"sync"

	"github.com/defiroute/clamm-go/calculator/sqrtpricemath"
)

// MaxFeePips is the fee denominator: 100% expressed in hundredths of a bip.
const MaxFeePips = 1_000_000

var (
	feeDenominator = big.NewInt(MaxFeePips)
	one            = big.NewInt(1)
)

// StepResult is the outcome of a single swap step within one tick range.
// The caller owns the big.Ints and may reuse them across steps.
type StepResult struct {
	SqrtRatioNextX96 *big.Int
	AmountIn         *big.Int
	AmountOut        *big.Int
	FeeAmount        *big.Int
}

// NewStepResult allocates a result with all fields initialized.
func NewStepResult() *StepResult {
	return &StepResult{
		SqrtRatioNextX96: new(big.Int),
		AmountIn:         new(big.Int),
		AmountOut:        new(big.Int),
		FeeAmount:        new(big.Int),
	}
}

// swapMath holds reusable scratch values for a single ComputeSwapStep call.
type swapMath struct {
	amountRemainingLessFee *big.Int
	amountRemainingAbs     *big.Int
	feeComplement          *big.Int
	product                *big.Int
	rem                    *big.Int
}

var pool = sync.Pool{
	New: func() any {
		return &swapMath{
			amountRemainingLessFee: new(big.Int),
			amountRemainingAbs:     new(big.Int),
			feeComplement:          new(big.Int),
			product:                new(big.Int),
			rem:                    new(big.Int),
		}
	},
}

// ComputeSwapStep computes the price movement and fee for a swap confined to a
// single liquidity range. The direction is implied by the order of the current
// and target prices; amountRemaining >= 0 selects exact-input, negative
// exact-output. All rounding matches the on-chain SwapMath library exactly.
func ComputeSwapStep(
	dest *StepResult,
	sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, amountRemaining *big.Int,
	feePips uint64,
) error {
	s := pool.Get().(*swapMath)
	defer pool.Put(s)
	return s.computeSwapStep(dest, sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, amountRemaining, feePips)
}

func (s *swapMath) computeSwapStep(
	dest *StepResult,
	sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, amountRemaining *big.Int,
	feePips uint64,
) error {
	zeroForOne := sqrtRatioCurrentX96.Cmp(sqrtRatioTargetX96) >= 0
	exactIn := amountRemaining.Sign() >= 0
	s.feeComplement.Sub(feeDenominator, new(big.Int).SetUint64(feePips))

	dest.AmountIn.SetInt64(0)
	dest.AmountOut.SetInt64(0)
	dest.FeeAmount.SetInt64(0)

	if exactIn {
		// The fee comes off the remaining input before any price movement is
		// paid for.
		s.mulDiv(s.amountRemainingLessFee, amountRemaining, s.feeComplement, feeDenominator)

		if zeroForOne {
			if err := sqrtpricemath.Amount0Delta(dest.AmountIn, sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, true); err != nil {
				return err
			}
		} else {
			sqrtpricemath.Amount1Delta(dest.AmountIn, sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, true)
		}

		if s.amountRemainingLessFee.Cmp(dest.AmountIn) >= 0 {
			dest.SqrtRatioNextX96.Set(sqrtRatioTargetX96)
		} else {
			if err := sqrtpricemath.NextSqrtPriceFromInput(dest.SqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, s.amountRemainingLessFee, zeroForOne); err != nil {
				return err
			}
		}
	} else {
		s.amountRemainingAbs.Neg(amountRemaining)

		if zeroForOne {
			sqrtpricemath.Amount1Delta(dest.AmountOut, sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, false)
		} else {
			if err := sqrtpricemath.Amount0Delta(dest.AmountOut, sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, false); err != nil {
				return err
			}
		}

		if s.amountRemainingAbs.Cmp(dest.AmountOut) >= 0 {
			dest.SqrtRatioNextX96.Set(sqrtRatioTargetX96)
		} else {
			if err := sqrtpricemath.NextSqrtPriceFromOutput(dest.SqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, s.amountRemainingAbs, zeroForOne); err != nil {
				return err
			}
		}
	}

	max := sqrtRatioTargetX96.Cmp(dest.SqrtRatioNextX96) == 0

	// Recompute the amounts against the price actually reached. The branches
	// already populated above are left untouched when the target was hit.
	if zeroForOne {
		if !(max && exactIn) {
			if err := sqrtpricemath.Amount0Delta(dest.AmountIn, dest.SqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, true); err != nil {
				return err
			}
		}
		if !(max && !exactIn) {
			sqrtpricemath.Amount1Delta(dest.AmountOut, dest.SqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, false)
		}
	} else {
		if !(max && exactIn) {
			sqrtpricemath.Amount1Delta(dest.AmountIn, sqrtRatioCurrentX96, dest.SqrtRatioNextX96, liquidity, true)
		}
		if !(max && !exactIn) {
			if err := sqrtpricemath.Amount0Delta(dest.AmountOut, sqrtRatioCurrentX96, dest.SqrtRatioNextX96, liquidity, false); err != nil {
				return err
			}
		}
	}

	// The output never exceeds what was asked for.
	if !exactIn && dest.AmountOut.Cmp(s.amountRemainingAbs) > 0 {
		dest.AmountOut.Set(s.amountRemainingAbs)
	}

	if exactIn && dest.SqrtRatioNextX96.Cmp(sqrtRatioTargetX96) != 0 {
		// The input is exhausted before the target: whatever the price
		// movement did not consume is the fee.
		dest.FeeAmount.Sub(amountRemaining, dest.AmountIn)
	} else {
		s.mulDivRoundingUp(dest.FeeAmount, dest.AmountIn, new(big.Int).SetUint64(feePips), s.feeComplement)
	}

	return nil
}

// mulDiv writes (a * b) / c into dest.
func (s *swapMath) mulDiv(dest, a, b, c *big.Int) {
	s.product.Mul(a, b)
	dest.Div(s.product, c)
}

// mulDivRoundingUp writes ceil((a * b) / c) into dest.
func (s *swapMath) mulDivRoundingUp(dest, a, b, c *big.Int) {
	s.product.Mul(a, b)
	dest.Div(s.product, c)
	if s.rem.Rem(s.product, c).Sign() > 0 {
		dest.Add(dest, one)
	}
}
