package pool

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defiroute/clamm-go/calculator/swapmath"
	"github.com/defiroute/clamm-go/calculator/tickmath"
	"github.com/defiroute/clamm-go/entities"
	"github.com/defiroute/clamm-go/ticklist"
)

var (
	ErrCurrencyNotInvolved = errors.New("pool: currency is not in pool")
	ErrInvalidFee          = errors.New("pool: fee must be below 100%")

	// ErrPriceBoundsMismatch is returned when a snapshot's sqrt price does not
	// sit inside the price bracket of its stated current tick.
	ErrPriceBoundsMismatch = errors.New("pool: sqrtRatioX96 inconsistent with tickCurrent")

	// ErrPriceLimit is returned when a caller-supplied price limit lies on the
	// wrong side of the current price or outside the protocol bounds.
	ErrPriceLimit = errors.New("pool: invalid sqrt price limit")

	// ErrInsufficientInputAmount is returned when an exact-input swap cannot
	// produce any output at all.
	ErrInsufficientInputAmount = errors.New("pool: insufficient input amount")

	// ErrInsufficientLiquidity is returned when an exact-output request
	// exceeds what the pool's liquidity can supply.
	ErrInsufficientLiquidity = errors.New("pool: insufficient liquidity for requested output")
)

// Pool is an immutable snapshot of a concentrated-liquidity pool: its
// identity, current price and in-range liquidity, and a provider for its
// initialized ticks. Simulated swaps never mutate a snapshot; they return a
// fresh one carrying the post-swap state.
type Pool struct {
	Currency0   entities.Currency
	Currency1   entities.Currency
	Fee         uint64 // hundredths of a bip
	TickSpacing int
	Hooks       common.Address

	SqrtRatioX96 *big.Int
	Liquidity    *big.Int
	TickCurrent  int

	Ticks ticklist.DataProvider
}

// New validates and constructs a pool snapshot. Currencies may be passed in
// either order; the snapshot stores them canonically sorted. The sqrt price
// must lie inside the price bracket of tickCurrent.
func New(
	currencyA, currencyB entities.Currency,
	fee uint64,
	tickSpacing int,
	hooks common.Address,
	sqrtRatioX96 *big.Int,
	liquidity *big.Int,
	tickCurrent int,
	ticks ticklist.DataProvider,
) (*Pool, error) {
	if fee >= swapmath.MaxFeePips {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidFee, fee)
	}

	tickPrice := new(big.Int)
	if err := tickmath.SqrtRatioAtTick(tickPrice, tickCurrent); err != nil {
		return nil, err
	}
	if sqrtRatioX96.Cmp(tickPrice) < 0 {
		return nil, fmt.Errorf("%w: price below tick %d", ErrPriceBoundsMismatch, tickCurrent)
	}
	if err := tickmath.SqrtRatioAtTick(tickPrice, tickCurrent+1); err != nil {
		return nil, err
	}
	if sqrtRatioX96.Cmp(tickPrice) > 0 {
		return nil, fmt.Errorf("%w: price above tick %d", ErrPriceBoundsMismatch, tickCurrent+1)
	}

	currency0, currency1 := currencyA, currencyB
	if !currencyA.SortsBefore(currencyB) {
		currency0, currency1 = currencyB, currencyA
	}

	return &Pool{
		Currency0:    currency0,
		Currency1:    currency1,
		Fee:          fee,
		TickSpacing:  tickSpacing,
		Hooks:        hooks,
		SqrtRatioX96: new(big.Int).Set(sqrtRatioX96),
		Liquidity:    new(big.Int).Set(liquidity),
		TickCurrent:  tickCurrent,
		Ticks:        ticks,
	}, nil
}

// Key returns the pool's canonical key.
func (p *Pool) Key() Key {
	return NewKey(p.Currency0, p.Currency1, p.Fee, p.TickSpacing, p.Hooks)
}

// ID returns the pool's canonical identifier hash.
func (p *Pool) ID() common.Hash {
	return p.Key().ID()
}

// InvolvesCurrency reports whether the currency is one of the pool's pair.
func (p *Pool) InvolvesCurrency(c entities.Currency) bool {
	return c.Equal(p.Currency0) || c.Equal(p.Currency1)
}

// Token0Price is the price of Currency0 in terms of Currency1, derived from
// the Q64.96 sqrt price: price = (sqrtRatioX96)^2 / 2^192.
func (p *Pool) Token0Price() (*entities.Price, error) {
	ratio := new(big.Int).Mul(p.SqrtRatioX96, p.SqrtRatioX96)
	return entities.NewPrice(p.Currency0, p.Currency1, q192, ratio)
}

// Token1Price is the price of Currency1 in terms of Currency0.
func (p *Pool) Token1Price() (*entities.Price, error) {
	ratio := new(big.Int).Mul(p.SqrtRatioX96, p.SqrtRatioX96)
	return entities.NewPrice(p.Currency1, p.Currency0, ratio, q192)
}

// PriceOf returns the price of the given currency in terms of the other.
func (p *Pool) PriceOf(c entities.Currency) (*entities.Price, error) {
	if c.Equal(p.Currency0) {
		return p.Token0Price()
	}
	if c.Equal(p.Currency1) {
		return p.Token1Price()
	}
	return nil, fmt.Errorf("%w: %s", ErrCurrencyNotInvolved, c.Symbol)
}

var q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// GetOutputAmount simulates an exact-input swap, returning the output amount
// and the post-swap pool snapshot. A nil sqrtPriceLimitX96 runs the swap to
// the protocol's price bound.
func (p *Pool) GetOutputAmount(inputAmount *entities.CurrencyAmount, sqrtPriceLimitX96 *big.Int) (*entities.CurrencyAmount, *Pool, error) {
	if !p.InvolvesCurrency(inputAmount.Currency) {
		return nil, nil, fmt.Errorf("%w: %s", ErrCurrencyNotInvolved, inputAmount.Currency.Symbol)
	}
	amountIn := inputAmount.Raw()
	if amountIn.Sign() <= 0 {
		return nil, nil, ErrInsufficientInputAmount
	}

	zeroForOne := inputAmount.Currency.Equal(p.Currency0)

	result, err := p.swap(zeroForOne, amountIn, sqrtPriceLimitX96)
	if err != nil {
		return nil, nil, err
	}
	if result.amountCalculated.Sign() == 0 {
		return nil, nil, ErrInsufficientInputAmount
	}

	outputCurrency := p.Currency1
	if !zeroForOne {
		outputCurrency = p.Currency0
	}
	outputAmount, err := entities.NewCurrencyAmount(outputCurrency, result.amountCalculated)
	if err != nil {
		return nil, nil, err
	}
	return outputAmount, p.withState(result), nil
}

// GetInputAmount simulates an exact-output swap, returning the required input
// amount (fee included) and the post-swap pool snapshot. Requests exceeding
// the pool's reserves fail with ErrInsufficientLiquidity.
func (p *Pool) GetInputAmount(outputAmount *entities.CurrencyAmount, sqrtPriceLimitX96 *big.Int) (*entities.CurrencyAmount, *Pool, error) {
	if !p.InvolvesCurrency(outputAmount.Currency) {
		return nil, nil, fmt.Errorf("%w: %s", ErrCurrencyNotInvolved, outputAmount.Currency.Symbol)
	}
	amountOut := outputAmount.Raw()
	if amountOut.Sign() <= 0 {
		return nil, nil, ErrInsufficientInputAmount
	}

	// Swapping for exact currency1 out means currency0 goes in.
	zeroForOne := outputAmount.Currency.Equal(p.Currency1)

	result, err := p.swap(zeroForOne, new(big.Int).Neg(amountOut), sqrtPriceLimitX96)
	if err != nil {
		return nil, nil, err
	}
	// A leftover specified amount means the pool ran out of reserves (or hit
	// the caller's limit) before producing the full output.
	if sqrtPriceLimitX96 == nil && result.amountSpecifiedRemaining.Sign() != 0 {
		return nil, nil, ErrInsufficientLiquidity
	}

	inputCurrency := p.Currency0
	if !zeroForOne {
		inputCurrency = p.Currency1
	}
	inputAmount, err := entities.NewCurrencyAmount(inputCurrency, result.amountCalculated)
	if err != nil {
		return nil, nil, err
	}
	return inputAmount, p.withState(result), nil
}

// withState is the copy-on-write step: a new snapshot sharing identity and
// tick data with the original but carrying the post-swap price, tick and
// liquidity.
func (p *Pool) withState(result *swapResult) *Pool {
	next := *p
	next.SqrtRatioX96 = new(big.Int).Set(result.sqrtRatioX96)
	next.Liquidity = new(big.Int).Set(result.liquidity)
	next.TickCurrent = result.tick
	return &next
}
