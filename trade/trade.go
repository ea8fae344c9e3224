package trade

import (
	"errors"
	"fmt"

	"github.com/defiroute/clamm-go/entities"
)

// Type distinguishes whether a trade was specified by its input or its output.
type Type int

const (
	ExactInput Type = iota
	ExactOutput
)

func (t Type) String() string {
	if t == ExactOutput {
		return "exactOutput"
	}
	return "exactInput"
}

var ErrWrongCurrency = errors.New("trade: amount currency does not match route endpoint")

// Trade is a simulated execution of a route: the full input paid (fees
// included) and the full output received.
type Trade struct {
	Route        *Route
	Type         Type
	InputAmount  *entities.CurrencyAmount
	OutputAmount *entities.CurrencyAmount
}

// FromRoute simulates the route hop by hop. For ExactInput the amount is the
// route's input and each pool runs forward; for ExactOutput it is the route's
// output and the pools run backward.
func FromRoute(route *Route, amount *entities.CurrencyAmount, tradeType Type) (*Trade, error) {
	if tradeType == ExactInput {
		if !amount.Currency.Equal(route.Input) {
			return nil, fmt.Errorf("%w: %s, route starts at %s", ErrWrongCurrency, amount.Currency.Symbol, route.Input.Symbol)
		}
		current := amount
		for _, p := range route.Pools {
			out, _, err := p.GetOutputAmount(current, nil)
			if err != nil {
				return nil, err
			}
			current = out
		}
		return &Trade{Route: route, Type: tradeType, InputAmount: amount, OutputAmount: current}, nil
	}

	if !amount.Currency.Equal(route.Output) {
		return nil, fmt.Errorf("%w: %s, route ends at %s", ErrWrongCurrency, amount.Currency.Symbol, route.Output.Symbol)
	}
	current := amount
	for i := len(route.Pools) - 1; i >= 0; i-- {
		in, _, err := route.Pools[i].GetInputAmount(current, nil)
		if err != nil {
			return nil, err
		}
		current = in
	}
	return &Trade{Route: route, Type: tradeType, InputAmount: current, OutputAmount: amount}, nil
}

// ExecutionPrice is the realized price of the trade: output received per unit
// of input paid.
func (t *Trade) ExecutionPrice() (*entities.Price, error) {
	return entities.NewPrice(
		t.InputAmount.Currency, t.OutputAmount.Currency,
		t.InputAmount.Raw(), t.OutputAmount.Raw(),
	)
}

// MinimumAmountOut is the least output the trade can be allowed to produce
// under the slippage tolerance. Exact-output trades return the output
// unchanged.
func (t *Trade) MinimumAmountOut(tolerance *entities.Percent) (*entities.CurrencyAmount, error) {
	if tolerance.Sign() < 0 {
		return nil, entities.ErrNegativeSlippageTolerance
	}
	if t.Type == ExactOutput {
		return t.OutputAmount, nil
	}
	scale, err := entities.NewInt(1).Add(tolerance.Fraction)
	if err != nil {
		return nil, err
	}
	scale, err = scale.Invert()
	if err != nil {
		return nil, err
	}
	adjusted, err := scale.Multiply(t.OutputAmount.Fraction)
	if err != nil {
		return nil, err
	}
	return entities.NewCurrencyAmount(t.OutputAmount.Currency, adjusted.Quotient())
}

// MaximumAmountIn is the most input the trade can be allowed to cost under the
// slippage tolerance. Exact-input trades return the input unchanged.
func (t *Trade) MaximumAmountIn(tolerance *entities.Percent) (*entities.CurrencyAmount, error) {
	if tolerance.Sign() < 0 {
		return nil, entities.ErrNegativeSlippageTolerance
	}
	if t.Type == ExactInput {
		return t.InputAmount, nil
	}
	scale, err := entities.NewInt(1).Add(tolerance.Fraction)
	if err != nil {
		return nil, err
	}
	adjusted, err := scale.Multiply(t.InputAmount.Fraction)
	if err != nil {
		return nil, err
	}
	return entities.NewCurrencyAmount(t.InputAmount.Currency, adjusted.Quotient())
}
