package trade

import (
	"errors"
	"fmt"

	"github.com/defiroute/clamm-go/entities"
	"github.com/defiroute/clamm-go/pool"
)

var (
	ErrEmptyRoute   = errors.New("trade: route must have at least one pool")
	ErrDisconnected = errors.New("trade: pool does not involve the chained currency")
)

// Route is an ordered list of pools carrying a swap from Input to Output.
// Path holds the currency at every hop boundary, Path[0] being Input and the
// last element Output.
type Route struct {
	Pools  []*pool.Pool
	Path   []entities.Currency
	Input  entities.Currency
	Output entities.Currency
}

// NewRoute validates that consecutive pools share a currency and that the
// chain starts at input and ends at output.
func NewRoute(pools []*pool.Pool, input, output entities.Currency) (*Route, error) {
	if len(pools) == 0 {
		return nil, ErrEmptyRoute
	}

	path := make([]entities.Currency, 0, len(pools)+1)
	path = append(path, input)
	current := input
	for i, p := range pools {
		if !p.InvolvesCurrency(current) {
			return nil, fmt.Errorf("%w: %s at hop %d", ErrDisconnected, current.Symbol, i)
		}
		next := p.Currency0
		if current.Equal(p.Currency0) {
			next = p.Currency1
		}
		path = append(path, next)
		current = next
	}
	if !current.Equal(output) {
		return nil, fmt.Errorf("%w: route ends at %s, want %s", ErrDisconnected, current.Symbol, output.Symbol)
	}

	return &Route{Pools: pools, Path: path, Input: input, Output: output}, nil
}

// MidPrice chains each hop's spot price into the price of Input in terms of
// Output, ignoring fees and depth.
func (r *Route) MidPrice() (*entities.Price, error) {
	price, err := r.Pools[0].PriceOf(r.Path[0])
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(r.Pools); i++ {
		hop, err := r.Pools[i].PriceOf(r.Path[i])
		if err != nil {
			return nil, err
		}
		price, err = price.Multiply(hop)
		if err != nil {
			return nil, err
		}
	}
	return price, nil
}
