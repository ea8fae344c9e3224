package trade

import (
	"errors"

	"github.com/defiroute/clamm-go/bitset"
	"github.com/defiroute/clamm-go/entities"
	"github.com/defiroute/clamm-go/pool"
)

var (
	ErrNoPools           = errors.New("trade: at least one pool is required")
	ErrInvalidMaxHops    = errors.New("trade: maxHops must be positive")
	ErrInvalidMaxResults = errors.New("trade: maxNumResults must be positive")
)

// search is the mutable state of one best-route exploration. Pools already on
// the current branch are tracked by slice index in a bitset so no route uses
// the same pool twice.
type search struct {
	pools   []*pool.Pool
	used    bitset.BitSet
	onPrune func(p *pool.Pool, err error)
}

func newSearch(pools []*pool.Pool, maxHops, maxNumResults int, onPrune func(*pool.Pool, error)) (*search, error) {
	if len(pools) == 0 {
		return nil, ErrNoPools
	}
	if maxHops <= 0 {
		return nil, ErrInvalidMaxHops
	}
	if maxNumResults <= 0 {
		return nil, ErrInvalidMaxResults
	}
	return &search{
		pools:   pools,
		used:    bitset.NewBitSet(uint64(len(pools))),
		onPrune: onPrune,
	}, nil
}

func (s *search) prune(p *pool.Pool, err error) {
	if s.onPrune != nil {
		s.onPrune(p, err)
	}
}

// BestTradeExactIn searches depth-first for the best ways to swap an exact
// input amount into currencyOut, using each pool at most once per route. The
// result is ordered best-first: larger output wins, ties go to fewer hops.
// Pools whose simulation fails are treated as dead ends, not errors.
func BestTradeExactIn(pools []*pool.Pool, amountIn *entities.CurrencyAmount, currencyOut entities.Currency, maxHops, maxNumResults int) ([]*Trade, error) {
	s, err := newSearch(pools, maxHops, maxNumResults, nil)
	if err != nil {
		return nil, err
	}
	return s.bestExactIn(nil, amountIn, amountIn, currencyOut, nil, maxHops, maxNumResults)
}

// BestTradeExactOut is the mirror search: the cheapest ways to obtain an exact
// output amount starting from currencyIn. Smaller input wins, ties go to fewer
// hops.
func BestTradeExactOut(pools []*pool.Pool, currencyIn entities.Currency, amountOut *entities.CurrencyAmount, maxHops, maxNumResults int) ([]*Trade, error) {
	s, err := newSearch(pools, maxHops, maxNumResults, nil)
	if err != nil {
		return nil, err
	}
	return s.bestExactOut(nil, amountOut, amountOut, currencyIn, nil, maxHops, maxNumResults)
}

func (s *search) bestExactIn(
	best []*Trade,
	originalAmountIn, currentAmount *entities.CurrencyAmount,
	currencyOut entities.Currency,
	routePools []*pool.Pool,
	hops, maxNumResults int,
) ([]*Trade, error) {
	for i, p := range s.pools {
		if s.used.IsSet(uint64(i)) {
			continue
		}
		if !p.InvolvesCurrency(currentAmount.Currency) {
			continue
		}

		out, _, err := p.GetOutputAmount(currentAmount, nil)
		if err != nil {
			s.prune(p, err)
			continue
		}

		if out.Currency.Equal(currencyOut) {
			pools := append(append([]*pool.Pool(nil), routePools...), p)
			route, err := NewRoute(pools, originalAmountIn.Currency, currencyOut)
			if err != nil {
				return nil, err
			}
			trade := &Trade{Route: route, Type: ExactInput, InputAmount: originalAmountIn, OutputAmount: out}
			best = insertBest(best, trade, maxNumResults, betterExactIn)
			continue
		}

		if hops > 1 && len(s.pools) > 1 {
			s.used.Set(uint64(i))
			best, err = s.bestExactIn(best, originalAmountIn, out, currencyOut, append(routePools, p), hops-1, maxNumResults)
			s.used.Unset(uint64(i))
			if err != nil {
				return nil, err
			}
		}
	}
	return best, nil
}

func (s *search) bestExactOut(
	best []*Trade,
	originalAmountOut, currentAmount *entities.CurrencyAmount,
	currencyIn entities.Currency,
	routePools []*pool.Pool,
	hops, maxNumResults int,
) ([]*Trade, error) {
	for i, p := range s.pools {
		if s.used.IsSet(uint64(i)) {
			continue
		}
		if !p.InvolvesCurrency(currentAmount.Currency) {
			continue
		}

		in, _, err := p.GetInputAmount(currentAmount, nil)
		if err != nil {
			s.prune(p, err)
			continue
		}

		if in.Currency.Equal(currencyIn) {
			pools := append([]*pool.Pool{p}, routePools...)
			route, err := NewRoute(pools, currencyIn, originalAmountOut.Currency)
			if err != nil {
				return nil, err
			}
			trade := &Trade{Route: route, Type: ExactOutput, InputAmount: in, OutputAmount: originalAmountOut}
			best = insertBest(best, trade, maxNumResults, betterExactOut)
			continue
		}

		if hops > 1 && len(s.pools) > 1 {
			s.used.Set(uint64(i))
			best, err = s.bestExactOut(best, originalAmountOut, in, currencyIn, append([]*pool.Pool{p}, routePools...), hops-1, maxNumResults)
			s.used.Unset(uint64(i))
			if err != nil {
				return nil, err
			}
		}
	}
	return best, nil
}

// betterExactIn ranks a ahead of b when it yields more output, ties broken by
// fewer hops.
func betterExactIn(a, b *Trade) bool {
	switch a.OutputAmount.Raw().Cmp(b.OutputAmount.Raw()) {
	case 1:
		return true
	case -1:
		return false
	}
	return len(a.Route.Pools) < len(b.Route.Pools)
}

// betterExactOut ranks a ahead of b when it costs less input, ties broken by
// fewer hops.
func betterExactOut(a, b *Trade) bool {
	switch a.InputAmount.Raw().Cmp(b.InputAmount.Raw()) {
	case -1:
		return true
	case 1:
		return false
	}
	return len(a.Route.Pools) < len(b.Route.Pools)
}

// insertBest keeps the list sorted best-first and bounded to maxNumResults.
// The comparator is a total order, so the result does not depend on discovery
// order.
func insertBest(best []*Trade, t *Trade, maxNumResults int, better func(a, b *Trade) bool) []*Trade {
	idx := len(best)
	for i, existing := range best {
		if better(t, existing) {
			idx = i
			break
		}
	}
	if idx == len(best) {
		if len(best) < maxNumResults {
			return append(best, t)
		}
		return best
	}
	best = append(best, nil)
	copy(best[idx+1:], best[idx:])
	best[idx] = t
	if len(best) > maxNumResults {
		best = best[:maxNumResults]
	}
	return best
}
