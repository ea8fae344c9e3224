package ticklist

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
)

var (
	ErrTickNotFound    = errors.New("ticklist: tick not found")
	ErrTickSpacing     = errors.New("ticklist: tick index not a multiple of tick spacing")
	ErrUnsortedTicks   = errors.New("ticklist: ticks must be sorted ascending by unique index")
	ErrNonZeroNetSum   = errors.New("ticklist: liquidityNet must sum to zero across all ticks")
	ErrZeroTickSpacing = errors.New("ticklist: tick spacing must be greater than zero")
)

// TickInfo describes one initialized tick. LiquidityGross tracks how much
// liquidity references the tick; LiquidityNet is the signed in-range delta
// applied when the price crosses it moving upward.
type TickInfo struct {
	Index          int      `json:"index"`
	LiquidityGross *big.Int `json:"liquidityGross"`
	LiquidityNet   *big.Int `json:"liquidityNet"`
}

// List is an immutable, validated, ascending collection of initialized ticks
// for a single pool. It is the in-memory DataProvider implementation.
type List struct {
	ticks       []TickInfo
	tickSpacing int
}

// NewList validates and wraps a slice of ticks. The slice is kept by
// reference and must not be mutated afterwards. An empty list is valid: a
// pool with no minted positions has no initialized ticks.
func NewList(ticks []TickInfo, tickSpacing int) (*List, error) {
	if tickSpacing <= 0 {
		return nil, ErrZeroTickSpacing
	}

	netSum := new(big.Int)
	for i, t := range ticks {
		if t.Index%tickSpacing != 0 {
			return nil, fmt.Errorf("%w: tick %d, spacing %d", ErrTickSpacing, t.Index, tickSpacing)
		}
		if i > 0 && ticks[i-1].Index >= t.Index {
			return nil, fmt.Errorf("%w: index %d follows %d", ErrUnsortedTicks, t.Index, ticks[i-1].Index)
		}
		if t.LiquidityNet != nil {
			netSum.Add(netSum, t.LiquidityNet)
		}
	}
	if len(ticks) > 0 && netSum.Sign() != 0 {
		return nil, fmt.Errorf("%w: got %s", ErrNonZeroNetSum, netSum)
	}

	return &List{ticks: ticks, tickSpacing: tickSpacing}, nil
}

// Len returns the number of initialized ticks.
func (l *List) Len() int { return len(l.ticks) }

// Tick returns the initialized tick at the given index.
func (l *List) Tick(index int) (TickInfo, error) {
	i := sort.Search(len(l.ticks), func(i int) bool {
		return l.ticks[i].Index >= index
	})
	if i < len(l.ticks) && l.ticks[i].Index == index {
		return l.ticks[i], nil
	}
	return TickInfo{}, fmt.Errorf("%w: %d", ErrTickNotFound, index)
}

// isBelowSmallest reports whether tick is below every initialized tick.
func (l *List) isBelowSmallest(tick int) bool {
	return len(l.ticks) == 0 || tick < l.ticks[0].Index
}

// isAtOrAboveLargest reports whether tick is at or above the last initialized tick.
func (l *List) isAtOrAboveLargest(tick int) bool {
	return len(l.ticks) == 0 || tick >= l.ticks[len(l.ticks)-1].Index
}

// nextInitializedTick finds the closest initialized tick at or below (lte) or
// strictly above (!lte) the given tick. Callers guard the boundaries.
func (l *List) nextInitializedTick(tick int, lte bool) TickInfo {
	if lte {
		// smallest index with ticks[i].Index > tick; the floor neighbor is one left
		i := sort.Search(len(l.ticks), func(i int) bool {
			return l.ticks[i].Index > tick
		})
		return l.ticks[i-1]
	}
	i := sort.Search(len(l.ticks), func(i int) bool {
		return l.ticks[i].Index > tick
	})
	return l.ticks[i]
}

// NextInitializedTickWithinOneWord finds the next initialized tick in the
// given direction, but never looks further than the 256-tick-wide compressed
// word containing the starting tick. When the word holds no initialized tick
// the word boundary is returned with initialized == false, which bounds the
// work of each swap-loop iteration to one word, mirroring the on-chain
// bitmap-indexed storage.
func (l *List) NextInitializedTickWithinOneWord(tick int, lte bool, tickSpacing int) (int, bool, error) {
	if tickSpacing <= 0 {
		return 0, false, ErrZeroTickSpacing
	}
	compressed := floorDiv(tick, tickSpacing)

	if lte {
		wordPos := compressed >> 8
		minimum := (wordPos << 8) * tickSpacing
		if l.isBelowSmallest(tick) {
			return minimum, false, nil
		}
		index := l.nextInitializedTick(tick, true).Index
		next := max(minimum, index)
		return next, next == index, nil
	}

	wordPos := (compressed + 1) >> 8
	maximum := (((wordPos + 1) << 8) - 1) * tickSpacing
	if l.isAtOrAboveLargest(tick) {
		return maximum, false, nil
	}
	index := l.nextInitializedTick(tick, false).Index
	next := min(maximum, index)
	return next, next == index, nil
}

// floorDiv divides rounding toward negative infinity, matching the on-chain
// compressed-tick convention for negative ticks.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
