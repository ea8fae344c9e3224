package trade

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defiroute/clamm-go/entities"
	"github.com/defiroute/clamm-go/pool"
	"github.com/defiroute/clamm-go/ticklist"
)

// newDeadPool builds a pool with no liquidity at all; every swap against it
// fails.
func newDeadPool(t *testing.T, a, b entities.Currency, fee uint64) *pool.Pool {
	t.Helper()
	ticks, err := ticklist.NewList(nil, 60)
	require.NoError(t, err)
	p, err := pool.New(a, b, fee, 60, common.Address{}, oneX96, big.NewInt(0), 0, ticks)
	require.NoError(t, err)
	return p
}

func TestBestTradeExactIn(t *testing.T) {
	poolAB := newDirectPool(t, tokenA, tokenB, 3000, deepLiquidity())
	poolBC := newDirectPool(t, tokenB, tokenC, 3000, deepLiquidity())
	poolAC := newDirectPool(t, tokenA, tokenC, 3000, deepLiquidity())
	poolCD := newDirectPool(t, tokenC, tokenD, 3000, deepLiquidity())
	pools := []*pool.Pool{poolAB, poolBC, poolAC, poolCD}

	amountIn := amountOf(t, tokenA, 1000000)

	t.Run("orders routes best-first", func(t *testing.T) {
		trades, err := BestTradeExactIn(pools, amountIn, tokenC, 3, 5)
		require.NoError(t, err)
		require.Len(t, trades, 2)

		// The direct hop pays one fee, the two-hop route pays two.
		assert.Len(t, trades[0].Route.Pools, 1)
		assert.Len(t, trades[1].Route.Pools, 2)
		assert.Positive(t, trades[0].OutputAmount.Raw().Cmp(trades[1].OutputAmount.Raw()))
		for _, tr := range trades {
			assert.True(t, tr.OutputAmount.Currency.Equal(tokenC))
			assert.Zero(t, tr.InputAmount.Raw().Cmp(amountIn.Raw()))
		}
	})

	t.Run("respects maxHops", func(t *testing.T) {
		trades, err := BestTradeExactIn(pools, amountIn, tokenC, 1, 5)
		require.NoError(t, err)
		require.Len(t, trades, 1)
		assert.Len(t, trades[0].Route.Pools, 1)
	})

	t.Run("respects maxNumResults", func(t *testing.T) {
		trades, err := BestTradeExactIn(pools, amountIn, tokenC, 3, 1)
		require.NoError(t, err)
		require.Len(t, trades, 1)
		assert.Len(t, trades[0].Route.Pools, 1)
	})

	t.Run("prunes dead pools instead of failing", func(t *testing.T) {
		dead := newDeadPool(t, tokenA, tokenC, 500)
		trades, err := BestTradeExactIn(append(pools, dead), amountIn, tokenC, 3, 5)
		require.NoError(t, err)
		require.Len(t, trades, 2)
		for _, tr := range trades {
			for _, p := range tr.Route.Pools {
				assert.NotEqual(t, dead.ID(), p.ID())
			}
		}
	})

	t.Run("returns no trades when everything is pruned", func(t *testing.T) {
		dead := newDeadPool(t, tokenA, tokenC, 500)
		trades, err := BestTradeExactIn([]*pool.Pool{dead}, amountIn, tokenC, 3, 5)
		require.NoError(t, err)
		assert.Empty(t, trades)
	})

	t.Run("validates arguments", func(t *testing.T) {
		_, err := BestTradeExactIn(nil, amountIn, tokenC, 3, 5)
		assert.ErrorIs(t, err, ErrNoPools)

		_, err = BestTradeExactIn(pools, amountIn, tokenC, 0, 5)
		assert.ErrorIs(t, err, ErrInvalidMaxHops)

		_, err = BestTradeExactIn(pools, amountIn, tokenC, 3, 0)
		assert.ErrorIs(t, err, ErrInvalidMaxResults)
	})
}

func TestBestTradeExactOut(t *testing.T) {
	poolAB := newDirectPool(t, tokenA, tokenB, 3000, deepLiquidity())
	poolBC := newDirectPool(t, tokenB, tokenC, 3000, deepLiquidity())
	poolAC := newDirectPool(t, tokenA, tokenC, 3000, deepLiquidity())
	pools := []*pool.Pool{poolAB, poolBC, poolAC}

	amountOut := amountOf(t, tokenC, 1000000)

	t.Run("orders routes by cheapest input", func(t *testing.T) {
		trades, err := BestTradeExactOut(pools, tokenA, amountOut, 3, 5)
		require.NoError(t, err)
		require.Len(t, trades, 2)

		assert.Len(t, trades[0].Route.Pools, 1)
		assert.Len(t, trades[1].Route.Pools, 2)
		assert.Negative(t, trades[0].InputAmount.Raw().Cmp(trades[1].InputAmount.Raw()))
		for _, tr := range trades {
			assert.True(t, tr.InputAmount.Currency.Equal(tokenA))
			assert.Zero(t, tr.OutputAmount.Raw().Cmp(amountOut.Raw()))
		}
	})

	t.Run("prunes unfillable pools", func(t *testing.T) {
		// A shallow pool cannot supply the requested output.
		shallow := newDirectPool(t, tokenA, tokenC, 500, big.NewInt(1000))
		trades, err := BestTradeExactOut(append(pools, shallow), tokenA, amountOut, 3, 5)
		require.NoError(t, err)
		require.Len(t, trades, 2)
		for _, tr := range trades {
			for _, p := range tr.Route.Pools {
				assert.NotEqual(t, shallow.ID(), p.ID())
			}
		}
	})

	t.Run("validates arguments", func(t *testing.T) {
		_, err := BestTradeExactOut(nil, tokenA, amountOut, 3, 5)
		assert.ErrorIs(t, err, ErrNoPools)
	})
}

// stubTrade builds a trade with the given amounts and hop count without
// simulating anything, for exercising the ranking in isolation.
func stubTrade(t *testing.T, hops int, in, out int64) *Trade {
	t.Helper()
	return &Trade{
		Route:        &Route{Pools: make([]*pool.Pool, hops)},
		InputAmount:  amountOf(t, tokenA, in),
		OutputAmount: amountOf(t, tokenC, out),
	}
}

func TestInsertBest(t *testing.T) {
	t.Run("equal output ties go to fewer hops", func(t *testing.T) {
		long := stubTrade(t, 2, 1000, 500)
		short := stubTrade(t, 1, 1000, 500)

		// Insertion order must not matter.
		best := insertBest(nil, long, 5, betterExactIn)
		best = insertBest(best, short, 5, betterExactIn)
		require.Len(t, best, 2)
		assert.Same(t, short, best[0])

		best = insertBest(nil, short, 5, betterExactIn)
		best = insertBest(best, long, 5, betterExactIn)
		require.Len(t, best, 2)
		assert.Same(t, short, best[0])
	})

	t.Run("bounded to maxNumResults", func(t *testing.T) {
		var best []*Trade
		for out := int64(1); out <= 5; out++ {
			best = insertBest(best, stubTrade(t, 1, 1000, out), 3, betterExactIn)
		}
		require.Len(t, best, 3)
		assert.Equal(t, int64(5), best[0].OutputAmount.Raw().Int64())
		assert.Equal(t, int64(3), best[2].OutputAmount.Raw().Int64())
	})

	t.Run("exact out ranks by cheapest input", func(t *testing.T) {
		cheap := stubTrade(t, 2, 900, 500)
		costly := stubTrade(t, 1, 1100, 500)

		best := insertBest(nil, costly, 5, betterExactOut)
		best = insertBest(best, cheap, 5, betterExactOut)
		require.Len(t, best, 2)
		assert.Same(t, cheap, best[0])
	})
}
