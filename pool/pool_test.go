package pool

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defiroute/clamm-go/calculator/swapmath"
	"github.com/defiroute/clamm-go/calculator/tickmath"
	"github.com/defiroute/clamm-go/entities"
	"github.com/defiroute/clamm-go/ticklist"
)

var (
	testToken0 = entities.NewToken(common.HexToAddress("0x0000000000000000000000000000000000000001"), 18, "T0")
	testToken1 = entities.NewToken(common.HexToAddress("0x0000000000000000000000000000000000000002"), 18, "T1")
	testToken2 = entities.NewToken(common.HexToAddress("0x0000000000000000000000000000000000000003"), 18, "T2")

	oneX96 = new(big.Int).Lsh(big.NewInt(1), 96)
)

// newTestPool builds a 1:1 pool with a single liquidity band covering
// [-600, 600] at spacing 60.
func newTestPool(t *testing.T, fee uint64) *Pool {
	t.Helper()

	liquidity := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	ticks, err := ticklist.NewList([]ticklist.TickInfo{
		{Index: -600, LiquidityGross: liquidity, LiquidityNet: liquidity},
		{Index: 600, LiquidityGross: liquidity, LiquidityNet: new(big.Int).Neg(liquidity)},
	}, 60)
	require.NoError(t, err)

	p, err := New(testToken0, testToken1, fee, 60, common.Address{}, oneX96, liquidity, 0, ticks)
	require.NoError(t, err)
	return p
}

func TestNew(t *testing.T) {
	t.Run("rejects fee at or above 100%", func(t *testing.T) {
		_, err := New(testToken0, testToken1, swapmath.MaxFeePips, 60, common.Address{}, oneX96, big.NewInt(0), 0, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidFee)
	})

	t.Run("rejects price outside the tick bracket", func(t *testing.T) {
		_, err := New(testToken0, testToken1, 3000, 60, common.Address{}, oneX96, big.NewInt(0), 1000, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPriceBoundsMismatch)

		_, err = New(testToken0, testToken1, 3000, 60, common.Address{}, oneX96, big.NewInt(0), -1000, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPriceBoundsMismatch)
	})

	t.Run("sorts currencies", func(t *testing.T) {
		a, err := New(testToken0, testToken1, 3000, 60, common.Address{}, oneX96, big.NewInt(0), 0, nil)
		require.NoError(t, err)
		b, err := New(testToken1, testToken0, 3000, 60, common.Address{}, oneX96, big.NewInt(0), 0, nil)
		require.NoError(t, err)

		assert.True(t, a.Currency0.Equal(b.Currency0))
		assert.True(t, a.Currency1.Equal(b.Currency1))
		assert.Equal(t, a.ID(), b.ID())
	})

	t.Run("detaches price and liquidity from the caller", func(t *testing.T) {
		price := new(big.Int).Set(oneX96)
		liquidity := big.NewInt(1000)
		p, err := New(testToken0, testToken1, 3000, 60, common.Address{}, price, liquidity, 0, nil)
		require.NoError(t, err)

		price.SetInt64(0)
		liquidity.SetInt64(0)
		assert.Zero(t, p.SqrtRatioX96.Cmp(oneX96))
		assert.Equal(t, int64(1000), p.Liquidity.Int64())
	})
}

func TestPoolID(t *testing.T) {
	base := NewKey(testToken0, testToken1, 3000, 60, common.Address{})
	sameReversed := NewKey(testToken1, testToken0, 3000, 60, common.Address{})
	otherFee := NewKey(testToken0, testToken1, 500, 10, common.Address{})

	assert.Equal(t, base.ID(), sameReversed.ID())
	assert.NotEqual(t, base.ID(), otherFee.ID())
}

func TestInvolvesCurrency(t *testing.T) {
	p := newTestPool(t, 3000)
	assert.True(t, p.InvolvesCurrency(testToken0))
	assert.True(t, p.InvolvesCurrency(testToken1))
	assert.False(t, p.InvolvesCurrency(testToken2))
}

func TestPrices(t *testing.T) {
	p := newTestPool(t, 3000)

	price0, err := p.Token0Price()
	require.NoError(t, err)
	s, err := price0.ToSignificant(5, entities.RoundHalfUp)
	require.NoError(t, err)
	assert.Equal(t, "1", s)

	price1, err := p.Token1Price()
	require.NoError(t, err)
	s, err = price1.ToSignificant(5, entities.RoundHalfUp)
	require.NoError(t, err)
	assert.Equal(t, "1", s)

	byCurrency, err := p.PriceOf(testToken1)
	require.NoError(t, err)
	assert.Zero(t, byCurrency.Fraction.Numerator.Cmp(price1.Fraction.Numerator))

	_, err = p.PriceOf(testToken2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCurrencyNotInvolved)
}

func TestGetOutputAmount(t *testing.T) {
	t.Run("rejects foreign input currency", func(t *testing.T) {
		p := newTestPool(t, 3000)
		in, err := entities.NewCurrencyAmount(testToken2, 1000)
		require.NoError(t, err)
		_, _, err = p.GetOutputAmount(in, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCurrencyNotInvolved)
	})

	t.Run("swaps token0 for token1", func(t *testing.T) {
		p := newTestPool(t, 0)
		in, err := entities.NewCurrencyAmount(testToken0, 100000)
		require.NoError(t, err)

		out, next, err := p.GetOutputAmount(in, nil)
		require.NoError(t, err)
		assert.True(t, out.Currency.Equal(testToken1))
		assert.Positive(t, out.Raw().Sign())

		// At a 1:1 price with zero fee the pool never pays out more than it
		// takes in.
		assert.LessOrEqual(t, out.Raw().Int64(), in.Raw().Int64())

		// Selling token0 moves the price down.
		assert.Negative(t, next.SqrtRatioX96.Cmp(p.SqrtRatioX96))
	})

	t.Run("swaps token1 for token0", func(t *testing.T) {
		p := newTestPool(t, 0)
		in, err := entities.NewCurrencyAmount(testToken1, 100000)
		require.NoError(t, err)

		out, next, err := p.GetOutputAmount(in, nil)
		require.NoError(t, err)
		assert.True(t, out.Currency.Equal(testToken0))
		assert.Positive(t, out.Raw().Sign())
		assert.Positive(t, next.SqrtRatioX96.Cmp(p.SqrtRatioX96))
	})

	t.Run("fee higher than output yields no output", func(t *testing.T) {
		p := newTestPool(t, 3000)
		in, err := entities.NewCurrencyAmount(testToken0, 1)
		require.NoError(t, err)

		_, _, err = p.GetOutputAmount(in, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientInputAmount)
	})

	t.Run("rejects limit on the wrong side", func(t *testing.T) {
		p := newTestPool(t, 3000)
		in, err := entities.NewCurrencyAmount(testToken0, 1000)
		require.NoError(t, err)

		// Selling token0 moves the price down; a limit above the current
		// price can never be reached.
		limit := new(big.Int).Add(p.SqrtRatioX96, big.NewInt(1))
		_, _, err = p.GetOutputAmount(in, limit)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPriceLimit)
	})

	t.Run("rejects limit outside protocol bounds", func(t *testing.T) {
		p := newTestPool(t, 3000)
		in, err := entities.NewCurrencyAmount(testToken0, 1000)
		require.NoError(t, err)

		_, _, err = p.GetOutputAmount(in, tickmath.MIN_SQRT_RATIO)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPriceLimit)
	})

	t.Run("does not mutate the snapshot", func(t *testing.T) {
		p := newTestPool(t, 3000)
		priceBefore := new(big.Int).Set(p.SqrtRatioX96)
		liquidityBefore := new(big.Int).Set(p.Liquidity)
		in, err := entities.NewCurrencyAmount(testToken0, 100000)
		require.NoError(t, err)

		_, next, err := p.GetOutputAmount(in, nil)
		require.NoError(t, err)
		assert.NotSame(t, p, next)
		assert.Zero(t, p.SqrtRatioX96.Cmp(priceBefore))
		assert.Zero(t, p.Liquidity.Cmp(liquidityBefore))
		assert.Equal(t, 0, p.TickCurrent)
	})
}

func TestGetInputAmount(t *testing.T) {
	t.Run("input covers output plus fee", func(t *testing.T) {
		p := newTestPool(t, 3000)
		out, err := entities.NewCurrencyAmount(testToken1, 100000)
		require.NoError(t, err)

		in, next, err := p.GetInputAmount(out, nil)
		require.NoError(t, err)
		assert.True(t, in.Currency.Equal(testToken0))
		assert.Greater(t, in.Raw().Int64(), out.Raw().Int64())
		assert.Negative(t, next.SqrtRatioX96.Cmp(p.SqrtRatioX96))
	})

	t.Run("insufficient liquidity for oversized output", func(t *testing.T) {
		p := newTestPool(t, 3000)
		// Far more token1 than the band holds.
		huge := new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil)
		out, err := entities.NewCurrencyAmount(testToken1, huge)
		require.NoError(t, err)

		_, _, err = p.GetInputAmount(out, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientLiquidity)
	})

	t.Run("rejects foreign output currency", func(t *testing.T) {
		p := newTestPool(t, 3000)
		out, err := entities.NewCurrencyAmount(testToken2, 1000)
		require.NoError(t, err)
		_, _, err = p.GetInputAmount(out, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCurrencyNotInvolved)
	})
}

func TestSwapCrossesTick(t *testing.T) {
	p := newTestPool(t, 3000)

	// Large enough to push the price below tick -600 and out of the band.
	in, err := entities.NewCurrencyAmount(testToken0, new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil))
	require.NoError(t, err)

	out, next, err := p.GetOutputAmount(in, nil)
	require.NoError(t, err)
	assert.Positive(t, out.Raw().Sign())
	assert.Less(t, next.TickCurrent, -600)
	assert.Zero(t, next.Liquidity.Sign())
}

func TestSwapReferenceVectors(t *testing.T) {
	// 0.3% fee, 1:1 price, 1e18 liquidity across the full range: values match
	// the reference SDK.
	liquidity := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	ticks, err := ticklist.NewList([]ticklist.TickInfo{
		{Index: -887220, LiquidityGross: liquidity, LiquidityNet: liquidity},
		{Index: 887220, LiquidityGross: liquidity, LiquidityNet: new(big.Int).Neg(liquidity)},
	}, 60)
	require.NoError(t, err)
	p, err := New(testToken0, testToken1, 3000, 60, common.Address{}, oneX96, liquidity, 0, ticks)
	require.NoError(t, err)

	t.Run("exact input 100 yields 98", func(t *testing.T) {
		in, err := entities.NewCurrencyAmount(testToken0, 100)
		require.NoError(t, err)
		out, _, err := p.GetOutputAmount(in, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(98), out.Raw().Int64())
	})

	t.Run("exact output 100 costs 102", func(t *testing.T) {
		out, err := entities.NewCurrencyAmount(testToken1, 100)
		require.NoError(t, err)
		in, _, err := p.GetInputAmount(out, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(102), in.Raw().Int64())
	})
}

func TestSwapRoundTrip(t *testing.T) {
	// With zero fee, quoting the input for a previously quoted output should
	// cost no more than the original input.
	p := newTestPool(t, 0)
	in, err := entities.NewCurrencyAmount(testToken0, 1000000)
	require.NoError(t, err)

	out, _, err := p.GetOutputAmount(in, nil)
	require.NoError(t, err)

	back, _, err := p.GetInputAmount(out, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, back.Raw().Int64(), in.Raw().Int64())
}
