package tickmath

import (
	"errors"
	"math/big"
	"sync"

	"github.com/holiman/uint256"

	"github.com/defiroute/clamm-go/calculator/bitmath"
)

var (
	// MIN_TICK is the minimum tick that may be passed to SqrtRatioAtTick.
	MIN_TICK = -887272
	// MAX_TICK is the maximum tick that may be passed to SqrtRatioAtTick.
	MAX_TICK = 887272

	// MIN_SQRT_RATIO is the sqrt price at MIN_TICK.
	MIN_SQRT_RATIO = big.NewInt(4295128739)
	// MAX_SQRT_RATIO is the sqrt price at MAX_TICK.
	MAX_SQRT_RATIO, _ = new(big.Int).SetString("1461446703485210103287273052203988822378723970342", 10)

	ErrInvalidTick      = errors.New("tickmath: tick out of bounds")
	ErrInvalidSqrtRatio = errors.New("tickmath: sqrt ratio out of bounds")

	one        = uint256.NewInt(1)
	maxUint256 = uint256.MustFromBig(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))

	minSqrtRatioU = uint256.MustFromBig(MIN_SQRT_RATIO)
	maxSqrtRatioU = uint256.MustFromBig(MAX_SQRT_RATIO)

	// Constants for SqrtRatioAtTick, pre-parsed from hex.
	// Entry i (for i >= 2) is sqrt(1.0001^(2^(i-1))) in UQ128.128; entry 0 is
	// sqrt(1.0001), entry 1 is one, and the last entry is the 32-bit rounding mask.
	ratioConstants = [22]*uint256.Int{
		uint256.MustFromHex("0xfffcb933bd6fad37aa2d162d1a594001"),
		uint256.MustFromHex("0x100000000000000000000000000000000"),
		uint256.MustFromHex("0xfff97272373d413259a46990580e213a"),
		uint256.MustFromHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
		uint256.MustFromHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
		uint256.MustFromHex("0xffcb9843d60f6159c9db58835c926644"),
		uint256.MustFromHex("0xff973b41fa98c081472e6896dfb254c0"),
		uint256.MustFromHex("0xff2ea16466c96a3843ec78b326b52861"),
		uint256.MustFromHex("0xfe5dee046a99a2a811c461f1969c3053"),
		uint256.MustFromHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
		uint256.MustFromHex("0xf987a7253ac413176f2b074cf7815e54"),
		uint256.MustFromHex("0xf3392b0822b70005940c7a398e4b70f3"),
		uint256.MustFromHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
		uint256.MustFromHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
		uint256.MustFromHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
		uint256.MustFromHex("0x70d869a156d2a1b890bb3df62baf32f7"),
		uint256.MustFromHex("0x31be135f97d08fd981231505542fcfa6"),
		uint256.MustFromHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
		uint256.MustFromHex("0x5d6af8dedb81196699c329225ee604"),
		uint256.MustFromHex("0x2216e584f5fa1ea926041bedfe98"),
		uint256.MustFromHex("0x48a170391f7dc42444e8fa2"),
		uint256.MustFromHex("0xffffffff"),
	}

	// Constants for TickAtSqrtRatio.
	magicSqrt10001 = uint256.MustFromDecimal("255738958999603826347141")
	magicTickLow   = uint256.MustFromDecimal("3402992956809132418596140100660247210")
	magicTickHigh  = uint256.MustFromDecimal("291339464771989622907027621153398088495")
)

// tickMath holds reusable scratch values to avoid allocations in the hot path.
type tickMath struct {
	ratio *uint256.Int
	rem   *uint256.Int
	r     *uint256.Int
	f     *uint256.Int
	log2  *uint256.Int
	bound *uint256.Int
	temp  *big.Int
}

var pool = sync.Pool{
	New: func() any {
		return &tickMath{
			ratio: new(uint256.Int),
			rem:   new(uint256.Int),
			r:     new(uint256.Int),
			f:     new(uint256.Int),
			log2:  new(uint256.Int),
			bound: new(uint256.Int),
			temp:  new(big.Int),
		}
	},
}

// SqrtRatioAtTick writes sqrt(1.0001^tick) * 2^96 into dest as a Q64.96 value.
func SqrtRatioAtTick(dest *big.Int, tick int) error {
	if tick < MIN_TICK || tick > MAX_TICK {
		return ErrInvalidTick
	}

	tm := pool.Get().(*tickMath)
	defer pool.Put(tm)

	tm.sqrtRatioAtTick(tm.ratio, tick)
	tm.ratio.IntoBig(&dest)
	return nil
}

// sqrtRatioAtTick is the internal implementation, valid only for in-range ticks.
func (tm *tickMath) sqrtRatioAtTick(dest *uint256.Int, tick int) {
	absTick := tick
	if tick < 0 {
		absTick = -tick
	}

	if (absTick & 0x1) != 0 {
		dest.Set(ratioConstants[0])
	} else {
		dest.Set(ratioConstants[1])
	}

	// Apply the magic constant for every set bit of |tick|, keeping the
	// intermediate ratio in UQ128.128.
	for i := 2; i < 21; i++ {
		if (absTick & (1 << (i - 1))) != 0 {
			dest.Mul(dest, ratioConstants[i]).Rsh(dest, 128)
		}
	}

	// Positive ticks use the reciprocal.
	if tick > 0 {
		dest.Div(maxUint256, dest)
	}

	// Down to Q64.96: divide by 2^32 rounding up. The round-up never overflows
	// because a nonzero low word means the quotient was truncated.
	tm.rem.And(dest, ratioConstants[21])
	dest.Rsh(dest, 32)
	if tm.rem.Sign() > 0 {
		dest.Add(dest, one)
	}
}

// TickAtSqrtRatio returns the greatest tick such that SqrtRatioAtTick(tick) is
// at most sqrtPriceX96. Valid for [MIN_SQRT_RATIO, MAX_SQRT_RATIO).
func TickAtSqrtRatio(sqrtPriceX96 *big.Int) (int, error) {
	if sqrtPriceX96.Cmp(MIN_SQRT_RATIO) < 0 || sqrtPriceX96.Cmp(MAX_SQRT_RATIO) >= 0 {
		return 0, ErrInvalidSqrtRatio
	}

	tm := pool.Get().(*tickMath)
	defer pool.Put(tm)

	sqrtPrice, _ := uint256.FromBig(sqrtPriceX96)

	// Base-2 log of the UQ128.128 price: most significant bit first, then 14
	// refinement iterations each recovering one fractional bit.
	tm.ratio.Lsh(sqrtPrice, 32)
	msb, err := bitmath.MostSignificantBit(tm.ratio)
	if err != nil {
		return 0, err
	}

	if msb >= 128 {
		tm.r.Rsh(tm.ratio, msb-127)
	} else {
		tm.r.Lsh(tm.ratio, 127-msb)
	}

	// log2 is a signed Q64.64 value carried in two's complement.
	if msb >= 128 {
		tm.log2.SetUint64(uint64(msb - 128))
	} else {
		tm.log2.SetUint64(uint64(128 - msb))
		tm.log2.Neg(tm.log2)
	}
	tm.log2.Lsh(tm.log2, 64)

	for i := 0; i < 14; i++ {
		tm.r.Mul(tm.r, tm.r).Rsh(tm.r, 127)
		tm.f.Rsh(tm.r, 128)
		tm.log2.Or(tm.log2, tm.bound.Lsh(tm.f, uint(63-i)))
		tm.r.Rsh(tm.r, uint(tm.f.Uint64()))
	}

	// Change of base to log sqrt(1.0001); the magic bounds absorb the maximum
	// error of the truncated log, leaving at most two candidate ticks.
	tm.log2.Mul(tm.log2, magicSqrt10001)

	tickLow := signedTick(tm.bound.Sub(tm.log2, magicTickLow))
	tickHigh := signedTick(tm.bound.Add(tm.log2, magicTickHigh))

	if tickLow == tickHigh {
		return tickLow, nil
	}

	// Two candidates: resolve through the forward function.
	tm.sqrtRatioAtTick(tm.ratio, tickHigh)
	if tm.ratio.Cmp(sqrtPrice) <= 0 {
		return tickHigh, nil
	}
	return tickLow, nil
}

// signedTick extracts a tick from a two's-complement Q128 value via an
// arithmetic right shift by 128 bits.
func signedTick(v *uint256.Int) int {
	v.SRsh(v, 128)
	return int(int64(v.Uint64()))
}
