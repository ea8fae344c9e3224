package entities

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Rounding selects how the decimal renderers resolve a truncated remainder.
type Rounding int

const (
	// RoundDown discards the remainder (truncation toward zero).
	RoundDown Rounding = iota
	// RoundHalfUp rounds an exact half away from zero.
	RoundHalfUp
	// RoundUp rounds any nonzero remainder away from zero.
	RoundUp
)

var (
	ErrZeroDenominator = errors.New("fraction: denominator must not be zero")
	ErrNotInteger      = errors.New("fraction: value is not an integer-like")

	ErrNegativeSlippageTolerance = errors.New("slippage tolerance must not be negative")

	one = big.NewInt(1)
	ten = big.NewInt(10)
)

// Fraction is an exact rational number. Instances are immutable: every operation
// returns a new Fraction and never mutates its operands. The fraction is not
// required to be in lowest terms.
type Fraction struct {
	Numerator   *big.Int
	Denominator *big.Int
}

// NewFraction builds a Fraction from two integer-like values.
// See From for the accepted operand kinds.
func NewFraction(numerator, denominator any) (*Fraction, error) {
	n, err := parseIntegerLike(numerator)
	if err != nil {
		return nil, err
	}
	d, err := parseIntegerLike(denominator)
	if err != nil {
		return nil, err
	}
	if d.Sign() == 0 {
		return nil, ErrZeroDenominator
	}
	return &Fraction{Numerator: n, Denominator: d}, nil
}

// NewInt returns the fraction value/1.
func NewInt(value int64) *Fraction {
	return &Fraction{Numerator: big.NewInt(value), Denominator: big.NewInt(1)}
}

// From coerces an operand into a Fraction. Accepted kinds: *Fraction, Fraction,
// *big.Int, int, int64, uint64, and numeric strings in base 10 or 0x-prefixed
// base 16. This is the single coercion point used by every binary operation.
func From(value any) (*Fraction, error) {
	switch v := value.(type) {
	case *Fraction:
		return v, nil
	case Fraction:
		return &v, nil
	case *Percent:
		return v.Fraction, nil
	default:
		n, err := parseIntegerLike(value)
		if err != nil {
			return nil, err
		}
		return &Fraction{Numerator: n, Denominator: big.NewInt(1)}, nil
	}
}

func parseIntegerLike(value any) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case string:
		s := v
		neg := strings.HasPrefix(s, "-")
		if neg {
			s = s[1:]
		}
		base := 10
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			s = s[2:]
			base = 16
		}
		n, ok := new(big.Int).SetString(s, base)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotInteger, v)
		}
		if neg {
			n.Neg(n)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotInteger, value)
	}
}

// Quotient is the integer part of the fraction, truncated toward zero.
func (f *Fraction) Quotient() *big.Int {
	return new(big.Int).Quo(f.Numerator, f.Denominator)
}

// Remainder is the fractional part left after removing Quotient.
func (f *Fraction) Remainder() *Fraction {
	return &Fraction{
		Numerator:   new(big.Int).Rem(f.Numerator, f.Denominator),
		Denominator: new(big.Int).Set(f.Denominator),
	}
}

// Invert returns the reciprocal. Inverting a zero fraction fails.
func (f *Fraction) Invert() (*Fraction, error) {
	if f.Numerator.Sign() == 0 {
		return nil, ErrZeroDenominator
	}
	return &Fraction{
		Numerator:   new(big.Int).Set(f.Denominator),
		Denominator: new(big.Int).Set(f.Numerator),
	}, nil
}

// Add returns f + other.
func (f *Fraction) Add(other any) (*Fraction, error) {
	o, err := From(other)
	if err != nil {
		return nil, err
	}
	if f.Denominator.Cmp(o.Denominator) == 0 {
		return &Fraction{
			Numerator:   new(big.Int).Add(f.Numerator, o.Numerator),
			Denominator: new(big.Int).Set(f.Denominator),
		}, nil
	}
	n := new(big.Int).Mul(f.Numerator, o.Denominator)
	n.Add(n, new(big.Int).Mul(o.Numerator, f.Denominator))
	return &Fraction{
		Numerator:   n,
		Denominator: new(big.Int).Mul(f.Denominator, o.Denominator),
	}, nil
}

// Subtract returns f - other.
func (f *Fraction) Subtract(other any) (*Fraction, error) {
	o, err := From(other)
	if err != nil {
		return nil, err
	}
	if f.Denominator.Cmp(o.Denominator) == 0 {
		return &Fraction{
			Numerator:   new(big.Int).Sub(f.Numerator, o.Numerator),
			Denominator: new(big.Int).Set(f.Denominator),
		}, nil
	}
	n := new(big.Int).Mul(f.Numerator, o.Denominator)
	n.Sub(n, new(big.Int).Mul(o.Numerator, f.Denominator))
	return &Fraction{
		Numerator:   n,
		Denominator: new(big.Int).Mul(f.Denominator, o.Denominator),
	}, nil
}

// Multiply returns f * other.
func (f *Fraction) Multiply(other any) (*Fraction, error) {
	o, err := From(other)
	if err != nil {
		return nil, err
	}
	return &Fraction{
		Numerator:   new(big.Int).Mul(f.Numerator, o.Numerator),
		Denominator: new(big.Int).Mul(f.Denominator, o.Denominator),
	}, nil
}

// Divide returns f / other.
func (f *Fraction) Divide(other any) (*Fraction, error) {
	o, err := From(other)
	if err != nil {
		return nil, err
	}
	if o.Numerator.Sign() == 0 {
		return nil, ErrZeroDenominator
	}
	return &Fraction{
		Numerator:   new(big.Int).Mul(f.Numerator, o.Denominator),
		Denominator: new(big.Int).Mul(f.Denominator, o.Numerator),
	}, nil
}

// cmp compares two fractions after cross-multiplying onto a common denominator.
func (f *Fraction) cmp(o *Fraction) int {
	left := new(big.Int).Mul(f.Numerator, o.Denominator)
	right := new(big.Int).Mul(o.Numerator, f.Denominator)
	// Flip the comparison when the cross-multiplied denominators differ in sign.
	if f.Denominator.Sign()*o.Denominator.Sign() < 0 {
		return right.Cmp(left)
	}
	return left.Cmp(right)
}

// LessThan reports f < other.
func (f *Fraction) LessThan(other any) (bool, error) {
	o, err := From(other)
	if err != nil {
		return false, err
	}
	return f.cmp(o) < 0, nil
}

// EqualTo reports f == other.
func (f *Fraction) EqualTo(other any) (bool, error) {
	o, err := From(other)
	if err != nil {
		return false, err
	}
	return f.cmp(o) == 0, nil
}

// GreaterThan reports f > other.
func (f *Fraction) GreaterThan(other any) (bool, error) {
	o, err := From(other)
	if err != nil {
		return false, err
	}
	return f.cmp(o) > 0, nil
}

// Sign reports the sign of the fraction: -1, 0 or +1.
func (f *Fraction) Sign() int {
	return f.Numerator.Sign() * f.Denominator.Sign()
}

// roundedScaled computes |f| * 10^places as an integer, rounded per mode.
// places may be negative, in which case the trailing digits are rounded away
// and the result is padded back with zeros.
func (f *Fraction) roundedScaled(places int, rounding Rounding) *big.Int {
	n := new(big.Int).Abs(f.Numerator)
	d := new(big.Int).Abs(f.Denominator)

	var pad *big.Int
	if places >= 0 {
		n.Mul(n, new(big.Int).Exp(ten, big.NewInt(int64(places)), nil))
	} else {
		pad = new(big.Int).Exp(ten, big.NewInt(int64(-places)), nil)
		d = new(big.Int).Mul(d, pad)
	}

	q, r := new(big.Int).QuoRem(n, d, new(big.Int))
	switch rounding {
	case RoundDown:
		// truncate
	case RoundHalfUp:
		// The exact remainder is compared against half the denominator; an
		// exact half rounds away from zero.
		if new(big.Int).Lsh(r, 1).Cmp(d) >= 0 {
			q.Add(q, one)
		}
	case RoundUp:
		if r.Sign() != 0 {
			q.Add(q, one)
		}
	}
	if pad != nil {
		q.Mul(q, pad)
	}
	return q
}

// ToFixed renders the fraction with exactly decimalPlaces digits after the
// decimal point, rounded per the given mode. The sign is preserved.
func (f *Fraction) ToFixed(decimalPlaces int, rounding Rounding) (string, error) {
	if decimalPlaces < 0 {
		return "", fmt.Errorf("fraction: decimalPlaces must not be negative, got %d", decimalPlaces)
	}
	q := f.roundedScaled(decimalPlaces, rounding)
	return formatScaled(q, decimalPlaces, f.Sign() < 0, false), nil
}

// ToSignificant renders the fraction keeping significantDigits significant
// digits, rounded per the given mode. Trailing zeros after the decimal point
// are dropped.
func (f *Fraction) ToSignificant(significantDigits int, rounding Rounding) (string, error) {
	if significantDigits <= 0 {
		return "", fmt.Errorf("fraction: significantDigits must be positive, got %d", significantDigits)
	}
	if f.Numerator.Sign() == 0 {
		return "0", nil
	}

	n := new(big.Int).Abs(f.Numerator)
	d := new(big.Int).Abs(f.Denominator)

	intPart := new(big.Int).Quo(n, d)
	var places int
	if intPart.Sign() > 0 {
		// Magnitude >= 1: keep significantDigits counting from the leading
		// integer digit; places goes negative once the integer part alone
		// exceeds the requested digits.
		places = significantDigits - len(intPart.String())
	} else {
		// Magnitude < 1: count the leading zeros after the decimal point by
		// repeated x10 scaling until a significant digit appears.
		leadingZeros := 0
		scaled := new(big.Int).Set(n)
		for {
			scaled.Mul(scaled, ten)
			if scaled.Cmp(d) >= 0 {
				break
			}
			leadingZeros++
		}
		places = leadingZeros + significantDigits
	}

	q := f.roundedScaled(places, rounding)
	if places < 0 {
		places = 0
	}
	return formatScaled(q, places, f.Sign() < 0, true), nil
}

// formatScaled renders value/10^places, inserting the decimal point.
func formatScaled(value *big.Int, places int, negative, trimZeros bool) string {
	digits := value.String()
	var out string
	if places == 0 {
		out = digits
	} else {
		for len(digits) <= places {
			digits = "0" + digits
		}
		out = digits[:len(digits)-places] + "." + digits[len(digits)-places:]
		if trimZeros {
			out = strings.TrimRight(out, "0")
			out = strings.TrimSuffix(out, ".")
		}
	}
	if negative && value.Sign() != 0 {
		out = "-" + out
	}
	return out
}
