package bitmath

import (
	"errors"

	"github.com/holiman/uint256"
)

// ErrInputIsZero is returned when a function requires a non-zero input but receives zero.
var ErrInputIsZero = errors.New("bitmath: input must be greater than zero")

// MostSignificantBit returns the index of the most significant set bit of x,
// where the least significant bit is at index 0.
//
// The function satisfies the property: x >= 2**msb(x) and x < 2**(msb(x)+1)
func MostSignificantBit(x *uint256.Int) (uint, error) {
	if x.IsZero() {
		return 0, ErrInputIsZero
	}
	// BitLen is the number of bits needed to represent x, so the index of the
	// highest set bit is always BitLen - 1.
	return uint(x.BitLen() - 1), nil
}

// LeastSignificantBit returns the index of the least significant set bit of x,
// where the least significant bit is at index 0.
//
// The function satisfies the property: (x & 2**lsb(x)) != 0
func LeastSignificantBit(x *uint256.Int) (uint, error) {
	if x.IsZero() {
		return 0, ErrInputIsZero
	}
	// Isolate the lowest set bit (x & -x), then its index is BitLen - 1.
	neg := new(uint256.Int).Neg(x)
	neg.And(neg, x)
	return uint(neg.BitLen() - 1), nil
}
