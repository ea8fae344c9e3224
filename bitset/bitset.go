// Package bitset provides a minimal fixed-size bit set. The route search uses
// one to mark pools already on the current branch without allocating per
// recursion step.
package bitset

const wordBits = 64

// BitSet is a fixed-size set of bits backed by a uint64 slice. The zero-value
// slice is unusable; construct with NewBitSet.
type BitSet []uint64

// NewBitSet returns a set able to hold n bits, all unset.
func NewBitSet(n uint64) BitSet {
	return make(BitSet, (n+wordBits-1)/wordBits)
}

// IsSet reports whether the bit at index is set.
func (b BitSet) IsSet(index uint64) bool {
	return b[index/wordBits]&(1<<(index%wordBits)) != 0
}

// Set sets the bit at index.
func (b BitSet) Set(index uint64) {
	b[index/wordBits] |= 1 << (index % wordBits)
}

// Unset clears the bit at index.
func (b BitSet) Unset(index uint64) {
	b[index/wordBits] &^= 1 << (index % wordBits)
}
