package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/defiroute/clamm-go/entities"
)

// Key is the canonical identity of a pool: both currencies in ascending
// order (the native zero address first), the fee in hundredths of a bip,
// the tick spacing, and the hook contract extending the pool (zero when none).
type Key struct {
	Currency0   common.Address `json:"currency0"`
	Currency1   common.Address `json:"currency1"`
	Fee         uint64         `json:"fee"`
	TickSpacing int            `json:"tickSpacing"`
	Hooks       common.Address `json:"hooks"`
}

// NewKey builds a Key from two currencies in either order.
func NewKey(currencyA, currencyB entities.Currency, fee uint64, tickSpacing int, hooks common.Address) Key {
	c0, c1 := currencyA.Address, currencyB.Address
	if !currencyA.SortsBefore(currencyB) {
		c0, c1 = c1, c0
	}
	return Key{
		Currency0:   c0,
		Currency1:   c1,
		Fee:         fee,
		TickSpacing: tickSpacing,
		Hooks:       hooks,
	}
}

// ID is the keccak256 hash of the abi-encoded key tuple, matching the
// on-chain pool identifier. It is a pure function of the key: the same
// inputs always produce the same hash regardless of construction order.
func (k Key) ID() common.Hash {
	// abi.encode lays the tuple out as five 32-byte words.
	encoded := make([]byte, 0, 5*32)
	encoded = append(encoded, common.LeftPadBytes(k.Currency0.Bytes(), 32)...)
	encoded = append(encoded, common.LeftPadBytes(k.Currency1.Bytes(), 32)...)
	encoded = append(encoded, common.LeftPadBytes(new(big.Int).SetUint64(k.Fee).Bytes(), 32)...)
	encoded = append(encoded, common.LeftPadBytes(signedWord(k.TickSpacing), 32)...)
	encoded = append(encoded, common.LeftPadBytes(k.Hooks.Bytes(), 32)...)
	return crypto.Keccak256Hash(encoded)
}

// signedWord encodes an integer as a two's-complement 256-bit word.
func signedWord(v int) []byte {
	n := big.NewInt(int64(v))
	if n.Sign() < 0 {
		n.Add(n, new(big.Int).Lsh(big.NewInt(1), 256))
	}
	return n.Bytes()
}
