package entities

import (
	"github.com/ethereum/go-ethereum/common"
)

// Currency identifies a token the engine can price. The native chain currency is
// represented by the zero address, which makes it sort ahead of every ERC-20.
type Currency struct {
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
	Symbol   string         `json:"symbol,omitempty"`
}

// NewNative returns the native chain currency (zero address).
func NewNative(decimals uint8, symbol string) Currency {
	return Currency{Decimals: decimals, Symbol: symbol}
}

// NewToken returns an ERC-20 currency.
func NewToken(address common.Address, decimals uint8, symbol string) Currency {
	return Currency{Address: address, Decimals: decimals, Symbol: symbol}
}

// IsNative reports whether the currency is the native chain currency.
func (c Currency) IsNative() bool {
	return c.Address == (common.Address{})
}

// Equal reports whether two currencies identify the same asset.
func (c Currency) Equal(other Currency) bool {
	return c.Address == other.Address
}

// SortsBefore reports whether c precedes other in the protocol's canonical
// currency ordering (ascending by address; the native zero address is first).
func (c Currency) SortsBefore(other Currency) bool {
	return c.Address.Cmp(other.Address) < 0
}
