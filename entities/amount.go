package entities

import (
	"fmt"
	"math/big"
)

// CurrencyAmount is a quantity of a specific currency held as an exact
// fraction of raw (smallest-unit) amounts.
type CurrencyAmount struct {
	Currency Currency
	*Fraction
}

// NewCurrencyAmount builds an amount from a raw integer-like quantity.
func NewCurrencyAmount(currency Currency, rawAmount any) (*CurrencyAmount, error) {
	f, err := From(rawAmount)
	if err != nil {
		return nil, err
	}
	return &CurrencyAmount{Currency: currency, Fraction: f}, nil
}

// Raw is the truncated raw-unit quantity.
func (a *CurrencyAmount) Raw() *big.Int {
	return a.Fraction.Quotient()
}

// Add returns a + other; the currencies must match.
func (a *CurrencyAmount) Add(other *CurrencyAmount) (*CurrencyAmount, error) {
	if !a.Currency.Equal(other.Currency) {
		return nil, fmt.Errorf("%w: adding %s to %s", ErrCurrencyMismatch, other.Currency.Symbol, a.Currency.Symbol)
	}
	f, err := a.Fraction.Add(other.Fraction)
	if err != nil {
		return nil, err
	}
	return &CurrencyAmount{Currency: a.Currency, Fraction: f}, nil
}

// Subtract returns a - other; the currencies must match.
func (a *CurrencyAmount) Subtract(other *CurrencyAmount) (*CurrencyAmount, error) {
	if !a.Currency.Equal(other.Currency) {
		return nil, fmt.Errorf("%w: subtracting %s from %s", ErrCurrencyMismatch, other.Currency.Symbol, a.Currency.Symbol)
	}
	f, err := a.Fraction.Subtract(other.Fraction)
	if err != nil {
		return nil, err
	}
	return &CurrencyAmount{Currency: a.Currency, Fraction: f}, nil
}

// Multiply scales the amount by an integer-like or Fraction value.
func (a *CurrencyAmount) Multiply(other any) (*CurrencyAmount, error) {
	f, err := a.Fraction.Multiply(other)
	if err != nil {
		return nil, err
	}
	return &CurrencyAmount{Currency: a.Currency, Fraction: f}, nil
}

// ToSignificant renders the human-readable amount (raw / 10^decimals).
func (a *CurrencyAmount) ToSignificant(significantDigits int, rounding Rounding) (string, error) {
	human, err := a.Fraction.Divide(decimalScale(a.Currency.Decimals))
	if err != nil {
		return "", err
	}
	return human.ToSignificant(significantDigits, rounding)
}

// ToFixed renders the human-readable amount with a fixed decimal count.
func (a *CurrencyAmount) ToFixed(decimalPlaces int, rounding Rounding) (string, error) {
	human, err := a.Fraction.Divide(decimalScale(a.Currency.Decimals))
	if err != nil {
		return "", err
	}
	return human.ToFixed(decimalPlaces, rounding)
}

// ToExact renders the full-precision human-readable amount.
func (a *CurrencyAmount) ToExact() (string, error) {
	human, err := a.Fraction.Divide(decimalScale(a.Currency.Decimals))
	if err != nil {
		return "", err
	}
	return human.ToFixed(int(a.Currency.Decimals), RoundDown)
}
