package entities

import (
	"errors"
	"fmt"
	"math/big"
)

var ErrCurrencyMismatch = errors.New("currency mismatch")

// Price expresses how much of the quote currency one unit of the base currency
// buys. The raw fraction is quote-raw-amount over base-raw-amount; Adjusted
// rescales it by the two currencies' decimal counts.
type Price struct {
	BaseCurrency  Currency
	QuoteCurrency Currency

	// raw fraction: numerator is in quote raw units, denominator in base raw units
	*Fraction

	scalar *Fraction
}

// NewPrice builds a Price from raw denominator (base) and numerator (quote)
// amounts.
func NewPrice(base, quote Currency, denominator, numerator any) (*Price, error) {
	f, err := NewFraction(numerator, denominator)
	if err != nil {
		return nil, err
	}
	return &Price{
		BaseCurrency:  base,
		QuoteCurrency: quote,
		Fraction:      f,
		scalar: &Fraction{
			Numerator:   decimalScale(base.Decimals),
			Denominator: decimalScale(quote.Decimals),
		},
	}, nil
}

func decimalScale(decimals uint8) *big.Int {
	return new(big.Int).Exp(ten, big.NewInt(int64(decimals)), nil)
}

// Invert flips the price to quote the base currency in units of the quote.
func (p *Price) Invert() (*Price, error) {
	f, err := p.Fraction.Invert()
	if err != nil {
		return nil, err
	}
	return &Price{
		BaseCurrency:  p.QuoteCurrency,
		QuoteCurrency: p.BaseCurrency,
		Fraction:      f,
		scalar: &Fraction{
			Numerator:   decimalScale(p.QuoteCurrency.Decimals),
			Denominator: decimalScale(p.BaseCurrency.Decimals),
		},
	}, nil
}

// Multiply chains two prices: (a/b) * (b/c) = a/c. The other price's base must
// equal this price's quote currency.
func (p *Price) Multiply(other *Price) (*Price, error) {
	if !p.QuoteCurrency.Equal(other.BaseCurrency) {
		return nil, fmt.Errorf("%w: cannot chain price of %s with base %s",
			ErrCurrencyMismatch, p.QuoteCurrency.Symbol, other.BaseCurrency.Symbol)
	}
	f, err := p.Fraction.Multiply(other.Fraction)
	if err != nil {
		return nil, err
	}
	return &Price{
		BaseCurrency:  p.BaseCurrency,
		QuoteCurrency: other.QuoteCurrency,
		Fraction:      f,
		scalar: &Fraction{
			Numerator:   decimalScale(p.BaseCurrency.Decimals),
			Denominator: decimalScale(other.QuoteCurrency.Decimals),
		},
	}, nil
}

// Adjusted is the decimal-scale-corrected price fraction.
func (p *Price) Adjusted() (*Fraction, error) {
	return p.Fraction.Multiply(p.scalar)
}

// Quote converts a base currency amount through the price.
func (p *Price) Quote(amount *CurrencyAmount) (*CurrencyAmount, error) {
	if !amount.Currency.Equal(p.BaseCurrency) {
		return nil, fmt.Errorf("%w: quoting %s amount against %s price",
			ErrCurrencyMismatch, amount.Currency.Symbol, p.BaseCurrency.Symbol)
	}
	f, err := p.Fraction.Multiply(amount.Fraction)
	if err != nil {
		return nil, err
	}
	return &CurrencyAmount{Currency: p.QuoteCurrency, Fraction: f}, nil
}

// ToSignificant renders the adjusted price.
func (p *Price) ToSignificant(significantDigits int, rounding Rounding) (string, error) {
	adjusted, err := p.Adjusted()
	if err != nil {
		return "", err
	}
	return adjusted.ToSignificant(significantDigits, rounding)
}

// ToFixed renders the adjusted price.
func (p *Price) ToFixed(decimalPlaces int, rounding Rounding) (string, error) {
	adjusted, err := p.Adjusted()
	if err != nil {
		return "", err
	}
	return adjusted.ToFixed(decimalPlaces, rounding)
}
