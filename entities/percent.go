package entities

import "math/big"

var oneHundred = &Fraction{Numerator: big.NewInt(100), Denominator: big.NewInt(1)}

// Percent is a Fraction interpreted as a percentage: rendering multiplies the
// underlying value by 100. A slippage tolerance of 0.5% is Percent{5, 1000}.
type Percent struct {
	*Fraction
}

// NewPercent builds a Percent from two integer-like values.
func NewPercent(numerator, denominator any) (*Percent, error) {
	f, err := NewFraction(numerator, denominator)
	if err != nil {
		return nil, err
	}
	return &Percent{Fraction: f}, nil
}

// ToFixed renders the percentage value with decimalPlaces digits.
func (p *Percent) ToFixed(decimalPlaces int, rounding Rounding) (string, error) {
	scaled, err := p.Fraction.Multiply(oneHundred)
	if err != nil {
		return "", err
	}
	return scaled.ToFixed(decimalPlaces, rounding)
}

// ToSignificant renders the percentage value with significantDigits digits.
func (p *Percent) ToSignificant(significantDigits int, rounding Rounding) (string, error) {
	scaled, err := p.Fraction.Multiply(oneHundred)
	if err != nil {
		return "", err
	}
	return scaled.ToSignificant(significantDigits, rounding)
}
