package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// Interest math divides rates by day counts; the default division
	// precision of 16 loses digits over long daily accrual chains.
	decimal.DivisionPrecision = 19
}

// Currency describes the precision rules for one ISO 4217 currency.
type Currency struct {
	Code          string
	DecimalPlaces int32
	// InMultiplesOf constrains cash amounts to a multiple (e.g. 5 for
	// currencies without small coins). Zero means no constraint.
	InMultiplesOf int64
}

// Money is an amount bound to a currency, always held at the currency's
// decimal precision using banker's rounding.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a Money rounded half-even at the currency precision.
func NewMoney(currency Currency, amount decimal.Decimal) Money {
	return Money{
		amount:   amount.RoundBank(currency.DecimalPlaces),
		currency: currency,
	}
}

// ZeroMoney creates a zero amount in the given currency.
func ZeroMoney(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency.
func (m Money) Currency() Currency {
	return m.currency
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return NewMoney(m.currency, m.amount.Add(other.amount))
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return NewMoney(m.currency, m.amount.Sub(other.amount))
}

// AddAmount returns m + amount.
func (m Money) AddAmount(amount decimal.Decimal) Money {
	return NewMoney(m.currency, m.amount.Add(amount))
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// SnapToMultiple rounds the amount to the currency's multiple-of
// constraint, if it has one.
func (m Money) SnapToMultiple() Money {
	if m.currency.InMultiplesOf <= 0 {
		return m
	}
	multiple := decimal.NewFromInt(m.currency.InMultiplesOf)
	snapped := m.amount.Div(multiple).Round(0).Mul(multiple)
	return Money{amount: snapped, currency: m.currency}
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// Equal reports whether the amounts are numerically equal.
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.amount.GreaterThanOrEqual(other.amount)
}

// String formats the amount at currency precision with the code.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixedBank(m.currency.DecimalPlaces), m.currency.Code)
}
