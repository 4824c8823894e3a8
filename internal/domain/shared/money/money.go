package money

import (
	"errors"
	"strings"

	"staybook/internal/pkg/apperror"
)

// Supported currency symbols. Lira is the marketplace base currency.
const (
	Lira   = "₺"
	Dollar = "$"
	Euro   = "€"
	Pound  = "£"
)

var (
	ErrInvalidCurrency  = apperror.Invalid("money.invalid_currency", "currency must be one of ₺, $, €, £")
	ErrNegativeAmount   = apperror.Invalid("money.negative_amount", "amount must not be negative")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
)

// Money keeps amounts in integer minor units (kuruş, cents) to avoid floating point issues.
type Money struct {
	Amount   int64
	Currency string
}

// NormalizeCurrency resolves a symbol or ISO code to a supported symbol; empty means Lira.
func NormalizeCurrency(currency string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case "", Lira, "TRY", "TL":
		return Lira, nil
	case Dollar, "USD":
		return Dollar, nil
	case Euro, "EUR":
		return Euro, nil
	case Pound, "GBP":
		return Pound, nil
	default:
		return "", ErrInvalidCurrency
	}
}

// New constructs a Money value validating minimal invariants.
func New(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, ErrNegativeAmount
	}
	symbol, err := NormalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: amount, Currency: symbol}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Multiply multiplies the amount by the provided factor.
func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount * times, Currency: m.Currency}
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}
