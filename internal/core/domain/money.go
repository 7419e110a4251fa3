package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrMalformedAmount is returned when an amount cannot be parsed as a decimal number.
	ErrMalformedAmount = errors.New("malformed amount")

	// ErrCurrencyMismatch is matched by every CurrencyMismatchError.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrDivisionByZero is returned when dividing by a zero scalar or a zero-amount Money.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrUndefinedPower is returned for 0 raised to a negative power and for a negative
	// amount raised to a fractional power.
	ErrUndefinedPower = errors.New("undefined power")
)

// powPrecision is the number of decimal places kept by fractional powers.
const powPrecision = 16

// CurrencyMismatchError reports a binary operation attempted between two currencies.
type CurrencyMismatchError struct {
	Left  string
	Right string
	Op    string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: %q %s %q", e.Left, e.Op, e.Right)
}

// Is makes errors.Is(err, ErrCurrencyMismatch) hold.
func (e *CurrencyMismatchError) Is(target error) bool {
	return target == ErrCurrencyMismatch
}

// ConvertOptions tunes a conversion.
type ConvertOptions struct {
	// Ceil rounds the converted amount up to the next integer.
	Ceil bool
	// Period selects the historical rate set; nil uses default rates.
	Period *Period
}

// AmountConverter converts a raw amount between currencies.
type AmountConverter interface {
	ConvertAmount(ctx context.Context, from, to string, amount decimal.Decimal, opts ConvertOptions) (decimal.Decimal, error)
}

// Money is an immutable amount bound to a currency code. The code may be empty.
// Operations between two Money values require both to carry the same currency.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney parses amount as an exact decimal.
func NewMoney(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrMalformedAmount, amount)
	}
	return Money{amount: d, currency: currency}, nil
}

// NewMoneyFromDecimal binds amount to currency.
func NewMoneyFromDecimal(amount decimal.Decimal, currency string) Money {
	return Money{amount: amount, currency: currency}
}

// MustMoney is NewMoney that panics on malformed input. Meant for fixtures.
func MustMoney(amount, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(fmt.Sprintf("domain.MustMoney(%q, %q): %v", amount, currency, err))
	}
	return m
}

// Amount returns the exact amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code.
func (m Money) Currency() string {
	return m.currency
}

// IsZero reports whether the amount is exactly zero. A zero Money is "empty".
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) String() string {
	if m.currency == "" {
		return m.amount.String()
	}
	return m.amount.String() + " " + m.currency
}

// Format renders the amount rounded to precision decimal places.
func (m Money) Format(precision int32) string {
	return m.amount.StringFixed(precision)
}

func (m Money) sameCurrency(other Money, op string) error {
	if m.currency != other.currency {
		return &CurrencyMismatchError{Left: m.currency, Right: other.currency, Op: op}
	}
	return nil
}

// Equal reports whether both values carry the same currency and amount.
// Differing currencies are never equal and never an error.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Cmp compares the amounts: -1, 0 or +1.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.sameCurrency(other, "<=>"); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

func (m Money) compare(other Money, op string, want func(int) bool) (bool, error) {
	if err := m.sameCurrency(other, op); err != nil {
		return false, err
	}
	return want(m.amount.Cmp(other.amount)), nil
}

// LessThan reports m < other.
func (m Money) LessThan(other Money) (bool, error) {
	return m.compare(other, "<", func(c int) bool { return c < 0 })
}

// LessThanOrEqual reports m <= other.
func (m Money) LessThanOrEqual(other Money) (bool, error) {
	return m.compare(other, "<=", func(c int) bool { return c <= 0 })
}

// GreaterThan reports m > other.
func (m Money) GreaterThan(other Money) (bool, error) {
	return m.compare(other, ">", func(c int) bool { return c > 0 })
}

// GreaterThanOrEqual reports m >= other.
func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	return m.compare(other, ">=", func(c int) bool { return c >= 0 })
}

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other, "+"); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub returns m - other.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other, "-"); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// DivMoney returns the dimensionless ratio m / other.
func (m Money) DivMoney(other Money) (decimal.Decimal, error) {
	if err := m.sameCurrency(other, "/"); err != nil {
		return decimal.Zero, err
	}
	if other.amount.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return m.amount.Div(other.amount), nil
}

// FloorDivMoney returns floor(m / other).
func (m Money) FloorDivMoney(other Money) (decimal.Decimal, error) {
	if err := m.sameCurrency(other, "//"); err != nil {
		return decimal.Zero, err
	}
	if other.amount.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return m.amount.Div(other.amount).Floor(), nil
}

// Mul scales the amount by factor.
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Div divides the amount by divisor.
func (m Money) Div(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, ErrDivisionByZero
	}
	return Money{amount: m.amount.Div(divisor), currency: m.currency}, nil
}

// FloorDiv divides the amount by divisor and floors the result.
func (m Money) FloorDiv(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, ErrDivisionByZero
	}
	return Money{amount: m.amount.Div(divisor).Floor(), currency: m.currency}, nil
}

// Mod returns the floored remainder of the amount divided by divisor: the result takes the
// sign of divisor, so FloorDiv(d)*d + Mod(d) equals the amount.
func (m Money) Mod(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, ErrDivisionByZero
	}
	rem := m.amount.Mod(divisor)
	if !rem.IsZero() && rem.Sign() != divisor.Sign() {
		rem = rem.Add(divisor)
	}
	return Money{amount: rem, currency: m.currency}, nil
}

// Pow raises the amount to exp.
func (m Money) Pow(exp decimal.Decimal) (Money, error) {
	amount, err := m.amount.PowWithPrecision(exp, powPrecision)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %s ^ %s: %v", ErrUndefinedPower, m.amount, exp, err)
	}
	return Money{amount: amount, currency: m.currency}, nil
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Abs returns |m|.
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs(), currency: m.currency}
}

// To converts m into target. It returns m itself when target is empty or already m's currency.
func (m Money) To(ctx context.Context, conv AmountConverter, target string, ceil bool) (Money, error) {
	if target == "" || target == m.currency {
		return m, nil
	}
	amount, err := conv.ConvertAmount(ctx, m.currency, target, m.amount, ConvertOptions{Ceil: ceil})
	if err != nil {
		return Money{}, fmt.Errorf("convert %s to %s: %w", m, target, err)
	}
	return Money{amount: amount, currency: target}, nil
}
