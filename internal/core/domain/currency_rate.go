package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RatePrecision is the number of decimal places rates are persisted with.
const RatePrecision = 2

// ErrInvalidPeriod is returned when a year/month pair cannot form a Period.
var ErrInvalidPeriod = errors.New("invalid rate period")

// Period identifies the calendar month a historical rate applies to.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod validates year and month and returns the Period.
func NewPeriod(year, month int) (Period, error) {
	if year <= 0 {
		return Period{}, fmt.Errorf("%w: year %d must be positive", ErrInvalidPeriod, year)
	}
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month %d out of range", ErrInvalidPeriod, month)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// PeriodOf returns the Period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// FirstDay returns midnight UTC on the first day of the period.
func (p Period) FirstDay() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following month.
func (p Period) Next() Period {
	return PeriodOf(p.FirstDay().AddDate(0, 1, 0))
}

// Before reports whether p is strictly earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// CurrencyRate is the number of units of Currency per one unit of the base currency.
// A nil Period marks the default (current) rate, otherwise the rate is historical.
type CurrencyRate struct {
	ID           string          `json:"id"`
	Currency     string          `json:"currency"`
	Rate         decimal.Decimal `json:"rate"`
	Period       *Period         `json:"period,omitempty"`
	LastSyncedAt time.Time       `json:"lastSyncedAt"`
}

// IsDefault reports whether the rate is a default (undated) rate.
func (r CurrencyRate) IsDefault() bool {
	return r.Period == nil
}

// RateSet maps currency codes to their rate record.
type RateSet map[string]CurrencyRate

// Rate returns the rate value for code.
func (s RateSet) Rate(code string) (decimal.Decimal, bool) {
	r, ok := s[code]
	if !ok {
		return decimal.Zero, false
	}
	return r.Rate, true
}
