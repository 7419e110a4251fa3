package repositories

import (
	"context"

	"github.com/SscSPs/metasettings/internal/core/domain"
)

// CurrencyRateReader defines read operations for currency rate data
type CurrencyRateReader interface {
	// FindCurrencyRate retrieves the rate for currency in period (nil period = default rate).
	// Returns apperrors.ErrNotFound when no such record exists.
	FindCurrencyRate(ctx context.Context, currency string, period *domain.Period) (*domain.CurrencyRate, error)

	// ListCurrencyRates retrieves every stored rate, default and historical.
	ListCurrencyRates(ctx context.Context) ([]domain.CurrencyRate, error)
}

// CurrencyRateWriter defines write operations for currency rate data
type CurrencyRateWriter interface {
	// CreateCurrencyRate persists a new rate.
	// Returns apperrors.ErrDuplicate when a record with the same key already exists.
	CreateCurrencyRate(ctx context.Context, rate domain.CurrencyRate) error

	// UpdateCurrencyRate overwrites the rate value and sync timestamp of an existing record.
	UpdateCurrencyRate(ctx context.Context, rate domain.CurrencyRate) error
}

// CurrencyRateRepositoryFacade combines all currency rate repository interfaces
type CurrencyRateRepositoryFacade interface {
	CurrencyRateReader
	CurrencyRateWriter
}
