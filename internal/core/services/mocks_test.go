package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/metasettings/internal/core/domain"
	portssvc "github.com/SscSPs/metasettings/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock CurrencyRateRepository ---
type MockCurrencyRateRepository struct {
	mock.Mock
}

func (m *MockCurrencyRateRepository) FindCurrencyRate(ctx context.Context, currency string, period *domain.Period) (*domain.CurrencyRate, error) {
	args := m.Called(ctx, currency, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CurrencyRate), args.Error(1)
}

func (m *MockCurrencyRateRepository) ListCurrencyRates(ctx context.Context) ([]domain.CurrencyRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CurrencyRate), args.Error(1)
}

func (m *MockCurrencyRateRepository) CreateCurrencyRate(ctx context.Context, rate domain.CurrencyRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockCurrencyRateRepository) UpdateCurrencyRate(ctx context.Context, rate domain.CurrencyRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

// --- Mock rate reader ---
type MockRateReader struct {
	mock.Mock
}

func (m *MockRateReader) GetRates(ctx context.Context, period *domain.Period) (domain.RateSet, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.RateSet), args.Error(1)
}

// --- Mock rate writer ---
type MockRateWriter struct {
	mock.Mock
}

func (m *MockRateWriter) UpdateOrCreate(ctx context.Context, currency string, rate decimal.Decimal, date *time.Time) (portssvc.UpsertResult, error) {
	args := m.Called(ctx, currency, rate, date)
	return args.Get(0).(portssvc.UpsertResult), args.Error(1)
}

func (m *MockRateWriter) Invalidate() {
	m.Called()
}

// --- Mock RateProvider ---
type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) FetchRates(ctx context.Context, date *time.Time) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

// --- Mock GeoLocator ---
type MockGeoLocator struct {
	mock.Mock
}

func (m *MockGeoLocator) CountryCode(ctx context.Context, ip string) (string, error) {
	args := m.Called(ctx, ip)
	return args.String(0), args.Error(1)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testCatalog() *domain.CurrencyCatalog {
	return domain.NewCurrencyCatalog(
		map[string]string{"EUR": "Euro", "USD": "US Dollar", "GBP": "Pound sterling"},
		map[string]string{"EUR": "€", "USD": "$", "GBP": "£"},
		map[string]string{"FR": "EUR", "DE": "EUR", "US": "USD", "CN": "USD", "GB": "GBP", "JP": "JPY"},
	)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func periodPtr(year int, month time.Month) *domain.Period {
	return &domain.Period{Year: year, Month: month}
}
