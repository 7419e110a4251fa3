package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/metasettings/internal/core/domain"
	"github.com/SscSPs/metasettings/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyRateMapping_Historical(t *testing.T) {
	syncedAt := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	d := domain.CurrencyRate{
		ID:           "rate_1",
		Currency:     "EUR",
		Rate:         decimal.RequireFromString("0.92"),
		Period:       &domain.Period{Year: 2024, Month: time.February},
		LastSyncedAt: syncedAt,
	}

	m := ToModelCurrencyRate(d)
	require.NotNil(t, m.Year)
	require.NotNil(t, m.Month)
	assert.Equal(t, int32(2024), *m.Year)
	assert.Equal(t, int32(2), *m.Month)

	back := ToDomainCurrencyRate(m)
	assert.Equal(t, d, back)
}

func TestCurrencyRateMapping_Default(t *testing.T) {
	m := ToModelCurrencyRate(domain.CurrencyRate{Currency: "USD", Rate: decimal.NewFromInt(1)})
	assert.Nil(t, m.Year)
	assert.Nil(t, m.Month)

	d := ToDomainCurrencyRate(m)
	assert.True(t, d.IsDefault())
}

func TestToPeriod_HalfSetIsDefault(t *testing.T) {
	year := int32(2020)
	assert.Nil(t, ToPeriod(&year, nil))

	rows := ToDomainCurrencyRateSlice([]models.CurrencyRate{{Currency: "GBP", Year: &year}})
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsDefault())
}
