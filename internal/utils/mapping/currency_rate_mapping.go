package mapping

import (
	"time"

	"github.com/SscSPs/metasettings/internal/core/domain"
	"github.com/SscSPs/metasettings/internal/models"
)

// ToModelCurrencyRate converts a domain CurrencyRate to a model CurrencyRate
func ToModelCurrencyRate(d domain.CurrencyRate) models.CurrencyRate {
	year, month := FromPeriod(d.Period)
	return models.CurrencyRate{
		CurrencyRateID: d.ID,
		Currency:       d.Currency,
		Rate:           d.Rate,
		Year:           year,
		Month:          month,
		LastSyncedAt:   d.LastSyncedAt,
	}
}

// ToDomainCurrencyRate converts a model CurrencyRate to a domain CurrencyRate.
// A row with only one of year/month set is treated as a default rate.
func ToDomainCurrencyRate(m models.CurrencyRate) domain.CurrencyRate {
	return domain.CurrencyRate{
		ID:           m.CurrencyRateID,
		Currency:     m.Currency,
		Rate:         m.Rate,
		Period:       ToPeriod(m.Year, m.Month),
		LastSyncedAt: m.LastSyncedAt,
	}
}

// ToDomainCurrencyRateSlice converts a slice of model rates to domain rates
func ToDomainCurrencyRateSlice(ms []models.CurrencyRate) []domain.CurrencyRate {
	ds := make([]domain.CurrencyRate, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCurrencyRate(m)
	}
	return ds
}

// FromPeriod splits a period into nullable year/month columns.
func FromPeriod(p *domain.Period) (*int32, *int32) {
	if p == nil {
		return nil, nil
	}
	year := int32(p.Year)
	month := int32(p.Month)
	return &year, &month
}

// ToPeriod joins nullable year/month columns into a period.
func ToPeriod(year, month *int32) *domain.Period {
	if year == nil || month == nil {
		return nil
	}
	return &domain.Period{Year: int(*year), Month: time.Month(*month)}
}
