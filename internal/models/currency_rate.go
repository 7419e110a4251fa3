package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyRate is the row shape of the currency_rates table.
// Year and Month are both NULL for default rates and both set for historical rates.
type CurrencyRate struct {
	CurrencyRateID string          `json:"currencyRateID"` // Primary Key (UUID)
	Currency       string          `json:"currency"`       // 3-letter code
	Rate           decimal.Decimal `json:"rate"`           // NUMERIC(7,2)
	Year           *int32          `json:"year"`
	Month          *int32          `json:"month"`
	LastSyncedAt   time.Time       `json:"lastSyncedAt"`
}
