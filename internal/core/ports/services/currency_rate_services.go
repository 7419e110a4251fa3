package services

import (
	"context"
	"time"

	"github.com/SscSPs/metasettings/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UpsertOutcome reports what UpdateOrCreate did with a rate.
type UpsertOutcome int

const (
	// OutcomeNotApplicable means the currency is not in the catalog; nothing was written.
	OutcomeNotApplicable UpsertOutcome = iota
	// OutcomeUnchanged means a record exists with the same 2-place value.
	OutcomeUnchanged
	// OutcomeUpdated means an existing record got a new value.
	OutcomeUpdated
	// OutcomeCreated means a new record was inserted.
	OutcomeCreated
)

func (o UpsertOutcome) String() string {
	switch o {
	case OutcomeNotApplicable:
		return "not_applicable"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeUpdated:
		return "updated"
	case OutcomeCreated:
		return "created"
	default:
		return "unknown"
	}
}

// UpsertResult is returned by UpdateOrCreate. Rate is nil when the outcome is OutcomeNotApplicable.
type UpsertResult struct {
	Outcome UpsertOutcome
	Rate    *domain.CurrencyRate
}

// RateReaderSvc resolves rate sets.
type RateReaderSvc interface {
	// GetRates returns the historical set for period when one exists, otherwise the default set.
	GetRates(ctx context.Context, period *domain.Period) (domain.RateSet, error)
}

// RateWriterSvc writes rates through the store.
type RateWriterSvc interface {
	// UpdateOrCreate upserts the rate of currency; a nil date targets the default rate.
	UpdateOrCreate(ctx context.Context, currency string, rate decimal.Decimal, date *time.Time) (UpsertResult, error)

	// Invalidate drops the cached rate index.
	Invalidate()
}

// RateStoreSvcFacade combines all rate store service interfaces
type RateStoreSvcFacade interface {
	RateReaderSvc
	RateWriterSvc
}

// ConversionSvc converts amounts and money values between currencies.
type ConversionSvc interface {
	domain.AmountConverter

	// Convert converts m into target, see domain.Money.To.
	Convert(ctx context.Context, m domain.Money, target string, ceil bool) (domain.Money, error)
}

// SyncResult summarizes one provider snapshot applied to the store.
type SyncResult struct {
	// Date is the requested snapshot date; nil means latest.
	Date      *time.Time
	Fetched   int
	Created   int
	Updated   int
	Unchanged int
	Skipped   int
	Failed    int
	// Err is set when the snapshot could not be fetched.
	Err error
}

// RateSyncSvc pulls provider rates into the store.
type RateSyncSvc interface {
	// SyncRates applies one snapshot (latest when date is nil). Failures are reported in the result.
	SyncRates(ctx context.Context, date *time.Time) SyncResult

	// SyncRange applies one snapshot per month from start's month to end's month inclusive.
	SyncRange(ctx context.Context, start, end time.Time) []SyncResult
}

// RateProvider fetches rates relative to a common base currency.
type RateProvider interface {
	// FetchRates returns the latest rates, or the snapshot for date when it is non-nil.
	FetchRates(ctx context.Context, date *time.Time) (map[string]decimal.Decimal, error)
}
