package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/SscSPs/metasettings/internal/apperrors"
	"github.com/SscSPs/metasettings/internal/core/domain"
	portsrepo "github.com/SscSPs/metasettings/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/metasettings/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// indexBuildTimeout bounds a shared index build.
const indexBuildTimeout = 30 * time.Second

// rateIndex is an immutable snapshot of every stored rate.
type rateIndex struct {
	historical map[domain.Period]domain.RateSet
	defaults   domain.RateSet
	builtAt    time.Time
	generation uint64
}

// RateStoreService owns currency rates: lookups go through a cached index,
// writes go to the repository and invalidate the index.
type RateStoreService struct {
	BaseService
	repo    portsrepo.CurrencyRateRepositoryFacade
	catalog *domain.CurrencyCatalog
	ttl     time.Duration
	now     func() time.Time
	newID   func() string

	index      atomic.Pointer[rateIndex]
	generation atomic.Uint64
	builds     singleflight.Group
}

// RateStoreOption customizes a RateStoreService.
type RateStoreOption func(*RateStoreService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) RateStoreOption {
	return func(s *RateStoreService) { s.now = now }
}

// WithIDGenerator replaces uuid.NewString for new records.
func WithIDGenerator(newID func() string) RateStoreOption {
	return func(s *RateStoreService) { s.newID = newID }
}

// NewRateStoreService creates a new RateStoreService. A ttl of 0 keeps the index until invalidated.
func NewRateStoreService(repo portsrepo.CurrencyRateRepositoryFacade, catalog *domain.CurrencyCatalog, ttl time.Duration, opts ...RateStoreOption) *RateStoreService {
	s := &RateStoreService{
		repo:    repo,
		catalog: catalog,
		ttl:     ttl,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure implementation matches interface
var _ portssvc.RateStoreSvcFacade = (*RateStoreService)(nil)

// GetRates returns a copy of the historical set for period, or of the default set
// when period is nil or has no historical rates.
func (s *RateStoreService) GetRates(ctx context.Context, period *domain.Period) (domain.RateSet, error) {
	idx, err := s.loadIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rates in service: %w", err)
	}
	if period != nil {
		if set, ok := idx.historical[*period]; ok {
			return maps.Clone(set), nil
		}
	}
	return maps.Clone(idx.defaults), nil
}

// Invalidate drops the cached index; the next read rebuilds it.
func (s *RateStoreService) Invalidate() {
	s.generation.Add(1)
	s.index.Store(nil)
}

// UpdateOrCreate stores rate for currency, under the month of date when date is non-nil.
// Values are compared and stored at two decimal places.
func (s *RateStoreService) UpdateOrCreate(ctx context.Context, currency string, rate decimal.Decimal, date *time.Time) (portssvc.UpsertResult, error) {
	code := domain.NormalizeCode(currency)
	if !s.catalog.Contains(code) {
		s.LogDebug(ctx, "Currency not supported, rate ignored", slog.String("currency", code))
		return portssvc.UpsertResult{Outcome: portssvc.OutcomeNotApplicable}, nil
	}

	var period *domain.Period
	if date != nil {
		p := domain.PeriodOf(*date)
		period = &p
	}

	existing, err := s.repo.FindCurrencyRate(ctx, code, period)
	if err == nil {
		return s.update(ctx, *existing, rate)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up currency rate", slog.String("currency", code))
		return portssvc.UpsertResult{}, fmt.Errorf("failed to find currency rate in service: %w", err)
	}

	created := domain.CurrencyRate{
		ID:           s.newID(),
		Currency:     code,
		Rate:         rate.Round(domain.RatePrecision),
		Period:       period,
		LastSyncedAt: s.now().UTC(),
	}
	err = s.repo.CreateCurrencyRate(ctx, created)
	if errors.Is(err, apperrors.ErrDuplicate) {
		// lost a creation race; the other writer's row is now the one to update
		existing, ferr := s.repo.FindCurrencyRate(ctx, code, period)
		if ferr != nil {
			return portssvc.UpsertResult{}, fmt.Errorf("failed to re-read currency rate in service: %w", ferr)
		}
		return s.update(ctx, *existing, rate)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to create currency rate", slog.String("currency", code))
		return portssvc.UpsertResult{}, fmt.Errorf("failed to create currency rate in service: %w", err)
	}

	s.Invalidate()
	s.LogDebug(ctx, "Currency rate created", slog.String("currency", code), slog.String("rate", created.Rate.String()))
	return portssvc.UpsertResult{Outcome: portssvc.OutcomeCreated, Rate: &created}, nil
}

func (s *RateStoreService) update(ctx context.Context, existing domain.CurrencyRate, rate decimal.Decimal) (portssvc.UpsertResult, error) {
	if existing.Rate.StringFixed(domain.RatePrecision) == rate.StringFixed(domain.RatePrecision) {
		return portssvc.UpsertResult{Outcome: portssvc.OutcomeUnchanged, Rate: &existing}, nil
	}

	existing.Rate = rate.Round(domain.RatePrecision)
	existing.LastSyncedAt = s.now().UTC()
	if err := s.repo.UpdateCurrencyRate(ctx, existing); err != nil {
		s.LogError(ctx, err, "Failed to update currency rate", slog.String("currency_rate_id", existing.ID))
		return portssvc.UpsertResult{}, fmt.Errorf("failed to update currency rate in service: %w", err)
	}

	s.Invalidate()
	s.LogDebug(ctx, "Currency rate updated", slog.String("currency", existing.Currency), slog.String("rate", existing.Rate.String()))
	return portssvc.UpsertResult{Outcome: portssvc.OutcomeUpdated, Rate: &existing}, nil
}

func (s *RateStoreService) loadIndex(ctx context.Context) (*rateIndex, error) {
	gen := s.generation.Load()
	if idx := s.index.Load(); idx != nil && s.fresh(idx, gen) {
		return idx, nil
	}

	// the build is shared, so it must outlive any single caller's cancellation
	builds := s.builds.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexBuildTimeout)
		defer cancel()
		return s.buildIndex(buildCtx, gen)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-builds:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*rateIndex), nil
	}
}

func (s *RateStoreService) fresh(idx *rateIndex, gen uint64) bool {
	if idx.generation != gen {
		return false
	}
	return s.ttl <= 0 || s.now().Sub(idx.builtAt) < s.ttl
}

func (s *RateStoreService) buildIndex(ctx context.Context, gen uint64) (*rateIndex, error) {
	rates, err := s.repo.ListCurrencyRates(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list currency rates")
		return nil, err
	}

	idx := &rateIndex{
		historical: make(map[domain.Period]domain.RateSet),
		defaults:   make(domain.RateSet),
		builtAt:    s.now(),
		generation: gen,
	}
	for _, r := range rates {
		if r.Period == nil {
			idx.defaults[r.Currency] = r
			continue
		}
		set, ok := idx.historical[*r.Period]
		if !ok {
			set = make(domain.RateSet)
			idx.historical[*r.Period] = set
		}
		set[r.Currency] = r
	}

	// a write that landed during the build leaves this index stale; readers will rebuild
	if s.generation.Load() == gen {
		s.index.Store(idx)
	}
	s.LogDebug(ctx, "Rate index built",
		slog.Int("defaults", len(idx.defaults)),
		slog.Int("periods", len(idx.historical)))
	return idx, nil
}
