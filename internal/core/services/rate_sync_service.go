package services

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/SscSPs/metasettings/internal/core/domain"
	portssvc "github.com/SscSPs/metasettings/internal/core/ports/services"
	"github.com/SscSPs/metasettings/internal/platform/logging"
	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"
)

const providerLimiterKey = "openexchangerates"

// minLimiterWait keeps a limiter whose reset already passed from spinning.
const minLimiterWait = 10 * time.Millisecond

// RateSyncService applies provider snapshots to the rate store.
type RateSyncService struct {
	BaseService
	store    portssvc.RateWriterSvc
	provider portssvc.RateProvider
	limiter  *limiter.Limiter
}

// NewRateSyncService creates a new RateSyncService. lim may be nil to disable throttling.
func NewRateSyncService(store portssvc.RateWriterSvc, provider portssvc.RateProvider, lim *limiter.Limiter) *RateSyncService {
	return &RateSyncService{
		store:    store,
		provider: provider,
		limiter:  lim,
	}
}

// Ensure implementation matches interface
var _ portssvc.RateSyncSvc = (*RateSyncService)(nil)

// SyncRates fetches the latest snapshot (or the one for date) and upserts every rate.
// Errors never escape: they are logged and reported through the result.
func (s *RateSyncService) SyncRates(ctx context.Context, date *time.Time) portssvc.SyncResult {
	logger := s.GetLogger(ctx).With(
		slog.String("run_id", uuid.NewString()),
		slog.String("snapshot", snapshotName(date)),
	)
	ctx = logging.WithLogger(ctx, logger)

	result := portssvc.SyncResult{Date: date}

	if err := s.waitForProvider(ctx); err != nil {
		result.Err = fmt.Errorf("waiting for provider: %w", err)
		s.LogError(ctx, result.Err, "Rate sync aborted")
		return result
	}

	rates, err := s.provider.FetchRates(ctx, date)
	if err != nil {
		result.Err = fmt.Errorf("fetching rates: %w", err)
		s.LogError(ctx, result.Err, "Rate sync failed")
		return result
	}
	result.Fetched = len(rates)

	for _, code := range slices.Sorted(maps.Keys(rates)) {
		if err := ctx.Err(); err != nil {
			result.Err = err
			s.LogWarn(ctx, "Rate sync interrupted", slog.String("error", err.Error()), slog.String("next_currency", code))
			break
		}

		res, err := s.store.UpdateOrCreate(ctx, code, rates[code], date)
		if err != nil {
			result.Failed++
			s.LogError(ctx, err, "Failed to store rate", slog.String("currency", code))
			continue
		}
		switch res.Outcome {
		case portssvc.OutcomeCreated:
			result.Created++
		case portssvc.OutcomeUpdated:
			result.Updated++
		case portssvc.OutcomeUnchanged:
			result.Unchanged++
		default:
			result.Skipped++
		}
	}

	s.LogInfo(ctx, "Rate sync finished",
		slog.Int("fetched", result.Fetched),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("unchanged", result.Unchanged),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed))
	return result
}

// SyncRange syncs the first day of every month from start to end, oldest first.
// It only stops early when ctx is cancelled.
func (s *RateSyncService) SyncRange(ctx context.Context, start, end time.Time) []portssvc.SyncResult {
	months := MonthsBetween(start, end)
	results := make([]portssvc.SyncResult, 0, len(months))
	for _, p := range months {
		if ctx.Err() != nil {
			s.LogInfo(ctx, "Rate range sync cancelled", slog.String("next_period", p.String()))
			break
		}
		day := p.FirstDay()
		results = append(results, s.SyncRates(ctx, &day))
	}
	return results
}

// MonthsBetween lists the months from start's month to end's month inclusive.
// It is empty when end precedes start.
func MonthsBetween(start, end time.Time) []domain.Period {
	var months []domain.Period
	last := domain.PeriodOf(end)
	for p := domain.PeriodOf(start); !last.Before(p); p = p.Next() {
		months = append(months, p)
	}
	return months
}

func (s *RateSyncService) waitForProvider(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	for {
		lctx, err := s.limiter.Get(ctx, providerLimiterKey)
		if err != nil {
			return err
		}
		if !lctx.Reached {
			return nil
		}

		wait := max(time.Until(time.Unix(lctx.Reset, 0)), minLimiterWait)
		s.LogDebug(ctx, "Provider rate limit reached, waiting", slog.Duration("wait", wait))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func snapshotName(date *time.Time) string {
	if date == nil {
		return "latest"
	}
	return date.Format(time.DateOnly)
}
