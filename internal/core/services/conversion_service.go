package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/metasettings/internal/apperrors"
	"github.com/SscSPs/metasettings/internal/core/domain"
	portssvc "github.com/SscSPs/metasettings/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// ConversionService converts amounts through the rates of a rate store.
type ConversionService struct {
	BaseService
	rates portssvc.RateReaderSvc
}

// NewConversionService creates a new ConversionService.
func NewConversionService(rates portssvc.RateReaderSvc) *ConversionService {
	return &ConversionService{rates: rates}
}

// Ensure implementation matches interface
var _ portssvc.ConversionSvc = (*ConversionService)(nil)

// ConvertAmount converts amount from one currency to another as amount / rate(from) * rate(to).
// Converting to the same currency returns amount without touching the store.
func (s *ConversionService) ConvertAmount(ctx context.Context, from, to string, amount decimal.Decimal, opts domain.ConvertOptions) (decimal.Decimal, error) {
	from, to = domain.NormalizeCode(from), domain.NormalizeCode(to)
	if from == to {
		return amount, nil
	}

	rates, err := s.rates.GetRates(ctx, opts.Period)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get rates in service: %w", err)
	}

	fromRate, err := usableRate(rates, from, opts.Period)
	if err != nil {
		s.LogDebug(ctx, "Conversion rejected", slog.String("from", from), slog.String("to", to), slog.String("reason", err.Error()))
		return decimal.Zero, err
	}
	toRate, err := usableRate(rates, to, opts.Period)
	if err != nil {
		s.LogDebug(ctx, "Conversion rejected", slog.String("from", from), slog.String("to", to), slog.String("reason", err.Error()))
		return decimal.Zero, err
	}

	result := amount.Div(fromRate).Mul(toRate)
	if opts.Ceil {
		result = result.Ceil()
	}
	return result, nil
}

// Convert converts m into target.
func (s *ConversionService) Convert(ctx context.Context, m domain.Money, target string, ceil bool) (domain.Money, error) {
	return m.To(ctx, s, domain.NormalizeCode(target), ceil)
}

func usableRate(rates domain.RateSet, code string, period *domain.Period) (decimal.Decimal, error) {
	rate, ok := rates.Rate(code)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rate for %s (%s)", apperrors.ErrRateUnavailable, code, periodName(period))
	}
	if rate.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: rate for %s is zero (%s)", apperrors.ErrRateUnavailable, code, periodName(period))
	}
	return rate, nil
}

func periodName(p *domain.Period) string {
	if p == nil {
		return "default"
	}
	return p.String()
}
