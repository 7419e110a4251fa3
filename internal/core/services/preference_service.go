package services

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/SscSPs/metasettings/internal/apperrors"
	"github.com/SscSPs/metasettings/internal/core/domain"
	portssvc "github.com/SscSPs/metasettings/internal/core/ports/services"
)

// NoopLocator never knows where an IP is.
type NoopLocator struct{}

// CountryCode always returns "".
func (NoopLocator) CountryCode(context.Context, string) (string, error) {
	return "", nil
}

// ClientIP returns the first X-Forwarded-For entry that is not "unknown",
// falling back to the host part of remoteAddr.
func ClientIP(forwardedFor, remoteAddr string) string {
	for _, entry := range strings.Split(forwardedFor, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" || strings.Contains(strings.ToLower(entry), "unknown") {
			continue
		}
		return entry
	}
	remoteAddr = strings.TrimSpace(remoteAddr)
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

// PreferenceService resolves which currency a visitor should see.
type PreferenceService struct {
	BaseService
	catalog         *domain.CurrencyCatalog
	locator         portssvc.GeoLocator
	defaultCurrency string

	mu        sync.RWMutex
	observers []portssvc.PreferenceObserver
}

// NewPreferenceService creates a new PreferenceService. A nil locator disables IP lookups.
func NewPreferenceService(catalog *domain.CurrencyCatalog, locator portssvc.GeoLocator, defaultCurrency string) *PreferenceService {
	if locator == nil {
		locator = NoopLocator{}
	}
	return &PreferenceService{
		catalog:         catalog,
		locator:         locator,
		defaultCurrency: domain.NormalizeCode(defaultCurrency),
	}
}

// Ensure implementation matches interface
var _ portssvc.PreferenceSvc = (*PreferenceService)(nil)

// Subscribe registers an observer; observers are notified in registration order.
func (s *PreferenceService) Subscribe(o portssvc.PreferenceObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *PreferenceService) CurrencyFromIP(ctx context.Context, ip string) string {
	if ip == "" {
		return ""
	}
	country, err := s.locator.CountryCode(ctx, ip)
	if err != nil {
		s.LogDebug(ctx, "IP lookup failed", slog.String("ip", ip), slog.String("error", err.Error()))
		return ""
	}
	code, ok := s.catalog.CurrencyForCountry(country)
	if !ok {
		return ""
	}
	return code
}

func (s *PreferenceService) ResolveCurrency(ctx context.Context, preferred, ip string) string {
	if code := domain.NormalizeCode(preferred); s.catalog.Contains(code) {
		return code
	}
	if code := s.CurrencyFromIP(ctx, ip); code != "" {
		return code
	}
	return s.defaultCurrency
}

func (s *PreferenceService) SetCurrency(ctx context.Context, code string) error {
	code = domain.NormalizeCode(code)
	if !s.catalog.Contains(code) {
		return apperrors.NewValidationError(fmt.Sprintf("currency %q is not supported", code))
	}

	s.mu.RLock()
	observers := append([]portssvc.PreferenceObserver(nil), s.observers...)
	s.mu.RUnlock()

	for _, o := range observers {
		if err := o.CurrencyChanged(ctx, code); err != nil {
			s.LogError(ctx, err, "Currency change observer failed", slog.String("currency", code))
			return fmt.Errorf("failed to notify currency change in service: %w", err)
		}
	}
	s.LogInfo(ctx, "Currency preference changed", slog.String("currency", code))
	return nil
}
