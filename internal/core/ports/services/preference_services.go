package services

import "context"

// GeoLocator resolves an IP address to an ISO 3166 alpha-2 country code.
type GeoLocator interface {
	CountryCode(ctx context.Context, ip string) (string, error)
}

// PreferenceObserver is notified when a currency preference changes.
type PreferenceObserver interface {
	CurrencyChanged(ctx context.Context, code string) error
}

// PreferenceSvc resolves and records a user's preferred currency.
type PreferenceSvc interface {
	// CurrencyFromIP returns the currency of the country ip belongs to, or "" when unknown.
	CurrencyFromIP(ctx context.Context, ip string) string

	// ResolveCurrency picks preferred when supported, then the IP currency, then the default.
	ResolveCurrency(ctx context.Context, preferred, ip string) string

	// SetCurrency validates code and notifies observers.
	SetCurrency(ctx context.Context, code string) error
}
