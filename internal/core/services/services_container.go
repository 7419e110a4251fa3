package services

import (
	portsrepo "github.com/SscSPs/metasettings/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/metasettings/internal/core/ports/services"
	"github.com/SscSPs/metasettings/internal/platform/config"
	"github.com/ulule/limiter/v3"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// lim and locator may be nil.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, provider portssvc.RateProvider, lim *limiter.Limiter, locator portssvc.GeoLocator) *portssvc.ServiceContainer {
	catalog := cfg.Catalog()

	store := NewRateStoreService(repos.CurrencyRateRepo, catalog, cfg.RateCacheTTL)

	return &portssvc.ServiceContainer{
		Rates:      store,
		Conversion: NewConversionService(store),
		Sync:       NewRateSyncService(store, provider, lim),
		Preference: NewPreferenceService(catalog, locator, cfg.DefaultCurrency),
	}
}
