package services

// ServiceContainer holds instances of all the application services.
type ServiceContainer struct {
	Rates      RateStoreSvcFacade
	Conversion ConversionSvc
	Sync       RateSyncSvc
	Preference PreferenceSvc
}
