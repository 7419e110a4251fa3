package pgsql

import (
	portsrepo "github.com/SscSPs/metasettings/internal/core/ports/repositories"
)

// NewRepositoryProvider builds every repository on top of db (usually a *pgxpool.Pool).
func NewRepositoryProvider(db DBTX) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CurrencyRateRepo: NewCurrencyRateRepository(db),
	}
}
