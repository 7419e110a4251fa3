package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/metasettings/internal/apperrors"
	"github.com/SscSPs/metasettings/internal/core/domain"
	portsrepo "github.com/SscSPs/metasettings/internal/core/ports/repositories"
	"github.com/SscSPs/metasettings/internal/models"
	"github.com/SscSPs/metasettings/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

// PgxCurrencyRateRepository implements portsrepo.CurrencyRateRepositoryFacade on PostgreSQL.
type PgxCurrencyRateRepository struct {
	BaseRepository
}

// NewCurrencyRateRepository creates a new repository for currency rate data.
func NewCurrencyRateRepository(db DBTX) *PgxCurrencyRateRepository {
	return &PgxCurrencyRateRepository{
		BaseRepository: BaseRepository{DB: db},
	}
}

// Ensure implementation matches interface
var _ portsrepo.CurrencyRateRepositoryFacade = (*PgxCurrencyRateRepository)(nil)

const currencyRateColumns = `currency_rate_id, currency, rate, year, month, last_synced_at`

// FindCurrencyRate retrieves the rate for currency in period; a nil period selects the default rate.
func (r *PgxCurrencyRateRepository) FindCurrencyRate(ctx context.Context, currency string, period *domain.Period) (*domain.CurrencyRate, error) {
	year, month := mapping.FromPeriod(period)

	query := `
		SELECT ` + currencyRateColumns + `
		FROM currency_rates
		WHERE currency = $1
		  AND year IS NOT DISTINCT FROM $2
		  AND month IS NOT DISTINCT FROM $3;
	`

	var modelRate models.CurrencyRate
	err := r.DB.QueryRow(ctx, query, currency, year, month).Scan(
		&modelRate.CurrencyRateID,
		&modelRate.Currency,
		&modelRate.Rate,
		&modelRate.Year,
		&modelRate.Month,
		&modelRate.LastSyncedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("currency rate %s (%s) not found", currency, periodLabel(period)))
		}
		return nil, apperrors.NewAppError(500, "failed to find currency rate", err)
	}

	domainRate := mapping.ToDomainCurrencyRate(modelRate)
	return &domainRate, nil
}

// ListCurrencyRates retrieves all rates.
func (r *PgxCurrencyRateRepository) ListCurrencyRates(ctx context.Context) ([]domain.CurrencyRate, error) {
	query := `
		SELECT ` + currencyRateColumns + `
		FROM currency_rates
		ORDER BY currency, year NULLS FIRST, month NULLS FIRST;
	`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query currency rates", err)
	}
	defer rows.Close()

	modelRates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CurrencyRate, error) {
		var rate models.CurrencyRate
		err := row.Scan(
			&rate.CurrencyRateID,
			&rate.Currency,
			&rate.Rate,
			&rate.Year,
			&rate.Month,
			&rate.LastSyncedAt,
		)
		return rate, err
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan currency rates", err)
	}

	return mapping.ToDomainCurrencyRateSlice(modelRates), nil
}

// CreateCurrencyRate inserts a new rate. A concurrent insert of the same key yields apperrors.ErrDuplicate.
func (r *PgxCurrencyRateRepository) CreateCurrencyRate(ctx context.Context, rate domain.CurrencyRate) error {
	modelRate := mapping.ToModelCurrencyRate(rate)

	_, err := r.DB.Exec(ctx, `
		INSERT INTO currency_rates (`+currencyRateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6);`,
		modelRate.CurrencyRateID,
		modelRate.Currency,
		modelRate.Rate,
		modelRate.Year,
		modelRate.Month,
		modelRate.LastSyncedAt,
	)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("failed to create currency rate %s (%s)", rate.Currency, periodLabel(rate.Period)))
	}
	return nil
}

// UpdateCurrencyRate updates rate and last_synced_at of the record identified by rate.ID.
func (r *PgxCurrencyRateRepository) UpdateCurrencyRate(ctx context.Context, rate domain.CurrencyRate) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE currency_rates
		SET rate = $1, last_synced_at = $2
		WHERE currency_rate_id = $3;`,
		rate.Rate, rate.LastSyncedAt, rate.ID,
	)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("failed to update currency rate %s", rate.ID))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("currency rate with ID " + rate.ID + " not found")
	}
	return nil
}

func periodLabel(p *domain.Period) string {
	if p == nil {
		return "default"
	}
	return p.String()
}
