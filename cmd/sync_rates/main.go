package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/metasettings/internal/adapters/database/pgsql"
	"github.com/SscSPs/metasettings/internal/adapters/openexchangerates"
	portssvc "github.com/SscSPs/metasettings/internal/core/ports/services"
	"github.com/SscSPs/metasettings/internal/core/services"
	"github.com/SscSPs/metasettings/internal/platform/config"
	"github.com/SscSPs/metasettings/internal/platform/logging"
	"github.com/SscSPs/metasettings/pkg/database"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const migrationsSource = "file://migrations"

// syncArgs are the command line inputs that pick which snapshots to sync.
type syncArgs struct {
	AppID     string `validate:"required"`
	DateStart string `validate:"omitempty,datetime=2006-01-02"`
	DateEnd   string `validate:"omitempty,datetime=2006-01-02"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	flags := pflag.NewFlagSet("sync_rates", pflag.ContinueOnError)
	flags.String("app-id", "", "openexchangerates.org app id")
	flags.String("date-start", "", "first day to sync (YYYY-MM-DD)")
	flags.String("date-end", "", "last day to sync (YYYY-MM-DD)")
	flags.String("database-url", "", "PostgreSQL connection URL")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	if err := flags.Parse(argv); err != nil {
		return 2
	}

	cfg, err := config.LoadConfig(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		return 1
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	args := syncArgs{AppID: cfg.OpenExchangeRates.AppID}
	args.DateStart, _ = flags.GetString("date-start")
	args.DateEnd, _ = flags.GetString("date-end")
	if err := validator.New().Struct(args); err != nil {
		logger.Error("Invalid arguments", slog.String("error", err.Error()))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		return 1
	}
	defer database.ClosePgxPool(dbPool)

	logger.Info("Running database migrations...")
	applied, err := database.RunMigrations(cfg.DatabaseURL, migrationsSource)
	if err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return 1
	}
	if applied {
		logger.Info("Database migrations applied successfully.")
	} else {
		logger.Info("No new migrations to apply.")
	}

	rate, err := limiter.NewRateFromFormatted(cfg.SyncRateLimit)
	if err != nil {
		logger.Error("Invalid SYNC_RATE_LIMIT", slog.String("error", err.Error()))
		return 1
	}
	lim := limiter.New(memory.NewStore(), rate)

	svc := services.NewServiceContainer(
		cfg,
		pgsql.NewRepositoryProvider(dbPool),
		openexchangerates.NewClient(cfg.OpenExchangeRates),
		lim,
		nil,
	)

	results, err := syncSnapshots(ctx, svc.Sync, args, time.Now().UTC())
	if err != nil {
		logger.Error("Invalid date range", slog.String("error", err.Error()))
		return 1
	}
	for _, r := range results {
		if r.Err != nil {
			// failures are already logged per snapshot; the run itself still succeeds
			logger.Warn("Snapshot not synced", slog.String("error", r.Err.Error()))
		}
	}
	return 0
}

// syncSnapshots syncs the latest rates when no date is given; otherwise every month between
// the two dates, a missing one defaulting to today.
func syncSnapshots(ctx context.Context, sync portssvc.RateSyncSvc, args syncArgs, today time.Time) ([]portssvc.SyncResult, error) {
	if args.DateStart == "" && args.DateEnd == "" {
		return []portssvc.SyncResult{sync.SyncRates(ctx, nil)}, nil
	}

	start, end := today, today
	var err error
	if args.DateStart != "" {
		if start, err = time.Parse(time.DateOnly, args.DateStart); err != nil {
			return nil, err
		}
	}
	if args.DateEnd != "" {
		if end, err = time.Parse(time.DateOnly, args.DateEnd); err != nil {
			return nil, err
		}
	}
	return sync.SyncRange(ctx, start, end), nil
}
