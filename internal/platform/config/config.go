package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/SscSPs/metasettings/internal/core/domain"
)

// ProviderConfig configures the openexchangerates.org client.
type ProviderConfig struct {
	AppID   string        `mapstructure:"OPENEXCHANGERATES_APP_ID"`
	BaseURL string        `mapstructure:"OPENEXCHANGERATES_URL" validate:"required,url"`
	Timeout time.Duration `mapstructure:"OPENEXCHANGERATES_TIMEOUT" validate:"gt=0s"`
}

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	EnableDBCheck bool
	LogLevel      string `validate:"oneof=debug info warn warning error"`

	OpenExchangeRates ProviderConfig

	// RateCacheTTL bounds how long a built rate index is served; 0 keeps it until invalidated.
	RateCacheTTL time.Duration `validate:"gte=0s"`
	// SyncRateLimit is a ulule/limiter formatted rate ("1-S", "60-M", ...) for provider calls.
	SyncRateLimit string `validate:"required"`

	DefaultCurrency     string            `validate:"required,len=3,uppercase"`
	SupportedCurrencies map[string]string `validate:"required,min=1,dive,keys,len=3,uppercase,endkeys,required"`
	CurrencySymbols     map[string]string `validate:"dive,keys,len=3,uppercase,endkeys,required"`
	CurrencyByCountries map[string]string `validate:"dive,keys,len=2,uppercase,endkeys,len=3,uppercase"`
}

// flagKeys binds CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"app-id":       "OPENEXCHANGERATES_APP_ID",
	"database-url": "PGSQL_URL",
	"log-level":    "LOG_LEVEL",
}

const (
	defaultSupportedCurrencies = "EUR:Euro,USD:US Dollar,GBP:Pound sterling,JPY:Japanese yen,BRL:Brazilian real,CHF:Swiss franc,CAD:Canadian dollar,AUD:Australian dollar"
	defaultCurrencySymbols     = "EUR:€,USD:$,GBP:£,JPY:¥,BRL:R$,CHF:CHF,CAD:C$,AUD:A$"
	defaultCurrencyByCountries = "FR:EUR,DE:EUR,ES:EUR,IT:EUR,BE:EUR,NL:EUR,PT:EUR,IE:EUR,AT:EUR,FI:EUR,US:USD,CN:USD,GB:GBP,JP:JPY,BR:BRL,CH:CHF,CA:CAD,AU:AUD"
)

// LoadConfig loads configuration from the environment, an optional .env file, an optional
// config file (METASETTINGS_CONFIG) and, when flags is non-nil, command line flags.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OPENEXCHANGERATES_APP_ID", "")
	v.SetDefault("OPENEXCHANGERATES_URL", "https://openexchangerates.org/api")
	v.SetDefault("OPENEXCHANGERATES_TIMEOUT", "10s")
	v.SetDefault("RATE_CACHE_TTL", "1h")
	v.SetDefault("SYNC_RATE_LIMIT", "1-S")
	v.SetDefault("DEFAULT_CURRENCY", "EUR")
	v.SetDefault("SUPPORTED_CURRENCIES", defaultSupportedCurrencies)
	v.SetDefault("CURRENCY_SYMBOLS", defaultCurrencySymbols)
	v.SetDefault("CURRENCY_BY_COUNTRIES", defaultCurrencyByCountries)
	v.AutomaticEnv()

	if path := v.GetString("METASETTINGS_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		DatabaseURL:   v.GetString("PGSQL_URL"),
		EnableDBCheck: v.GetBool("ENABLE_DB_CHECK"),
		LogLevel:      strings.ToLower(v.GetString("LOG_LEVEL")),
		OpenExchangeRates: ProviderConfig{
			AppID:   v.GetString("OPENEXCHANGERATES_APP_ID"),
			BaseURL: strings.TrimRight(v.GetString("OPENEXCHANGERATES_URL"), "/"),
			Timeout: v.GetDuration("OPENEXCHANGERATES_TIMEOUT"),
		},
		RateCacheTTL:    v.GetDuration("RATE_CACHE_TTL"),
		SyncRateLimit:   v.GetString("SYNC_RATE_LIMIT"),
		DefaultCurrency: domain.NormalizeCode(v.GetString("DEFAULT_CURRENCY")),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	var err error
	if cfg.SupportedCurrencies, err = pairsSetting(v, "SUPPORTED_CURRENCIES"); err != nil {
		return nil, err
	}
	if cfg.CurrencySymbols, err = pairsSetting(v, "CURRENCY_SYMBOLS"); err != nil {
		return nil, err
	}
	if cfg.CurrencyByCountries, err = pairsSetting(v, "CURRENCY_BY_COUNTRIES"); err != nil {
		return nil, err
	}
	// country to currency values are codes too
	for country, code := range cfg.CurrencyByCountries {
		cfg.CurrencyByCountries[country] = domain.NormalizeCode(code)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, ok := c.SupportedCurrencies[c.DefaultCurrency]; !ok {
		return fmt.Errorf("invalid configuration: default currency %s is not in SUPPORTED_CURRENCIES", c.DefaultCurrency)
	}
	return nil
}

// Catalog builds the currency whitelist described by the configuration.
func (c *Config) Catalog() *domain.CurrencyCatalog {
	return domain.NewCurrencyCatalog(c.SupportedCurrencies, c.CurrencySymbols, c.CurrencyByCountries)
}

// pairsSetting reads key either as a map (from a config file) or as a "K:V,K:V" string
// (from the environment). Keys are upper-cased.
func pairsSetting(v *viper.Viper, key string) (map[string]string, error) {
	if raw, ok := v.Get(key).(map[string]any); ok {
		out := make(map[string]string, len(raw))
		for k, val := range raw {
			out[strings.ToUpper(strings.TrimSpace(k))] = fmt.Sprint(val)
		}
		return out, nil
	}

	pairs, err := ParsePairs(v.GetString(key))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	out := make(map[string]string, len(pairs))
	for k, val := range pairs {
		out[strings.ToUpper(k)] = val
	}
	return out, nil
}

// ParsePairs parses "K:V,K:V" into a map. Empty entries are ignored.
func ParsePairs(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		k, val, ok := strings.Cut(entry, ":")
		k, val = strings.TrimSpace(k), strings.TrimSpace(val)
		if !ok || k == "" {
			return nil, fmt.Errorf("malformed entry %q, expected KEY:VALUE", entry)
		}
		out[k] = val
	}
	return out, nil
}
