package config

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env          string
	Port         string
	DatabaseURL  string
	RedisURL     string
	AdminKeyHash string // bcrypt hash of the admin key required on the trigger endpoint

	// Engine defaults, applied when a node has no package context.
	BinaryPctDefault     decimal.Decimal // bonus percentage on matched volume (0-100)
	PowerCapacityDefault decimal.Decimal // max matched volume payable per node per run
	RenewablePct         decimal.Decimal // ROI share retained as renewable principal (0-100)

	RunWorkers    int // concurrent workers for per-investment ROI accrual
	EntityRetries int // bounded retries for transient per-entity store failures
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	return &Config{
		Env:                  env,
		Port:                 port,
		DatabaseURL:          dbURL,
		RedisURL:             viper.GetString("REDIS_URL"),
		AdminKeyHash:         viper.GetString("ADMIN_KEY_HASH"),
		BinaryPctDefault:     decimalOr("BINARY_PCT_DEFAULT", "10"),
		PowerCapacityDefault: decimalOr("POWER_CAPACITY_DEFAULT", "10000"),
		RenewablePct:         decimalOr("RENEWABLE_PCT", "50"),
		RunWorkers:           intOr("RUN_WORKERS", 4),
		EntityRetries:        intOr("ENTITY_RETRIES", 3),
	}, nil
}

func decimalOr(key, fallback string) decimal.Decimal {
	s := strings.TrimSpace(viper.GetString(key))
	if s == "" {
		s = fallback
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		d, _ = decimal.NewFromString(fallback)
	}
	return d
}

// intOr falls back only when the key is absent: an explicit 0 is a valid
// setting (sequential workers, no retries).
func intOr(key string, fallback int) int {
	if !viper.IsSet(key) {
		return fallback
	}
	return viper.GetInt(key)
}
