package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/congo-pay/likuta/internal/ledger"
)

// Ledger backend selectors for LEDGER_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendBolt     = "bolt"
)

const (
	defaultAppName         = "Likuta"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultBoltPath        = "data/likuta.db"
	defaultIssuerLabel     = "treasury"
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment
// variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	LedgerBackend  string
	DatabaseURL    string
	RedisURL       string
	BoltPath       string
	TotalSupply    ledger.Amount
	IssuerLabel    string
	IssuerSecret   string
	JWTSecret      string
	AccessTokenTTL time.Duration
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
}

// Load reads configuration values from the environment and populates a Config
// instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		LedgerBackend:  strings.ToLower(os.Getenv("LEDGER_BACKEND")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		BoltPath:       getEnv("BOLT_PATH", defaultBoltPath),
		IssuerLabel:    getEnv("ISSUER_LABEL", defaultIssuerLabel),
		IssuerSecret:   os.Getenv("ISSUER_SECRET"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: defaultAccessTokenTTL,
		ShutdownPeriod: defaultShutdownDelay,
		IdempotencyTTL: defaultIdempotencyTTL,
	}

	supply := os.Getenv("TOTAL_SUPPLY")
	if supply == "" {
		return Config{}, fmt.Errorf("TOTAL_SUPPLY must be set")
	}
	parsed, err := ledger.ParseAmount(supply)
	if err != nil {
		return Config{}, fmt.Errorf("invalid TOTAL_SUPPLY: %w", err)
	}
	cfg.TotalSupply = parsed

	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ACCESS_TOKEN_TTL: %w", err)
		}
		cfg.AccessTokenTTL = d
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(idemTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLSecondsEnvVar, err)
		}
		cfg.IdempotencyTTL = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(idemTTLDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLDurEnvVar, err)
		}
		cfg.IdempotencyTTL = d
	}

	if err := cfg.resolveBackend(); err != nil {
		return Config{}, err
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return Config{}, fmt.Errorf("JWT_SECRET must be set")
		}
		cfg.JWTSecret = "likuta-dev-jwt-secret"
	}
	if cfg.IssuerSecret == "" {
		if !cfg.IsDevelopment() {
			return Config{}, fmt.Errorf("ISSUER_SECRET must be set")
		}
		cfg.IssuerSecret = "likuta-dev-issuer-secret"
	}
	if cfg.RedisURL == "" && !cfg.IsDevelopment() {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}

	return cfg, nil
}

// resolveBackend fills in the ledger backend when unset and validates its
// requirements. An explicit DATABASE_URL selects Postgres; otherwise
// development boots on the in-memory ledger and everything else must choose.
func (c *Config) resolveBackend() error {
	if c.LedgerBackend == "" {
		switch {
		case c.DatabaseURL != "":
			c.LedgerBackend = BackendPostgres
		case c.IsDevelopment():
			c.LedgerBackend = BackendMemory
		default:
			return fmt.Errorf("LEDGER_BACKEND must be set (memory, postgres or bolt)")
		}
	}

	switch c.LedgerBackend {
	case BackendMemory, BackendBolt:
		return nil
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set for the postgres backend")
		}
		return nil
	}
	return fmt.Errorf("unknown LEDGER_BACKEND %q", c.LedgerBackend)
}

// IsDevelopment reports whether the app runs in a development environment.
func (c Config) IsDevelopment() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
