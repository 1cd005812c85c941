// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, catalog client) via constructors.
  - Zero Hidden State: No global variables are used to store config.

Both binaries (cmd/api and cmd/sync) share this schema.
*/
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/cinesync/internal/platform/validate"
)

// # Configuration Schema

// Config holds all runtime configuration for the CineSync binaries.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`
	LogFormat   string `env:"LOG_FORMAT"   envDefault:"json"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Database tunes the connection pool shared by the stores.
	Database DatabaseConfig

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// JWTPubKeyPath points to the RS256 public key used to verify operator tokens.
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`

	// Catalog holds the external catalog API settings.
	Catalog CatalogConfig

	// Sync holds the pipeline tuning knobs.
	Sync SyncConfig
}

// DatabaseConfig configures the PostgreSQL pool.
type DatabaseConfig struct {
	MaxConns         int32         `env:"DATABASE_MAX_CONNS"         envDefault:"25"`
	MinConns         int32         `env:"DATABASE_MIN_CONNS"         envDefault:"2"`
	StatementTimeout time.Duration `env:"DATABASE_STATEMENT_TIMEOUT" envDefault:"30s"`
}

// CatalogConfig configures the external catalog client.
type CatalogConfig struct {
	BaseURL string `env:"CATALOG_BASE_URL" envDefault:"https://api.themoviedb.org/3"`

	// APIKey takes precedence over any credential supplied by a caller.
	APIKey string `env:"CATALOG_API_KEY"`

	RequestTimeout  time.Duration `env:"CATALOG_REQUEST_TIMEOUT"  envDefault:"5s"`
	MaxRetries      int           `env:"CATALOG_MAX_RETRIES"      envDefault:"3"`
	BackoffInitial  time.Duration `env:"CATALOG_BACKOFF_INITIAL"  envDefault:"1s"`
	PacingInterval  time.Duration `env:"CATALOG_PACING_INTERVAL"  envDefault:"250ms"`
	BreakerFailures uint32        `env:"CATALOG_BREAKER_FAILURES" envDefault:"5"`
	BreakerCooldown time.Duration `env:"CATALOG_BREAKER_COOLDOWN" envDefault:"30s"`
}

// SyncConfig configures the synchronization pipeline.
type SyncConfig struct {
	Languages              []string      `env:"SYNC_LANGUAGES" envSeparator:"," envDefault:"en,tr,de,fr,es,it,pt,ru,ja,ko,zh,ar,nl,pl,sv,da,fi,no,cs,hu"`
	StalenessWindow        time.Duration `env:"SYNC_STALENESS_WINDOW"        envDefault:"6h"`
	TranslationConcurrency int           `env:"SYNC_TRANSLATION_CONCURRENCY" envDefault:"4"`

	// RulesPath overrides the embedded provider rule table when set.
	RulesPath string `env:"PROVIDER_RULES_PATH"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate rejects values that parse correctly but cannot drive the pipeline.
func (c *Config) Validate() error {
	validator := &validate.Validator{}

	validator.OneOf("LOG_FORMAT", c.LogFormat, "json", "text")
	validator.HTTPURL("CATALOG_BASE_URL", c.Catalog.BaseURL)
	validator.Range("CATALOG_MAX_RETRIES", c.Catalog.MaxRetries, 0, 10)
	validator.Positive("CATALOG_REQUEST_TIMEOUT", c.Catalog.RequestTimeout)
	validator.Positive("CATALOG_BACKOFF_INITIAL", c.Catalog.BackoffInitial)
	validator.Custom("CATALOG_REQUEST_TIMEOUT", c.Catalog.RequestTimeout >= c.Catalog.backoffCeiling(), "Must be shorter than CATALOG_BACKOFF_INITIAL << CATALOG_MAX_RETRIES")
	validator.Custom("CATALOG_PACING_INTERVAL", c.Catalog.PacingInterval < 0, "Must not be negative")
	validator.Custom("SYNC_LANGUAGES", len(c.Sync.Languages) == 0, "At least one language is required")
	validator.Positive("SYNC_STALENESS_WINDOW", c.Sync.StalenessWindow)
	validator.Custom("DATABASE_MAX_CONNS", c.Database.MaxConns < 1, "Must be positive")
	validator.Custom("DATABASE_MIN_CONNS", c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns, "Must be between 0 and DATABASE_MAX_CONNS")
	validator.Positive("DATABASE_STATEMENT_TIMEOUT", c.Database.StatementTimeout)
	validator.Range("SYNC_TRANSLATION_CONCURRENCY", c.Sync.TranslationConcurrency, 1, 20)

	return validator.Err()
}

// backoffCeiling is the longest wait between catalog retries. Out-of-range
// inputs report no ceiling; the field rules above reject them.
func (c CatalogConfig) backoffCeiling() time.Duration {
	if c.MaxRetries < 0 || c.MaxRetries > 10 || c.BackoffInitial <= 0 || c.RequestTimeout <= 0 {
		return math.MaxInt64
	}
	return c.BackoffInitial << c.MaxRetries
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the trimmed, non-empty entries of EXTRA_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
