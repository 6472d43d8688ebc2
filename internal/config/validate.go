package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// Identity
	switch c.Identity.Mode {
	case IdentityModeSecret:
		if c.Identity.Secret == "" {
			errs = append(errs, "MEMBERSPOT_SECRET_KEY is required")
		}
	case IdentityModeJWT:
		if len(c.Identity.Secret) < 32 {
			errs = append(errs, "MEMBERSPOT_SECRET_KEY must be at least 32 characters in jwt mode")
		}
	default:
		errs = append(errs, fmt.Sprintf("IDENTITY_MODE must be %q or %q, got %q", IdentityModeSecret, IdentityModeJWT, c.Identity.Mode))
	}

	// Store
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.DB.Password == "" {
			errs = append(errs, "DB_PASSWORD is required for the postgres store")
		}
		if c.DB.Port < 1 || c.DB.Port > 65535 {
			errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
		}
	case StoreDriverRedis:
	case StoreDriverSQLite:
		if c.SQLite.Path == "" {
			errs = append(errs, "SQLITE_PATH is required for the sqlite store")
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Sprintf("STORE_DRIVER must be one of postgres, redis, sqlite, memory, got %q", c.Store.Driver))
	}

	if c.UsesRedis() && (c.Redis.Port < 1 || c.Redis.Port > 65535) {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	// Upstream
	if c.Anthropic.APIKey == "" {
		slog.Warn("ANTHROPIC_API_KEY is empty; generation requests will fail with API_KEY_MISSING")
	}
	if c.Anthropic.MaxTokens <= 0 {
		errs = append(errs, fmt.Sprintf("ANTHROPIC_MAX_TOKENS must be > 0, got %d", c.Anthropic.MaxTokens))
	}
	if c.Anthropic.Temperature < 0 || c.Anthropic.Temperature > 1 {
		errs = append(errs, fmt.Sprintf("ANTHROPIC_TEMPERATURE must be 0-1, got %g", c.Anthropic.Temperature))
	}
	if c.Anthropic.Timeout <= 0 {
		errs = append(errs, "ANTHROPIC_TIMEOUT must be positive")
	}
	if c.Server.WriteTimeout <= c.Anthropic.Timeout {
		errs = append(errs, fmt.Sprintf("SERVER_WRITE_TIMEOUT (%s) must exceed ANTHROPIC_TIMEOUT (%s)", c.Server.WriteTimeout, c.Anthropic.Timeout))
	}

	if c.Store.Timeout <= 0 {
		errs = append(errs, "STORE_TIMEOUT must be positive")
	}

	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}

	// Per-IP guard
	if c.IPLimit.Max < 0 {
		errs = append(errs, fmt.Sprintf("IP_RATE_LIMIT_MAX must be >= 0, got %d", c.IPLimit.Max))
	}
	if c.IPLimit.Enabled() && c.IPLimit.WindowSec <= 0 {
		errs = append(errs, fmt.Sprintf("IP_RATE_LIMIT_WINDOW must be > 0, got %d", c.IPLimit.WindowSec))
	}

	// Logging
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}

// UsesRedis reports whether a Redis connection is needed.
func (c *Config) UsesRedis() bool {
	return c.Store.Driver == StoreDriverRedis || c.IPLimit.Enabled()
}
