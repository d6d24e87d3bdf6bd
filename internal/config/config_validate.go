// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateInference(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}

	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be 'development' or 'production', got %q", c.Server.Environment)
	}

	return nil
}

// validateDatabase validates DuckDB configuration
func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH must not be empty (use :memory: for an in-memory database)")
	}

	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative, got %d", c.Database.Threads)
	}

	if c.Database.SnapshotRetention < 0 {
		return fmt.Errorf("SNAPSHOT_RETENTION must not be negative, got %v", c.Database.SnapshotRetention)
	}

	return nil
}

// validateAPI validates pagination limits
func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1, got %d", c.API.DefaultPageSize)
	}

	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE (%d) must not be smaller than API_DEFAULT_PAGE_SIZE (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}

	if c.API.MaxImportBytes < 1 {
		return fmt.Errorf("API_MAX_IMPORT_BYTES must be positive, got %d", c.API.MaxImportBytes)
	}

	return nil
}

// validateSecurity validates authentication settings. JWT mode requires a
// secret and admin credentials in production; development mode generates
// defaults with a warning at startup instead.
func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "jwt", "none":
	default:
		return fmt.Errorf("AUTH_MODE must be 'jwt' or 'none', got %q", c.Security.AuthMode)
	}

	if c.Security.AuthMode == "jwt" && c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive, got %v", c.Security.SessionTimeout)
	}

	if c.Security.AuthMode == "jwt" && c.Server.IsProduction() {
		if c.Security.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=jwt in production")
		}
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters, got %d", len(c.Security.JWTSecret))
		}
		if c.Security.AdminUsername == "" || c.Security.AdminPassword == "" {
			return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD are required when AUTH_MODE=jwt in production")
		}
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
		}
	}

	return nil
}

// validateInference validates the inference client tunables
func (c *Config) validateInference() error {
	inf := &c.Inference

	if inf.RemoteConfigured() {
		if inf.Endpoint == "" {
			return fmt.Errorf("INFERENCE_ENDPOINT must not be empty when an API key is set")
		}
		if !strings.HasPrefix(inf.Endpoint, "http://") && !strings.HasPrefix(inf.Endpoint, "https://") {
			return fmt.Errorf("INFERENCE_ENDPOINT must start with http:// or https://, got %q", inf.Endpoint)
		}
		if inf.Model == "" {
			return fmt.Errorf("INFERENCE_MODEL must not be empty when an API key is set")
		}
	}

	if inf.Timeout <= 0 {
		return fmt.Errorf("INFERENCE_TIMEOUT must be positive, got %v", inf.Timeout)
	}

	if inf.CacheCapacity < 1 {
		return fmt.Errorf("INFERENCE_CACHE_CAPACITY must be at least 1, got %d", inf.CacheCapacity)
	}
	if inf.SentimentTTL < 0 || inf.InsightTTL < 0 {
		return fmt.Errorf("cache TTLs must not be negative")
	}

	if inf.BreakerThreshold <= 0 {
		return fmt.Errorf("BREAKER_THRESHOLD must be positive, got %v", inf.BreakerThreshold)
	}
	if inf.BreakerReset <= 0 {
		return fmt.Errorf("BREAKER_RESET_TIMEOUT must be positive, got %v", inf.BreakerReset)
	}
	if inf.QuotaFailureWeight <= 0 || inf.OtherFailureWeight <= 0 {
		return fmt.Errorf("failure weights must be positive, got quota=%v other=%v",
			inf.QuotaFailureWeight, inf.OtherFailureWeight)
	}
	if inf.OtherFailureWeight > inf.QuotaFailureWeight {
		return fmt.Errorf("OTHER_FAILURE_WEIGHT (%v) must not exceed QUOTA_FAILURE_WEIGHT (%v)",
			inf.OtherFailureWeight, inf.QuotaFailureWeight)
	}

	if inf.RequestsPerMinute < 1 {
		return fmt.Errorf("INFERENCE_REQUESTS_PER_MINUTE must be at least 1, got %d", inf.RequestsPerMinute)
	}
	if inf.MinIntervalFloor <= 0 {
		return fmt.Errorf("INFERENCE_MIN_INTERVAL_FLOOR must be positive, got %v", inf.MinIntervalFloor)
	}
	if inf.MinIntervalCeil < inf.MinIntervalFloor {
		return fmt.Errorf("INFERENCE_MIN_INTERVAL_CEILING (%v) must not be below the floor (%v)",
			inf.MinIntervalCeil, inf.MinIntervalFloor)
	}
	if inf.MinInterval < inf.MinIntervalFloor || inf.MinInterval > inf.MinIntervalCeil {
		return fmt.Errorf("INFERENCE_MIN_INTERVAL (%v) must be within [%v, %v]",
			inf.MinInterval, inf.MinIntervalFloor, inf.MinIntervalCeil)
	}

	if inf.InsightBatchThreshold < 1 {
		return fmt.Errorf("INSIGHT_BATCH_THRESHOLD must be at least 1, got %d", inf.InsightBatchThreshold)
	}
	if inf.LocalWorkers < 0 {
		return fmt.Errorf("INFERENCE_LOCAL_WORKERS must not be negative, got %d", inf.LocalWorkers)
	}

	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be a valid level, got %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got %q", c.Logging.Format)
	}

	return nil
}
