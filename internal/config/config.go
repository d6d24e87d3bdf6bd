// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package config

import (
	"runtime"
	"time"
)

// Config holds all application configuration loaded from environment variables
// and config files. Provides centralized configuration management for the HTTP
// server, database, inference client, security, and logging.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Example - Load configuration from environment:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	// cfg.Server.Port, cfg.Inference.APIKey, etc. are now populated
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from
// multiple goroutines.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	API       APIConfig       `koanf:"api"`
	Security  SecurityConfig  `koanf:"security"`
	Inference InferenceConfig `koanf:"inference"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development" or "production"
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use runtime.NumCPU()

	// SnapshotRetention bounds how long insight snapshots are kept.
	// Zero disables pruning.
	SnapshotRetention time.Duration `koanf:"snapshot_retention"`
}

// APIConfig holds pagination and upload limits.
type APIConfig struct {
	DefaultPageSize int   `koanf:"default_page_size"`
	MaxPageSize     int   `koanf:"max_page_size"`
	MaxImportBytes  int64 `koanf:"max_import_bytes"` // CSV upload size cap
}

// SecurityConfig holds authentication and rate limiting settings.
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"` // "jwt" or "none"
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"` // plain or bcrypt ($2a$...)
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// InferenceConfig holds every tunable of the resilient inference client:
// the remote endpoint, result caching, circuit breaking, throttling,
// routing policy, and batch thresholds.
type InferenceConfig struct {
	// Remote endpoint. An empty APIKey disables the remote path entirely;
	// the client then serves every request locally without error.
	APIKey   string        `koanf:"api_key"`
	Endpoint string        `koanf:"endpoint"`
	Model    string        `koanf:"model"`
	Timeout  time.Duration `koanf:"timeout"`

	// Result cache. TTL of zero means entries never expire.
	CacheCapacity int           `koanf:"cache_capacity"`
	SentimentTTL  time.Duration `koanf:"sentiment_ttl"`
	InsightTTL    time.Duration `koanf:"insight_ttl"`

	// Circuit breaker. Quota failures weigh more than transient ones so
	// a single 429 plus any other failure opens the circuit.
	BreakerThreshold   float64       `koanf:"breaker_threshold"`
	BreakerReset       time.Duration `koanf:"breaker_reset"`
	QuotaFailureWeight float64       `koanf:"quota_failure_weight"`
	OtherFailureWeight float64       `koanf:"other_failure_weight"`

	// Throttle.
	RequestsPerMinute int           `koanf:"requests_per_minute"`
	MinInterval       time.Duration `koanf:"min_interval"`
	MinIntervalFloor  time.Duration `koanf:"min_interval_floor"`
	MinIntervalCeil   time.Duration `koanf:"min_interval_ceiling"`

	// Routing and batching.
	RemoteSentiment       bool `koanf:"remote_sentiment"`        // route batch sentiment through the remote API
	InsightBatchThreshold int  `koanf:"insight_batch_threshold"` // batch insight extraction above this many texts
	LocalWorkers          int  `koanf:"local_workers"`           // 0 = use runtime.NumCPU()
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RemoteConfigured reports whether the remote inference path is usable.
func (c *InferenceConfig) RemoteConfigured() bool {
	return c.APIKey != ""
}

// Workers returns the local scoring worker count, defaulting to the CPU count.
func (c *InferenceConfig) Workers() int {
	if c.LocalWorkers > 0 {
		return c.LocalWorkers
	}
	return runtime.NumCPU()
}

// IsProduction reports whether the server runs in production mode.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}
