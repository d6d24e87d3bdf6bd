// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/propacity/config.yaml",
	"/etc/propacity/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:              "/data/propacity.duckdb",
			MaxMemory:         "1GB",
			Threads:           0, // 0 = use runtime.NumCPU()
			SnapshotRetention: 30 * 24 * time.Hour,
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
			MaxImportBytes:  16 << 20, // 16MB CSV upload cap
		},
		Security: SecurityConfig{
			AuthMode:          "jwt",
			JWTSecret:         "",
			SessionTimeout:    24 * time.Hour,
			AdminUsername:     "",
			AdminPassword:     "",
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Inference: InferenceConfig{
			APIKey:   "", // Remote path disabled until a key is provided
			Endpoint: "https://generativelanguage.googleapis.com/v1beta",
			Model:    "gemini-2.5-flash",
			Timeout:  30 * time.Second,

			CacheCapacity: 10000,
			SentimentTTL:  0, // Sentiment scores never go stale
			InsightTTL:    1 * time.Hour,

			BreakerThreshold:   2.0,
			BreakerReset:       10 * time.Minute,
			QuotaFailureWeight: 1.0,
			OtherFailureWeight: 0.5,

			RequestsPerMinute: 60,
			MinInterval:       200 * time.Millisecond,
			MinIntervalFloor:  100 * time.Millisecond,
			MinIntervalCeil:   1 * time.Second,

			RemoteSentiment:       false, // Remote budget is reserved for insight extraction
			InsightBatchThreshold: 100,
			LocalWorkers:          0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence: ENV > File > Defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// HTTP_PORT -> server.port
	// GEMINI_API_KEY -> inference.api_key
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known
// slice fields. This is necessary because env vars come in as strings, but the
// config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Only known variables are mapped; anything else is skipped so random
// environment variables do not pollute the config.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - GEMINI_API_KEY -> inference.api_key
//   - BREAKER_THRESHOLD -> inference.breaker_threshold
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_port":    "server.port",
		"http_host":    "server.host",
		"http_timeout": "server.timeout",
		"environment":  "server.environment",

		// Database mappings
		"duckdb_path":        "database.path",
		"duckdb_max_memory":  "database.max_memory",
		"duckdb_threads":     "database.threads",
		"snapshot_retention": "database.snapshot_retention",

		// API mappings
		"api_default_page_size": "api.default_page_size",
		"api_max_page_size":     "api.max_page_size",
		"api_max_import_bytes":  "api.max_import_bytes",

		// Security mappings
		"auth_mode":           "security.auth_mode",
		"jwt_secret":          "security.jwt_secret",
		"session_timeout":     "security.session_timeout",
		"admin_username":      "security.admin_username",
		"admin_password":      "security.admin_password",
		"rate_limit_requests": "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"disable_rate_limit":  "security.rate_limit_disabled",
		"cors_origins":        "security.cors_origins",

		// Inference mappings. GEMINI_API_KEY is the historical name and
		// stays supported next to the canonical INFERENCE_API_KEY.
		"gemini_api_key":                 "inference.api_key",
		"inference_api_key":              "inference.api_key",
		"inference_endpoint":             "inference.endpoint",
		"inference_model":                "inference.model",
		"inference_timeout":              "inference.timeout",
		"inference_cache_capacity":       "inference.cache_capacity",
		"sentiment_cache_ttl":            "inference.sentiment_ttl",
		"insight_cache_ttl":              "inference.insight_ttl",
		"breaker_threshold":              "inference.breaker_threshold",
		"breaker_reset_timeout":          "inference.breaker_reset",
		"quota_failure_weight":           "inference.quota_failure_weight",
		"other_failure_weight":           "inference.other_failure_weight",
		"inference_requests_per_minute":  "inference.requests_per_minute",
		"inference_min_interval":         "inference.min_interval",
		"inference_min_interval_floor":   "inference.min_interval_floor",
		"inference_min_interval_ceiling": "inference.min_interval_ceiling",
		"inference_remote_sentiment":     "inference.remote_sentiment",
		"insight_batch_threshold":        "inference.insight_batch_threshold",
		"inference_local_workers":        "inference.local_workers",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	return ""
}
