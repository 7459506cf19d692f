// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/dwellmap/config.yaml",
	"/etc/dwellmap/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvFile is loaded into the environment before the env layer, if present.
const DotEnvFile = ".env"

// Supported database drivers.
const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
)

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    3857,
			Host:    "0.0.0.0",
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          DriverDuckDB,
			Path:            "/data/dwellmap.duckdb",
			MaxMemory:       "1GB",
			Threads:         0, // DuckDB picks the core count
			SeedSampleData:  false,
			ConnectAttempts: 5,
			ConnectDelay:    2 * time.Second,
		},
		Timeline: TimelineConfig{
			IntervalMinutes: 60,
			MaxSlots:        500,
			FillGaps:        false,
		},
		Playback: PlaybackConfig{
			IntervalMs:   1000,
			SessionTTL:   30 * time.Minute,
			ReapInterval: time.Minute,
			MaxSessions:  64,
		},
		Heatmap: HeatmapConfig{
			Metric:   "visitCount",
			Mode:     "fixed",
			RangeMin: 0,
			RangeMax: 100,
			Radius:   50,
			TopN:     10,
		},
		Filter: FilterConfig{
			MinDurationSeconds: 0,
			MaxDurationSeconds: 999999,
		},
		Cache: CacheConfig{
			TTL:      5 * time.Minute,
			Capacity: 128,
		},
		Breaker: BreakerConfig{
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
		Layout: LayoutConfig{
			Path:     "/data/layouts",
			InMemory: false,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources.
// Layers are loaded in order, with later layers overriding earlier ones:
//  1. Defaults (from defaultConfig())
//  2. .env file (copied into the process environment, never overriding it)
//  3. Config file (optional, from CONFIG_PATH or DefaultConfigPaths)
//  4. Environment variables (highest priority)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: .env is optional
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", DotEnvFile, err)
	}

	// Layer 3: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 4: Environment variables
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

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

// processSliceFields converts comma-separated string values to slices.
// This is needed because environment variables are always strings.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice when it came from YAML or defaults
		switch val.(type) {
		case []interface{}, []string:
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
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
	return nil
}

// envMappings maps flat environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",

	// Database
	"database_driver":           "database.driver",
	"duckdb_path":               "database.path",
	"duckdb_max_memory":         "database.max_memory",
	"duckdb_threads":            "database.threads",
	"seed_sample_data":          "database.seed_sample_data",
	"database_dsn":              "database.dsn",
	"database_connect_attempts": "database.connect_attempts",
	"database_connect_delay":    "database.connect_delay",

	// Timeline
	"interval_minutes":   "timeline.interval_minutes",
	"timeline_max_slots": "timeline.max_slots",
	"timeline_fill_gaps": "timeline.fill_gaps",

	// Playback
	"playback_interval_ms":   "playback.interval_ms",
	"playback_session_ttl":   "playback.session_ttl",
	"playback_reap_interval": "playback.reap_interval",
	"playback_max_sessions":  "playback.max_sessions",

	// Heatmap
	"heatmap_metric":    "heatmap.metric",
	"heatmap_mode":      "heatmap.mode",
	"heatmap_range_min": "heatmap.range_min",
	"heatmap_range_max": "heatmap.range_max",
	"heatmap_radius":    "heatmap.radius",
	"heatmap_top_n":     "heatmap.top_n",

	// Filter
	"min_duration_seconds": "filter.min_duration_seconds",
	"max_duration_seconds": "filter.max_duration_seconds",

	// Cache and breaker
	"cache_ttl":                 "cache.ttl",
	"cache_capacity":            "cache.capacity",
	"breaker_max_requests":      "breaker.max_requests",
	"breaker_interval":          "breaker.interval",
	"breaker_timeout":           "breaker.timeout",
	"breaker_failure_threshold": "breaker.failure_threshold",

	// Layout
	"layout_path":      "layout.path",
	"layout_in_memory": "layout.in_memory",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Variables without a mapping are ignored.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - PLAYBACK_INTERVAL_MS -> playback.interval_ms
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
