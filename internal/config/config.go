// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in values for every setting
//  2. .env file: Optional, loaded into the process environment
//  3. Config File: Optional YAML config file (config.yaml)
//  4. Environment Variables: Override any mapped setting
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Timeline TimelineConfig `koanf:"timeline"`
	Playback PlaybackConfig `koanf:"playback"`
	Heatmap  HeatmapConfig  `koanf:"heatmap"`
	Filter   FilterConfig   `koanf:"filter"`
	Cache    CacheConfig    `koanf:"cache"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Layout   LayoutConfig   `koanf:"layout"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// DatabaseConfig selects and tunes the presence record source.
type DatabaseConfig struct {
	// Driver is either "duckdb" (embedded) or "postgres" (external views).
	// Default: duckdb
	Driver string `koanf:"driver"`

	// Path is the DuckDB file. Empty or ":memory:" opens an in-memory database.
	Path string `koanf:"path"`

	// DSN is the PostgreSQL connection string, used when Driver is postgres.
	DSN string `koanf:"dsn"`

	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`

	// SeedSampleData inserts a small demonstration dataset when the
	// DuckDB tables are empty.
	SeedSampleData bool `koanf:"seed_sample_data"`

	// ConnectAttempts and ConnectDelay bound the PostgreSQL startup retry loop.
	ConnectAttempts int           `koanf:"connect_attempts"`
	ConnectDelay    time.Duration `koanf:"connect_delay"`
}

// TimelineConfig holds bucketing defaults.
type TimelineConfig struct {
	IntervalMinutes int  `koanf:"interval_minutes"`
	MaxSlots        int  `koanf:"max_slots"`
	FillGaps        bool `koanf:"fill_gaps"`
}

// PlaybackConfig holds playback session settings.
type PlaybackConfig struct {
	IntervalMs   int           `koanf:"interval_ms"`
	SessionTTL   time.Duration `koanf:"session_ttl"`
	ReapInterval time.Duration `koanf:"reap_interval"`
	MaxSessions  int           `koanf:"max_sessions"`
}

// HeatmapConfig holds normalization defaults.
type HeatmapConfig struct {
	Metric   string  `koanf:"metric"`
	Mode     string  `koanf:"mode"`
	RangeMin float64 `koanf:"range_min"`
	RangeMax float64 `koanf:"range_max"`
	Radius   int     `koanf:"radius"`
	TopN     int     `koanf:"top_n"`
}

// FilterConfig holds the default dwell duration bounds, in seconds.
type FilterConfig struct {
	MinDurationSeconds float64 `koanf:"min_duration_seconds"`
	MaxDurationSeconds float64 `koanf:"max_duration_seconds"`
}

// CacheConfig controls the record batch cache in front of the source.
type CacheConfig struct {
	TTL      time.Duration `koanf:"ttl"`
	Capacity int           `koanf:"capacity"`
}

// BreakerConfig tunes the circuit breaker around the record source.
type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
}

// LayoutConfig controls the floorplan layout store.
type LayoutConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Load reads configuration from all sources and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsPostgres reports whether records come from the external PostgreSQL views.
func (c *Config) IsPostgres() bool {
	return c.Database.Driver == DriverPostgres
}
