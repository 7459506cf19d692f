// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

/*
Package config provides centralized configuration management for Dwellmap.

Configuration is layered with Koanf v2. Built-in defaults come first, then an
optional .env file, then an optional YAML file (CONFIG_PATH, ./config.yaml or
/etc/dwellmap/config.yaml), and finally environment variables.

# Environment Variables

Only mapped variables are read. The most common ones:

  - HTTP_PORT, HTTP_HOST, HTTP_TIMEOUT: HTTP server (default 0.0.0.0:3857)
  - DATABASE_DRIVER: duckdb (default) or postgres
  - DUCKDB_PATH: embedded database file (default /data/dwellmap.duckdb)
  - DATABASE_DSN: PostgreSQL connection string for the presence views
  - INTERVAL_MINUTES, TIMELINE_MAX_SLOTS, TIMELINE_FILL_GAPS: bucketing
  - PLAYBACK_INTERVAL_MS, PLAYBACK_SESSION_TTL, PLAYBACK_MAX_SESSIONS: playback
  - HEATMAP_METRIC, HEATMAP_MODE, HEATMAP_RANGE_MIN, HEATMAP_RANGE_MAX: heat scale
  - MIN_DURATION_SECONDS, MAX_DURATION_SECONDS: dwell filter (default 0..999999)
  - CORS_ORIGINS: comma-separated origin list
  - LOG_LEVEL, LOG_FORMAT: logging

# Usage Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("Failed to load config: %v", err)
	}
	fmt.Printf("Starting server on %s:%d\n", cfg.Server.Host, cfg.Server.Port)

# Thread Safety

Config is immutable after Load() and safe for concurrent read access.
*/
package config
