// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/dwellmap/internal/models"
	"github.com/tomtom215/dwellmap/internal/timeline"
)

// Validate checks the configuration for consistency. It returns the first
// problem found, phrased in terms of the environment variable to change.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateTimeline,
		c.validatePlayback,
		c.validateHeatmap,
		c.validateFilter,
		c.validateCache,
		c.validateBreaker,
		c.validateLayout,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverDuckDB:
		if c.Database.Threads < 0 {
			return fmt.Errorf("DUCKDB_THREADS must not be negative")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required when DATABASE_DRIVER=postgres")
		}
		if c.Database.ConnectAttempts < 1 {
			return fmt.Errorf("DATABASE_CONNECT_ATTEMPTS must be at least 1")
		}
		if c.Database.ConnectDelay < 0 {
			return fmt.Errorf("DATABASE_CONNECT_DELAY must not be negative")
		}
	default:
		return fmt.Errorf("DATABASE_DRIVER must be one of: %s, %s", DriverDuckDB, DriverPostgres)
	}
	return nil
}

// maxTimelineSlots caps the configurable slot ceiling.
const maxTimelineSlots = 10000

func (c *Config) validateTimeline() error {
	if c.Timeline.IntervalMinutes < 1 || c.Timeline.IntervalMinutes > timeline.MaxIntervalMinutes {
		return fmt.Errorf("INTERVAL_MINUTES must be between 1 and %d", timeline.MaxIntervalMinutes)
	}
	if c.Timeline.MaxSlots < 1 || c.Timeline.MaxSlots > maxTimelineSlots {
		return fmt.Errorf("TIMELINE_MAX_SLOTS must be between 1 and %d", maxTimelineSlots)
	}
	return nil
}

func (c *Config) validatePlayback() error {
	if c.Playback.IntervalMs <= 0 {
		return fmt.Errorf("PLAYBACK_INTERVAL_MS must be positive")
	}
	if c.Playback.SessionTTL <= 0 {
		return fmt.Errorf("PLAYBACK_SESSION_TTL must be positive")
	}
	if c.Playback.ReapInterval <= 0 {
		return fmt.Errorf("PLAYBACK_REAP_INTERVAL must be positive")
	}
	if c.Playback.MaxSessions < 1 {
		return fmt.Errorf("PLAYBACK_MAX_SESSIONS must be at least 1")
	}
	return nil
}

func (c *Config) validateHeatmap() error {
	if _, err := models.ParseMetric(c.Heatmap.Metric); err != nil {
		return fmt.Errorf("HEATMAP_METRIC: %w", err)
	}
	if _, err := models.ParseNormalizationMode(c.Heatmap.Mode); err != nil {
		return fmt.Errorf("HEATMAP_MODE: %w", err)
	}
	if (models.NormalizationRange{Min: c.Heatmap.RangeMin, Max: c.Heatmap.RangeMax}).Inverted() {
		return fmt.Errorf("HEATMAP_RANGE_MAX must not be less than HEATMAP_RANGE_MIN")
	}
	if c.Heatmap.Radius < 1 {
		return fmt.Errorf("HEATMAP_RADIUS must be at least 1")
	}
	if c.Heatmap.TopN < 1 {
		return fmt.Errorf("HEATMAP_TOP_N must be at least 1")
	}
	return nil
}

func (c *Config) validateFilter() error {
	if c.Filter.MinDurationSeconds < 0 {
		return fmt.Errorf("MIN_DURATION_SECONDS must not be negative")
	}
	if !(c.Filter.MaxDurationSeconds > c.Filter.MinDurationSeconds) {
		return fmt.Errorf("MAX_DURATION_SECONDS must be greater than MIN_DURATION_SECONDS")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.TTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}
	if c.Cache.Capacity < 0 {
		return fmt.Errorf("CACHE_CAPACITY must not be negative")
	}
	return nil
}

func (c *Config) validateBreaker() error {
	if c.Breaker.FailureThreshold < 1 {
		return fmt.Errorf("BREAKER_FAILURE_THRESHOLD must be at least 1")
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateLayout() error {
	if !c.Layout.InMemory && c.Layout.Path == "" {
		return fmt.Errorf("LAYOUT_PATH is required unless LAYOUT_IN_MEMORY=true")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"json": true, "console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
