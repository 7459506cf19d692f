// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package models

import (
	"time"
)

// APIResponse is the envelope returned by every HTTP endpoint.
//
// Status is "success" with Data populated, or "error" with Error populated.
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "RANGE_TOO_LARGE",
//	    "message": "time range needs 8760 slots at 1 minute, limit is 500",
//	    "details": {"suggested_interval_minutes": 18}
//	  },
//	  "metadata": {"timestamp": "2026-01-15T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries timing and cache information for a response.
// QueryTimeMS is 0 for cached responses.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is the machine-readable error body.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes used in APIError.Code.
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeRangeTooLarge = "RANGE_TOO_LARGE"
	ErrCodeNoData        = "NO_DATA"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeDatabase      = "DATABASE_ERROR"
	ErrCodeUnavailable   = "SERVICE_UNAVAILABLE"
	ErrCodeTooMany       = "TOO_MANY_SESSIONS"
	ErrCodeInternal      = "INTERNAL_ERROR"
	ErrCodeBadRequest    = "INVALID_REQUEST"
	ErrCodeRateLimited   = "RATE_LIMITED"
)

// HealthStatus is returned by /api/v1/health.
type HealthStatus struct {
	Status         string    `json:"status"`
	Version        string    `json:"version"`
	Driver         string    `json:"driver"`
	DatabaseOK     bool      `json:"database_ok"`
	BreakerState   string    `json:"breaker_state"`
	ActiveSessions int       `json:"active_sessions"`
	Uptime         float64   `json:"uptime_seconds"`
	Timestamp      time.Time `json:"timestamp"`
}
