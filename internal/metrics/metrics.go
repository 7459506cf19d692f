// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Record source metrics
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dwellmap_source_fetch_duration_seconds",
			Help:    "Duration of presence record fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"driver", "operation"},
	)

	SourceFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dwellmap_source_fetch_errors_total",
			Help: "Total number of failed presence record fetches",
		},
		[]string{"driver", "operation"},
	)

	SourceRecordsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dwellmap_source_records_fetched_total",
			Help: "Total number of presence records returned by the source",
		},
		[]string{"driver"},
	)

	// Record batch cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dwellmap_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dwellmap_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// Bucketing
	TimelineBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dwellmap_timeline_build_duration_seconds",
			Help:    "Time spent bucketing records into timeline slots",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	TimelineBuckets = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dwellmap_timeline_buckets",
			Help:    "Number of non-empty buckets produced per timeline",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	TimelineRecordsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dwellmap_timeline_records_skipped_total",
			Help: "Records dropped for an invalid enter time",
		},
	)

	TimelineRangeTooLarge = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dwellmap_timeline_range_too_large_total",
			Help: "Timeline requests rejected for exceeding the slot ceiling",
		},
	)

	// Playback
	PlaybackSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dwellmap_playback_sessions_active",
			Help: "Current number of playback sessions",
		},
	)

	PlaybackFramesDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dwellmap_playback_frames_delivered_total",
			Help: "Total number of frames delivered to sinks",
		},
		[]string{"trigger"}, // "start", "tick", "seek"
	)

	PlaybackTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dwellmap_playback_transitions_total",
			Help: "Playback state transitions",
		},
		[]string{"to_state"},
	)

	PlaybackSessionsReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dwellmap_playback_sessions_reaped_total",
			Help: "Idle playback sessions removed by the reaper",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dwellmap_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dwellmap_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dwellmap_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dwellmap_websocket_connections",
			Help: "Current number of WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dwellmap_websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
		[]string{"type"},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dwellmap_websocket_messages_dropped_total",
			Help: "Messages dropped because a client buffer was full",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dwellmap_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dwellmap_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dwellmap_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordSourceFetch records one call against the presence source.
func RecordSourceFetch(driver, operation string, duration time.Duration, records int, err error) {
	SourceFetchDuration.WithLabelValues(driver, operation).Observe(duration.Seconds())
	if err != nil {
		SourceFetchErrors.WithLabelValues(driver, operation).Inc()
		return
	}
	SourceRecordsFetched.WithLabelValues(driver).Add(float64(records))
}

// RecordCacheLookup counts a hit or miss for the named cache.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordTimeline records the outcome of one bucketing pass.
func RecordTimeline(duration time.Duration, buckets, skipped int, rangeTooLarge bool) {
	TimelineBuildDuration.Observe(duration.Seconds())
	if rangeTooLarge {
		TimelineRangeTooLarge.Inc()
		return
	}
	TimelineBuckets.Observe(float64(buckets))
	if skipped > 0 {
		TimelineRecordsSkipped.Add(float64(skipped))
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// Circuit breaker states as exported on the gauge.
const (
	BreakerClosed   = 0
	BreakerHalfOpen = 1
	BreakerOpen     = 2
)

// RecordBreakerTransition updates the state gauge and transition counter.
func RecordBreakerTransition(name, from, to string, toValue int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(toValue))
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}
