// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors register on the default registry through promauto and are
served at /metrics by the API router.

# Available Metrics

Source:
  - dwellmap_source_fetch_duration_seconds{driver,operation}
  - dwellmap_source_fetch_errors_total{driver,operation}
  - dwellmap_source_records_fetched_total{driver}
  - dwellmap_cache_hits_total{cache}, dwellmap_cache_misses_total{cache}

Timeline:
  - dwellmap_timeline_build_duration_seconds
  - dwellmap_timeline_buckets
  - dwellmap_timeline_records_skipped_total
  - dwellmap_timeline_range_too_large_total

Playback:
  - dwellmap_playback_sessions_active
  - dwellmap_playback_frames_delivered_total{trigger}
  - dwellmap_playback_transitions_total{to_state}
  - dwellmap_playback_sessions_reaped_total

HTTP and WebSocket:
  - dwellmap_api_requests_total{method,endpoint,status_code}
  - dwellmap_api_request_duration_seconds{method,endpoint}
  - dwellmap_api_active_requests
  - dwellmap_websocket_connections
  - dwellmap_websocket_messages_sent_total{type}
  - dwellmap_websocket_messages_dropped_total

Circuit breaker:
  - dwellmap_circuit_breaker_state{name} (0=closed, 1=half-open, 2=open)
  - dwellmap_circuit_breaker_state_transitions_total{name,from_state,to_state}
*/
package metrics
