// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

/*
Package api provides the HTTP interface for Dwellmap using the Chi router.

# Routes

	GET    /api/v1/health                         liveness, source and session status
	GET    /api/v1/health/live                    process liveness
	GET    /api/v1/health/ready                   source ping
	GET    /api/v1/areas                          distinct named areas
	GET    /api/v1/heatmap                        per-area aggregates over a window
	GET    /api/v1/heatmap/renderer               heat gradient and opacity settings
	GET    /api/v1/statistics                     raw filtered presence records
	POST   /api/v1/timeline                       bucket a window (or supplied records)
	POST   /api/v1/timeline/chart                 the same timeline as an HTML chart
	GET    /api/v1/playback/sessions              list sessions
	POST   /api/v1/playback/sessions              build a timeline and start playing it
	GET    /api/v1/playback/sessions/{id}         session status
	DELETE /api/v1/playback/sessions/{id}         stop and remove
	GET    /api/v1/playback/sessions/{id}/frame   last published frame
	POST   /api/v1/playback/sessions/{id}/pause   (also resume, stop)
	POST   /api/v1/playback/sessions/{id}/seek    {"index": n}
	POST   /api/v1/playback/sessions/{id}/seek/begin
	POST   /api/v1/playback/sessions/{id}/seek/end {"index": n}
	PUT    /api/v1/playback/sessions/{id}/interval {"interval_ms": n}
	GET    /api/v1/layouts                        saved floorplan layouts
	POST   /api/v1/layouts
	GET    /api/v1/layouts/{id}
	PUT    /api/v1/layouts/{id}
	DELETE /api/v1/layouts/{id}
	GET    /api/v1/ws?session_id=...              playback frame stream
	GET    /metrics                               Prometheus

Window queries on GET endpoints take area_ids (comma separated), start and
end (RFC 3339) and optional min_duration_seconds / max_duration_seconds.

# Responses

Every JSON response uses the models.APIResponse envelope. Errors carry a
machine-readable code:

	VALIDATION_ERROR     400
	NOT_FOUND            404
	TOO_MANY_SESSIONS    429
	RANGE_TOO_LARGE      422  details.suggested_interval_minutes
	NO_DATA              422
	DATABASE_ERROR       500
	SERVICE_UNAVAILABLE  503  source circuit breaker open
*/
package api
