// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

/*
Package main is the entry point for the Dwellmap server.

Dwellmap turns per-area presence records (who entered which store area,
and when they left) into time buckets and plays them back as heatmap
frames drawn over a floorplan. Viewers control playback over a REST API
and receive frames over a WebSocket stream.

# Application Architecture

The server runs every long-lived component under a Suture v4 tree:

	RootSupervisor ("dwellmap")
	├── DataSupervisor ("data-layer")
	│   ├── cache-sweeper   (expired record batches)
	│   └── layout-gc       (Badger value log GC)
	├── PlaybackSupervisor ("playback-layer")
	│   ├── websocket-hub   (frame fan-out)
	│   └── session-reaper  (idle playback sessions)
	└── APISupervisor ("api-layer")
	    └── http-server     (Chi router)

Component initialization order:

 1. Configuration: Koanf v2 with .env, config file and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Record source: embedded DuckDB or PostgreSQL views (GORM), behind a
    circuit breaker and a result cache
 4. Layout store: BadgerDB
 5. WebSocket hub and playback session manager
 6. Supervisor tree and HTTP server

# Configuration

Priority: Environment variables > Config file > .env file > Defaults

	HTTP_PORT=3857
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	DATABASE_DRIVER=duckdb       # duckdb or postgres
	DUCKDB_PATH=/data/dwellmap.duckdb
	SEED_SAMPLE_DATA=false
	DATABASE_DSN=postgres://...  # postgres driver only

	INTERVAL_MINUTES=60          # default bucket width
	TIMELINE_MAX_SLOTS=500
	PLAYBACK_INTERVAL_MS=1000
	PLAYBACK_SESSION_TTL=30m
	HEATMAP_METRIC=visitCount    # visitCount, totalDurationMinutes, avgDurationMinutes
	HEATMAP_MODE=fixed           # fixed or relative

	LAYOUT_PATH=/data/layouts
	CORS_ORIGINS=*

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains for up
to ten seconds, playback sessions are stopped, and the layout store and
record source are closed.
*/
package main
