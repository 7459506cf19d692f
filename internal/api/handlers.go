// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package api

import (
	"context"
	"time"

	"github.com/tomtom215/dwellmap/internal/config"
	"github.com/tomtom215/dwellmap/internal/models"
	"github.com/tomtom215/dwellmap/internal/presence"
	"github.com/tomtom215/dwellmap/internal/session"
	ws "github.com/tomtom215/dwellmap/internal/websocket"
)

// Version is reported by the health endpoint; set from main.
var Version = "dev"

// LayoutStore is the saved layout persistence used by the layout endpoints.
// Satisfied by *layout.Store.
type LayoutStore interface {
	Create(ctx context.Context, l *models.Layout) (*models.Layout, error)
	Get(ctx context.Context, id string) (*models.Layout, error)
	List(ctx context.Context) ([]models.Layout, error)
	Update(ctx context.Context, id string, l *models.Layout) (*models.Layout, error)
	Delete(ctx context.Context, id string) error
}

// breakerReporter is implemented by sources guarded by a circuit breaker.
type breakerReporter interface {
	BreakerState() string
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_health.go: health and readiness
//   - handlers_presence.go: areas, heatmap, statistics, timeline
//   - handlers_playback.go: playback sessions
//   - handlers_layouts.go: saved layouts
//   - handlers_websocket.go: frame stream upgrade
type Handler struct {
	source   presence.Source
	builder  *session.Builder
	sessions *session.Manager
	layouts  LayoutStore
	wsHub    *ws.Hub
	config   *config.Config

	startTime time.Time
}

// NewHandler creates the API handler. layouts and wsHub may be nil; the
// endpoints depending on them then answer 503.
func NewHandler(source presence.Source, builder *session.Builder, sessions *session.Manager, layouts LayoutStore, wsHub *ws.Hub, cfg *config.Config) *Handler {
	return &Handler{
		source:    source,
		builder:   builder,
		sessions:  sessions,
		layouts:   layouts,
		wsHub:     wsHub,
		config:    cfg,
		startTime: time.Now(),
	}
}
