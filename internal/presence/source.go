// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

// Package presence defines where presence records come from and the
// resilience layers in front of that source.
//
// A Source is either the embedded DuckDB store or the PostgreSQL views of an
// external deployment. Callers normally use it through NewResilient, which
// adds a circuit breaker and a short-lived result cache.
package presence

import (
	"context"
	"errors"

	"github.com/tomtom215/dwellmap/internal/models"
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("presence source unavailable")

// Source provides presence data for a query window.
type Source interface {
	// ListAreas returns every named area ordered by id.
	ListAreas(ctx context.Context) ([]models.Area, error)

	// AreaSummaries aggregates the window per area.
	AreaSummaries(ctx context.Context, q models.PresenceQuery) ([]models.AreaSummary, error)

	// FetchRecords returns stays with Start <= EnterTime < End, ExitTime
	// after EnterTime and a duration strictly inside the bounds, ordered by
	// EnterTime.
	FetchRecords(ctx context.Context, q models.PresenceQuery) ([]models.PresenceRecord, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Driver names the backing store for metrics and health output.
	Driver() string
}
