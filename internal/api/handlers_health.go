// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/dwellmap/internal/models"
)

const healthPingTimeout = 2 * time.Second

// Health reports source connectivity, breaker state and active sessions.
// Status is "degraded" (still 200) when the source ping fails so that
// orchestrators keep the process alive while the breaker recovers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := models.HealthStatus{
		Status:    "healthy",
		Version:   Version,
		Uptime:    time.Since(h.startTime).Seconds(),
		Timestamp: time.Now().UTC(),
	}

	if h.source != nil {
		status.Driver = h.source.Driver()
		status.DatabaseOK = h.pingSource(r.Context()) == nil
		if br, ok := h.source.(breakerReporter); ok {
			status.BreakerState = br.BreakerState()
		}
	}
	if !status.DatabaseOK {
		status.Status = "degraded"
	}
	if h.sessions != nil {
		status.ActiveSessions = h.sessions.Count()
	}

	respondSuccess(w, http.StatusOK, status, start)
}

// HealthLive always answers 200 while the process serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "alive"}, time.Now())
}

// HealthReady answers 503 until the presence source responds to a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.source == nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Presence source not configured", nil)
		return
	}
	if err := h.pingSource(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Presence source not reachable", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"status": "ready"}, start)
}

func (h *Handler) pingSource(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	return h.source.Ping(ctx)
}
