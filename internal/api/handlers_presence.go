// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package api

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/dwellmap/internal/logging"
	"github.com/tomtom215/dwellmap/internal/models"
	"github.com/tomtom215/dwellmap/internal/normalize"
	"github.com/tomtom215/dwellmap/internal/presence"
	"github.com/tomtom215/dwellmap/internal/report"
)

// Areas lists every named area known to the source.
func (h *Handler) Areas(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.source == nil {
		respondServiceError(w, presence.ErrUnavailable)
		return
	}
	areas, err := h.source.ListAreas(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, areas, start)
}

// HeatmapRenderer returns the gradient and opacity settings viewers use to
// paint frame heat points. radius defaults to heatmap.radius.
func (h *Handler) HeatmapRenderer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	radius := h.config.Heatmap.Radius
	if v := r.URL.Query().Get("radius"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			respondErrorDetails(w, http.StatusBadRequest, paramError("radius", "must be an integer between 1 and 500"), err)
			return
		}
		radius = n
	}
	respondSuccess(w, http.StatusOK, normalize.DefaultRendererOptions(radius), start)
}

// Heatmap returns per-area visit count, total and average dwell minutes
// over the query window.
func (h *Handler) Heatmap(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q, ok := h.windowQuery(w, r)
	if !ok {
		return
	}
	summaries, err := h.source.AreaSummaries(r.Context(), q)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, summaries, start)
}

// Statistics returns the raw presence records in the query window.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q, ok := h.windowQuery(w, r)
	if !ok {
		return
	}
	records, err := h.source.FetchRecords(r.Context(), q)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, records, start)
}

// Timeline buckets a window (or supplied records) and returns buckets and
// summary.
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.TimelineRequest
	if !h.decodeTimelineRequest(w, r, &req) {
		return
	}

	resp, err := h.builder.Build(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Int("buckets", len(resp.Buckets)).
		Int("records", resp.Summary.RecordCount).
		Msg("Timeline built")
	respondSuccess(w, http.StatusOK, resp, start)
}

// TimelineChart renders the same timeline as a standalone HTML page.
// The metric query parameter selects the charted value.
func (h *Handler) TimelineChart(w http.ResponseWriter, r *http.Request) {
	var req models.TimelineRequest
	if !h.decodeTimelineRequest(w, r, &req) {
		return
	}

	metric := models.Metric(h.config.Heatmap.Metric)
	if raw := r.URL.Query().Get("metric"); raw != "" {
		var err error
		if metric, err = models.ParseMetric(raw); err != nil {
			respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
			return
		}
	}

	resp, err := h.builder.Build(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteTimeline(&buf, resp, report.Options{
		Title:    r.URL.Query().Get("title"),
		Metric:   metric,
		TopAreas: h.config.Heatmap.TopN,
	}); err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to render chart", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// windowQuery parses, defaults and validates the window query parameters.
func (h *Handler) windowQuery(w http.ResponseWriter, r *http.Request) (models.PresenceQuery, bool) {
	if h.source == nil {
		respondServiceError(w, presence.ErrUnavailable)
		return models.PresenceQuery{}, false
	}
	q, apiErr := parsePresenceQuery(r)
	if apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr, nil)
		return q, false
	}
	h.builder.ApplyFilterDefaults(&q)
	if apiErr := validateRequest(&q); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr, nil)
		return q, false
	}
	return q, true
}

// decodeTimelineRequest decodes the body and validates it. The query is
// validated only when no records are supplied.
func (h *Handler) decodeTimelineRequest(w http.ResponseWriter, r *http.Request, req *models.TimelineRequest) bool {
	if !decodeAndValidate(w, r, req) {
		return false
	}
	return h.validateQuery(w, req)
}

func (h *Handler) validateQuery(w http.ResponseWriter, req *models.TimelineRequest) bool {
	if len(req.Records) > 0 {
		return true
	}
	h.builder.ApplyFilterDefaults(&req.Query)
	if apiErr := validateRequest(&req.Query); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr, nil)
		return false
	}
	return true
}
