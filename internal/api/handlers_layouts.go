// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/dwellmap/internal/models"
)

// LayoutList returns saved layouts ordered by name.
func (h *Handler) LayoutList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.layoutsAvailable(w) {
		return
	}
	layouts, err := h.layouts.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to list layouts", err)
		return
	}
	respondSuccess(w, http.StatusOK, layouts, start)
}

// LayoutCreate saves a new layout. The id and timestamps are assigned by
// the store.
func (h *Handler) LayoutCreate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.layoutsAvailable(w) {
		return
	}
	var l models.Layout
	if !decodeAndValidate(w, r, &l) {
		return
	}
	created, err := h.layouts.Create(r.Context(), &l)
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to save layout", err)
		return
	}
	respondSuccess(w, http.StatusCreated, created, start)
}

func (h *Handler) LayoutGet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.layoutsAvailable(w) {
		return
	}
	l, err := h.layouts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, l, start)
}

// LayoutUpdate replaces name, floorplan and regions of a saved layout.
func (h *Handler) LayoutUpdate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.layoutsAvailable(w) {
		return
	}
	var l models.Layout
	if !decodeAndValidate(w, r, &l) {
		return
	}
	updated, err := h.layouts.Update(r.Context(), chi.URLParam(r, "id"), &l)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, updated, start)
}

func (h *Handler) LayoutDelete(w http.ResponseWriter, r *http.Request) {
	if !h.layoutsAvailable(w) {
		return
	}
	if err := h.layouts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) layoutsAvailable(w http.ResponseWriter) bool {
	if h.layouts == nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Layout store not configured", nil)
		return false
	}
	return true
}
