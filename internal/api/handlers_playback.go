// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/dwellmap/internal/logging"
	"github.com/tomtom215/dwellmap/internal/models"
	"github.com/tomtom215/dwellmap/internal/session"
)

// SeekResult reports whether a seek was applied. Seeks during an active
// seek gesture are throttled and may be dropped.
type SeekResult struct {
	Applied bool                   `json:"applied"`
	Session models.PlaybackSession `json:"session"`
}

// PlaybackSessionList lists live sessions, oldest first.
func (h *Handler) PlaybackSessionList(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.sessions.List(), time.Now())
}

// PlaybackSessionCreate builds the timeline and starts playing it. Frames
// are pushed over the WebSocket stream tagged with the returned id.
func (h *Handler) PlaybackSessionCreate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.PlaybackSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !h.validateQuery(w, &req.TimelineRequest) {
		return
	}

	s, err := h.sessions.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	ctx := logging.ContextWithSessionID(r.Context(), s.ID())
	logging.Ctx(ctx).Info().Msg("Playback session created over API")
	respondSuccess(w, http.StatusCreated, s.Status(), start)
}

// PlaybackSessionGet returns session status.
func (h *Handler) PlaybackSessionGet(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondSuccess(w, http.StatusOK, s.Status(), time.Now())
}

// PlaybackSessionFrame returns the last published frame, or null after a
// clear or before the first delivery.
func (h *Handler) PlaybackSessionFrame(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondSuccess(w, http.StatusOK, s.Frame(), time.Now())
}

// PlaybackSessionDelete stops and removes the session.
func (h *Handler) PlaybackSessionDelete(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Delete(chi.URLParam(r, "id")) {
		respondServiceError(w, session.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PlaybackPause, PlaybackResume and PlaybackStop drive the controller.
// Calls that are invalid for the current state are no-ops; the response
// always carries the resulting status.
func (h *Handler) PlaybackPause(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, (*session.Session).Pause)
}

func (h *Handler) PlaybackResume(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, (*session.Session).Resume)
}

func (h *Handler) PlaybackStop(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, (*session.Session).Stop)
}

func (h *Handler) PlaybackSeekBegin(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, (*session.Session).BeginSeek)
}

// PlaybackSeek jumps to a bucket index. Out-of-range indexes are ignored.
func (h *Handler) PlaybackSeek(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req models.SeekRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	applied := s.Seek(req.Index)
	respondSuccess(w, http.StatusOK, SeekResult{Applied: applied, Session: s.Status()}, time.Now())
}

// PlaybackSeekEnd ends a seek gesture at index; ticks advance from there.
func (h *Handler) PlaybackSeekEnd(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req models.SeekRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	s.EndSeek(req.Index)
	respondSuccess(w, http.StatusOK, s.Status(), time.Now())
}

// PlaybackInterval changes the tick cadence from the next scheduled tick.
func (h *Handler) PlaybackInterval(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req models.IntervalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := s.SetInterval(req.IntervalMs); err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, s.Status(), time.Now())
}

func (h *Handler) control(w http.ResponseWriter, r *http.Request, op func(*session.Session)) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	op(s)
	respondSuccess(w, http.StatusOK, s.Status(), time.Now())
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}
	return s, true
}
