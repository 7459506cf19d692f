// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/dwellmap/internal/config"
	"github.com/tomtom215/dwellmap/internal/logging"
	"github.com/tomtom215/dwellmap/internal/metrics"
	"github.com/tomtom215/dwellmap/internal/models"
	"github.com/tomtom215/dwellmap/internal/normalize"
	"github.com/tomtom215/dwellmap/internal/playback"
)

var (
	// ErrNotFound is returned for an unknown session id
	ErrNotFound = errors.New("playback session not found")

	// ErrTooManySessions is returned when the session limit is reached
	ErrTooManySessions = errors.New("too many playback sessions")

	// ErrInvalidScale is returned for fixed bounds with min above max
	ErrInvalidScale = errors.New("range_min must not be greater than range_max")
)

// LayoutGetter resolves a saved floorplan layout by id.
type LayoutGetter interface {
	Get(ctx context.Context, id string) (*models.Layout, error)
}

// ManagerConfig wires a Manager.
type ManagerConfig struct {
	Playback config.PlaybackConfig
	Heatmap  config.HeatmapConfig
	// Scheduler drives every session's ticks; real timers when nil
	Scheduler playback.Scheduler
}

// Manager owns all live playback sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	builder *Builder
	layouts LayoutGetter
	hub     Broadcaster
	cfg     ManagerConfig
	now     func() time.Time
}

// NewManager creates a Manager. layouts may be nil, in which case requests
// naming a layout fail with ErrNotFound from the lookup.
func NewManager(builder *Builder, layouts LayoutGetter, hub Broadcaster, cfg ManagerConfig) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		builder:  builder,
		layouts:  layouts,
		hub:      hub,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Create builds the timeline for req, starts a session playing it and
// returns the session.
func (m *Manager) Create(ctx context.Context, req *models.PlaybackSessionRequest) (*Session, error) {
	if m.Count() >= m.cfg.Playback.MaxSessions {
		return nil, ErrTooManySessions
	}

	opts, err := m.options(ctx, req)
	if err != nil {
		return nil, err
	}

	tl, err := m.builder.Build(ctx, &req.TimelineRequest)
	if err != nil {
		return nil, err
	}
	if len(tl.Buckets) == 0 {
		return nil, playback.ErrNoData
	}
	opts.IntervalMinutes = tl.Summary.IntervalMinutes

	s, err := newSession(uuid.New().String(), m.hub, opts, tl.Summary, m.now())
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if len(m.sessions) >= m.cfg.Playback.MaxSessions {
		m.mu.Unlock()
		return nil, ErrTooManySessions
	}
	m.sessions[s.id] = s
	n := len(m.sessions)
	m.mu.Unlock()
	metrics.PlaybackSessionsActive.Set(float64(n))

	if err := s.Start(tl.Buckets); err != nil {
		m.Delete(s.id)
		return nil, err
	}

	logging.Info().
		Str("session_id", s.id).
		Int("frames", len(tl.Buckets)).
		Int("interval_minutes", opts.IntervalMinutes).
		Int("interval_ms", opts.IntervalMs).
		Msg("Playback session started")
	return s, nil
}

// options resolves request overrides against the configured defaults.
func (m *Manager) options(ctx context.Context, req *models.PlaybackSessionRequest) (Options, error) {
	h := m.cfg.Heatmap

	metric, err := models.ParseMetric(firstNonEmpty(req.Metric, h.Metric))
	if err != nil {
		return Options{}, err
	}
	mode, err := models.ParseNormalizationMode(firstNonEmpty(req.Mode, h.Mode))
	if err != nil {
		return Options{}, err
	}

	fixed := models.NormalizationRange{Min: h.RangeMin, Max: h.RangeMax}
	if req.RangeMin != nil {
		fixed.Min = *req.RangeMin
	}
	if req.RangeMax != nil {
		fixed.Max = *req.RangeMax
	}
	if mode == models.NormalizationFixed && fixed.Inverted() {
		return Options{}, ErrInvalidScale
	}

	opts := Options{
		Scale:      normalize.Scale{Metric: metric, Mode: mode, Fixed: fixed},
		TopN:       firstPositive(req.TopN, h.TopN),
		Radius:     firstPositive(req.Radius, h.Radius),
		IntervalMs: firstPositive(req.IntervalMs, m.cfg.Playback.IntervalMs),
		Scheduler:  m.cfg.Scheduler,
	}

	if req.LayoutID != "" {
		if m.layouts == nil {
			return Options{}, fmt.Errorf("layout %s: %w", req.LayoutID, ErrNotFound)
		}
		layout, err := m.layouts.Get(ctx, req.LayoutID)
		if err != nil {
			return Options{}, err
		}
		opts.Layout = layout
	}
	return opts, nil
}

// Get returns the session with id
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete stops and removes a session. It reports whether the session existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return false
	}
	metrics.PlaybackSessionsActive.Set(float64(n))
	s.close("deleted")
	return true
}

// List returns every session ordered by creation time.
func (m *Manager) List() []models.PlaybackSession {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].createdAt.Equal(sessions[j].createdAt) {
			return sessions[i].createdAt.Before(sessions[j].createdAt)
		}
		return sessions[i].id < sessions[j].id
	})

	out := make([]models.PlaybackSession, len(sessions))
	for i, s := range sessions {
		out[i] = s.Status()
	}
	return out
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap removes sessions that are not playing and have not been driven by a
// client for the configured TTL. It returns how many were removed.
func (m *Manager) Reap(now time.Time) int {
	ttl := m.cfg.Playback.SessionTTL

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.State() == playback.Playing {
			continue
		}
		if now.Sub(s.IdleSince()) >= ttl {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		s.close("expired")
		logging.Info().Str("session_id", s.id).Msg("Reaped idle playback session")
	}
	if len(expired) > 0 {
		metrics.PlaybackSessionsReaped.Add(float64(len(expired)))
		metrics.PlaybackSessionsActive.Set(float64(n))
	}
	return len(expired)
}

// CloseAll stops every session, used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close("shutdown")
	}
	metrics.PlaybackSessionsActive.Set(0)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstPositive(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}
