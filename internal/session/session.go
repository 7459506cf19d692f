// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package session

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/dwellmap/internal/metrics"
	"github.com/tomtom215/dwellmap/internal/models"
	"github.com/tomtom215/dwellmap/internal/normalize"
	"github.com/tomtom215/dwellmap/internal/playback"
	"github.com/tomtom215/dwellmap/internal/timeline"
	"github.com/tomtom215/dwellmap/internal/websocket"
)

// Seek previews during a drag gesture are limited per session so a
// scrubbing client cannot flood the hub with frames.
const (
	PreviewRate  = 20
	PreviewBurst = 4
)

// Broadcaster publishes session-tagged messages to watchers.
type Broadcaster interface {
	BroadcastSession(sessionID, messageType string, data interface{})
}

// Options describe how a session renders its frames.
type Options struct {
	Scale           normalize.Scale
	TopN            int
	Radius          int
	Layout          *models.Layout
	IntervalMs      int
	IntervalMinutes int
	Scheduler       playback.Scheduler
}

// Session is one playback of a bucketed timeline. It owns a
// playback.Controller whose two sinks assemble and publish frames.
type Session struct {
	id      string
	ctrl    *playback.Controller
	hub     Broadcaster
	opts    Options
	summary models.TimelineSummary
	preview *rate.Limiter

	createdAt  time.Time
	lastActive atomic.Int64

	// guarded by mu; written by the sinks under the controller lock
	mu        sync.Mutex
	pending   *models.Frame
	last      *models.Frame
	lastIndex int
}

func newSession(id string, hub Broadcaster, opts Options, summary models.TimelineSummary, now time.Time) (*Session, error) {
	s := &Session{
		id:        id,
		hub:       hub,
		opts:      opts,
		summary:   summary,
		preview:   rate.NewLimiter(rate.Limit(PreviewRate), PreviewBurst),
		createdAt: now,
		lastIndex: -1,
	}
	s.lastActive.Store(now.UnixNano())

	ctrl, err := playback.New(playback.Config{
		IntervalMs: opts.IntervalMs,
		Scheduler:  opts.Scheduler,
		Renderer:   &rendererSink{s: s},
		Ranking:    &rankingSink{s: s},
		Label: func(t time.Time) string {
			return timeline.Label(t, opts.IntervalMinutes)
		},
		OnFinished: s.finished,
	})
	if err != nil {
		return nil, err
	}
	s.ctrl = ctrl
	return s, nil
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Start plays buckets from the first frame.
func (s *Session) Start(buckets []models.TimeBucket) error {
	return s.transition(func() error { return s.ctrl.Start(buckets) })
}

// Pause halts playback at the displayed frame.
func (s *Session) Pause() {
	_ = s.transition(func() error { s.ctrl.Pause(); return nil })
}

// Resume continues from the displayed frame.
func (s *Session) Resume() {
	_ = s.transition(func() error { s.ctrl.Resume(); return nil })
}

// Stop clears watchers' displays and returns the session to idle.
func (s *Session) Stop() {
	_ = s.transition(func() error { s.ctrl.Stop(); return nil })
}

// Seek shows the frame at index. During a seek gesture previews are rate
// limited; a dropped preview returns false.
func (s *Session) Seek(index int) bool {
	s.touch()
	if s.ctrl.Status().Seeking && !s.preview.Allow() {
		return false
	}
	s.ctrl.Seek(index)
	return true
}

// BeginSeek starts a seek gesture.
func (s *Session) BeginSeek() {
	s.touch()
	s.ctrl.BeginSeek()
}

// EndSeek finishes a seek gesture at index. It is never rate limited.
func (s *Session) EndSeek(index int) {
	s.touch()
	s.ctrl.EndSeek(index)
}

// SetInterval changes the frame cadence.
func (s *Session) SetInterval(intervalMs int) error {
	s.touch()
	return s.ctrl.SetInterval(intervalMs)
}

// State returns the controller state
func (s *Session) State() playback.State {
	return s.ctrl.State()
}

// Status describes the session for API responses.
func (s *Session) Status() models.PlaybackSession {
	st := s.ctrl.Status()
	summary := s.summary
	out := models.PlaybackSession{
		ID:              s.id,
		State:           st.State.String(),
		Index:           st.Index,
		Total:           st.Total,
		Seeking:         st.Seeking,
		IntervalMs:      st.IntervalMs,
		IntervalMinutes: s.opts.IntervalMinutes,
		Metric:          s.opts.Scale.Metric,
		Summary:         &summary,
	}
	if s.opts.Layout != nil {
		out.LayoutID = s.opts.Layout.ID
	}
	return out
}

// Frame returns the most recently published frame, or nil after a clear.
func (s *Session) Frame() *models.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// IdleSince reports when the session was last driven by a client.
func (s *Session) IdleSince() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// close stops playback and tells watchers the session is gone.
func (s *Session) close(reason string) {
	s.ctrl.Stop()
	s.hub.BroadcastSession(s.id, websocket.MessageTypeSessionClosed, map[string]string{"reason": reason})
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// transition runs op and announces the new state when it changed.
func (s *Session) transition(op func() error) error {
	s.touch()
	before := s.ctrl.State()
	err := op()
	after := s.ctrl.Status()
	if after.State != before {
		metrics.PlaybackTransitions.WithLabelValues(after.State.String()).Inc()
		s.hub.BroadcastSession(s.id, websocket.MessageTypePlaybackState, after)
	}
	return err
}

// finished runs under the controller lock and must not call back into it.
func (s *Session) finished() {
	metrics.PlaybackTransitions.WithLabelValues(playback.Finished.String()).Inc()

	s.mu.Lock()
	index := s.lastIndex
	s.mu.Unlock()

	s.hub.BroadcastSession(s.id, websocket.MessageTypePlaybackFinished, map[string]int{
		"index": index,
		"total": s.summary.BucketCount,
	})
}
