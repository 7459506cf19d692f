// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package playback

import (
	"sync"
	"time"

	"github.com/tomtom215/dwellmap/internal/logging"
	"github.com/tomtom215/dwellmap/internal/models"
)

// Frame is one delivered bucket
type Frame struct {
	Index int
	Total int
	// Bucket and Previous must be treated as read-only. Previous is nil for
	// the first frame.
	Bucket   *models.TimeBucket
	Previous *models.TimeBucket
	Label    string
}

// Sink consumes delivered frames
type Sink interface {
	Deliver(f Frame)
	Clear()
}

// Config wires a Controller
type Config struct {
	IntervalMs int
	Scheduler  Scheduler
	Renderer   Sink
	Ranking    Sink
	// Label formats a bucket start time; RFC 3339 when nil
	Label func(time.Time) string
	// OnFinished runs when a tick exhausts the timeline
	OnFinished func()
}

// Status is a point-in-time view of a controller
type Status struct {
	State      State     `json:"state"`
	Index      int       `json:"index"`
	Total      int       `json:"total"`
	Seeking    bool      `json:"seeking"`
	IntervalMs int       `json:"interval_ms"`
	StartTime  time.Time `json:"start_time"`
}

// Controller drives frame delivery for one playback session
type Controller struct {
	mu       sync.Mutex
	cfg      Config
	interval time.Duration
	buckets  []models.TimeBucket
	index    int
	state    State
	seeking  bool
	tick     slot
}

// New validates cfg and returns an idle controller
func New(cfg Config) (*Controller, error) {
	if cfg.IntervalMs <= 0 {
		return nil, ErrInvalidConfiguration
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = RealScheduler{}
	}
	if cfg.Label == nil {
		cfg.Label = func(t time.Time) string { return t.Format(time.RFC3339) }
	}
	return &Controller{
		cfg:      cfg,
		interval: time.Duration(cfg.IntervalMs) * time.Millisecond,
		state:    Idle,
	}, nil
}

// Start begins playback from the first bucket. Any previous playback is
// replaced. With no buckets the controller returns to Idle and reports
// ErrNoData.
func (c *Controller) Start(buckets []models.TimeBucket) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(buckets) == 0 {
		if c.state != Idle {
			c.resetLocked()
		}
		return ErrNoData
	}

	c.tick.cancel()
	c.buckets = append([]models.TimeBucket(nil), buckets...)
	c.index = 0
	c.seeking = false
	c.state = Playing

	logging.Debug().Int("frames", len(c.buckets)).Int("interval_ms", c.cfg.IntervalMs).Msg("Playback started")

	c.deliverLocked()
	c.scheduleLocked()
	return nil
}

// Pause halts playback at the current frame. Only valid while Playing.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Playing {
		return
	}
	c.tick.cancel()
	c.state = Paused
}

// Resume continues from the displayed frame. Only valid while Paused.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Paused {
		return
	}
	c.state = Playing
	c.scheduleLocked()
}

// Stop cancels playback, clears both sinks and returns to Idle
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle {
		return
	}
	c.resetLocked()
}

// Seek displays the frame at index without changing the play state or the
// pending tick. Out of range indexes are ignored.
func (c *Controller) Seek(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seekableLocked() || index < 0 || index >= len(c.buckets) {
		return
	}
	c.index = index
	c.deliverLocked()
}

// BeginSeek marks the start of a seek gesture. Ticks stop advancing until
// EndSeek.
func (c *Controller) BeginSeek() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seekableLocked() {
		return
	}
	c.seeking = true
}

// EndSeek finishes a seek gesture at index and lets ticks advance again
// from there. An out of range index only clears the gesture.
func (c *Controller) EndSeek(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seeking {
		return
	}
	c.seeking = false
	if index < 0 || index >= len(c.buckets) {
		return
	}
	c.index = index
	c.deliverLocked()
}

// SetInterval changes the cadence. It applies from the next scheduled tick.
func (c *Controller) SetInterval(intervalMs int) error {
	if intervalMs <= 0 {
		return ErrInvalidConfiguration
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cfg.IntervalMs = intervalMs
	c.interval = time.Duration(intervalMs) * time.Millisecond
	return nil
}

// Status returns a snapshot of the controller
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		State:      c.state,
		Index:      c.index,
		Total:      len(c.buckets),
		Seeking:    c.seeking,
		IntervalMs: c.cfg.IntervalMs,
	}
	if c.index < len(c.buckets) {
		st.StartTime = c.buckets[c.index].StartTime
	}
	return st
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) seekableLocked() bool {
	return len(c.buckets) > 0 && (c.state == Playing || c.state == Paused || c.state == Finished)
}

func (c *Controller) scheduleLocked() {
	c.tick.arm(c.cfg.Scheduler, c.interval, c.onTick)
}

func (c *Controller) onTick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.tick.current(gen) || c.state != Playing {
		return
	}
	c.tick.clear()

	if c.seeking {
		c.scheduleLocked()
		return
	}

	next := c.index + 1
	if next >= len(c.buckets) {
		c.state = Finished
		logging.Debug().Int("frames", len(c.buckets)).Msg("Playback finished")
		if c.cfg.OnFinished != nil {
			c.cfg.OnFinished()
		}
		return
	}

	c.index = next
	c.deliverLocked()
	c.scheduleLocked()
}

func (c *Controller) deliverLocked() {
	f := Frame{
		Index:  c.index,
		Total:  len(c.buckets),
		Bucket: &c.buckets[c.index],
		Label:  c.cfg.Label(c.buckets[c.index].StartTime),
	}
	if c.index > 0 {
		f.Previous = &c.buckets[c.index-1]
	}

	if c.cfg.Renderer != nil {
		c.cfg.Renderer.Deliver(f)
	}
	if c.cfg.Ranking != nil {
		c.cfg.Ranking.Deliver(f)
	}
}

// resetLocked passes through Stopped on the way back to Idle
func (c *Controller) resetLocked() {
	c.tick.cancel()
	c.state = Stopped
	c.index = 0
	c.seeking = false

	if c.cfg.Renderer != nil {
		c.cfg.Renderer.Clear()
	}
	if c.cfg.Ranking != nil {
		c.cfg.Ranking.Clear()
	}

	logging.Debug().Msg("Playback stopped")
	c.state = Idle
}
