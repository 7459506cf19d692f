// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package playback

import (
	"time"
)

// Task is a handle to a scheduled callback
type Task interface {
	// Cancel prevents the callback from running if it has not started.
	// It reports whether the call stopped the task.
	Cancel() bool
}

// Scheduler runs a callback once after a delay
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
}

// RealScheduler schedules callbacks on the runtime timer
type RealScheduler struct{}

// AfterFunc wraps time.AfterFunc
func (RealScheduler) AfterFunc(d time.Duration, fn func()) Task {
	return realTask{timer: time.AfterFunc(d, fn)}
}

type realTask struct {
	timer *time.Timer
}

func (t realTask) Cancel() bool {
	return t.timer.Stop()
}

// slot holds the single outstanding tick. Scheduling always cancels the
// previous task, and the generation lets a callback detect it was replaced.
type slot struct {
	task Task
	gen  uint64
}

// arm cancels any pending task and schedules fn with the new generation
func (s *slot) arm(sched Scheduler, d time.Duration, fn func(gen uint64)) {
	s.cancel()
	gen := s.gen
	s.task = sched.AfterFunc(d, func() { fn(gen) })
}

// cancel stops the pending task and invalidates its generation
func (s *slot) cancel() {
	if s.task != nil {
		s.task.Cancel()
		s.task = nil
	}
	s.gen++
}

// current reports whether gen still identifies the pending task
func (s *slot) current(gen uint64) bool {
	return s.task != nil && s.gen == gen
}

// clear forgets the task after it fired
func (s *slot) clear() {
	s.task = nil
}
