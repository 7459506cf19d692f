// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package playback

import (
	"sort"
	"sync"
	"time"
)

// ManualScheduler is a Scheduler driven by Advance, for deterministic tests
// and offline rendering.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	owner    *ManualScheduler
	due      time.Duration
	seq      uint64
	fn       func()
	canceled bool
	fired    bool
}

// NewManualScheduler returns a scheduler at virtual time zero
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc registers fn to run once virtual time reaches now+d
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &manualTask{owner: s, due: s.now + d, seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

func (t *manualTask) Cancel() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()

	if t.canceled || t.fired {
		return false
	}
	t.canceled = true
	return true
}

// Advance moves virtual time forward by d, running every task that comes
// due in order. Tasks scheduled by running callbacks fire in the same call
// if they fall inside the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.nextDueLocked(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		next.fired = true
		s.now = next.due
		s.mu.Unlock()

		next.fn()
	}
}

// Pending counts tasks that are neither canceled nor fired
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.tasks {
		if !t.canceled && !t.fired {
			n++
		}
	}
	return n
}

// Now returns the virtual elapsed time
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *ManualScheduler) nextDueLocked(target time.Duration) *manualTask {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.canceled && !t.fired {
			live = append(live, t)
		}
	}
	s.tasks = live

	sort.Slice(s.tasks, func(i, j int) bool {
		if s.tasks[i].due != s.tasks[j].due {
			return s.tasks[i].due < s.tasks[j].due
		}
		return s.tasks[i].seq < s.tasks[j].seq
	})

	if len(s.tasks) == 0 || s.tasks[0].due > target {
		return nil
	}
	return s.tasks[0]
}
