// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package playback

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestRealScheduler_NoDeliveryAfterStop hammers start/stop against real
// timers and checks nothing is delivered once Stop has returned.
func TestRealScheduler_NoDeliveryAfterStop(t *testing.T) {
	var stopped atomic.Bool
	var late atomic.Int32

	sink := sinkFunc(func(Frame) {
		if stopped.Load() {
			late.Add(1)
		}
	})

	ctrl, err := New(Config{IntervalMs: 1, Renderer: sink})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i := 0; i < 50; i++ {
		stopped.Store(false)
		if err := ctrl.Start(makeBuckets(100)); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		time.Sleep(time.Duration(i%4) * time.Millisecond)
		ctrl.Stop()
		stopped.Store(true)
		time.Sleep(2 * time.Millisecond)
	}

	if n := late.Load(); n != 0 {
		t.Fatalf("%d frames delivered after Stop returned", n)
	}
}

func TestRealScheduler_ConcurrentControls(t *testing.T) {
	ctrl, err := New(Config{IntervalMs: 1, Renderer: &recordingSink{}, Ranking: &recordingSink{}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := ctrl.Start(makeBuckets(500)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				switch (i + g) % 5 {
				case 0:
					ctrl.Pause()
				case 1:
					ctrl.Resume()
				case 2:
					ctrl.Seek(i)
				case 3:
					ctrl.BeginSeek()
				case 4:
					ctrl.EndSeek(i)
				}
			}
		}(g)
	}
	wg.Wait()

	ctrl.Stop()
	if ctrl.State() != Idle {
		t.Fatalf("Expected Idle after Stop, got %s", ctrl.State())
	}
}
