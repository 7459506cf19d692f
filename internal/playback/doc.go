// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

/*
Package playback steps through an ordered sequence of time buckets and
delivers one frame at a time to a renderer and a ranking sink.

State machine:

	Idle ──Start──▶ Playing ──Pause──▶ Paused
	                  │  ▲               │
	                  │  └────Resume─────┘
	                  ▼
	               Finished          (index exhausted by a tick)

	Stop: any non-Idle state ──▶ Idle (sinks cleared, index reset)
	Start: Idle, Finished or any other state ──▶ Playing (restart)

Start delivers frame 0 immediately and schedules the next tick after the
configured interval. Each tick advances the index by one and delivers that
frame, or moves to Finished when the last frame is already displayed.

Seek jumps to a frame without touching the play state or the pending tick.
A seek gesture is bracketed by BeginSeek and EndSeek; while it is active,
ticks keep the cadence but neither advance the index nor deliver, so a burst
of seek events never races the timer.

Timing goes through a Scheduler. The controller holds at most one pending
Task; every (re)schedule cancels the previous task first and every task
carries a generation number, so a tick that lost a race with Pause or Stop
finds itself stale and does nothing. Once Pause or Stop returns no frame
from an earlier schedule is delivered.

Sinks and the finished callback run with the controller lock held and must
not call back into the controller.
*/
package playback
