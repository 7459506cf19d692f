// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

/*
Package websocket pushes playback frames to connected browsers.

It uses gorilla/websocket with a hub-and-spoke layout: a single Hub goroutine
owns the client set and fans messages out, and each Client runs a read pump
and a write pump.

	┌──────────┐
	│   Hub    │ ← session-tagged messages
	└────┬─────┘
	     │
	┌────┴─────┬─────────┬─────────┐
	│ Client1  │ Client2 │ Client3 │
	└──────────┴─────────┴─────────┘

Message Types:

  - playback_frame: one rendered frame (heat, ranking, points)
  - playback_cleared: the session was stopped and displays should clear
  - playback_finished: the last frame was shown
  - playback_state: state changed without a new frame (pause, resume)
  - session_closed: the session was deleted or reaped
  - ping / pong: application-level keepalive

Subscriptions:

A client connecting to /api/v1/ws?session_id=<id> only receives messages for
that session. Clients may also send

	{"type": "subscribe", "session_id": "<id>"}
	{"type": "unsubscribe", "session_id": "<id>"}

A client with no subscriptions receives everything.

Backpressure:

Each client has a 256 message buffer. A client that falls behind is
disconnected instead of slowing the hub, and a full hub queue drops the
message and counts it in websocket_messages_dropped_total.
*/
package websocket
