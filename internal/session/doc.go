// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

// Package session runs playback sessions for API clients.
//
// A Builder turns a presence query (or supplied records) into buckets. The
// Manager starts a Session per request; each session owns a
// playback.Controller whose renderer and ranking sinks assemble a
// models.Frame and publish it to the websocket hub tagged with the session
// id. Sessions that are not playing and have not been touched for the
// configured TTL are removed by Reap, which the supervisor calls
// periodically.
package session
