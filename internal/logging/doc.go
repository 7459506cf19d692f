// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

// Package logging provides the process-wide zerolog logger.
//
// Initialize once at startup from configuration:
//
//	logging.Init(logging.Config{
//	    Level:  cfg.Logging.Level,
//	    Format: cfg.Logging.Format,
//	    Caller: cfg.Logging.Caller,
//	})
//
// then log with the package helpers:
//
//	logging.Info().Str("session_id", id).Int("frames", n).Msg("Playback session created")
//	logging.Error().Err(err).Msg("Failed to fetch presence records")
//
// Request and playback session ids travel in the context; Ctx adds them as
// fields. NewSlogLogger adapts the logger for libraries that expect
// log/slog, such as the suture supervisor hook.
//
// Tests silence output with:
//
//	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
package logging
