// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package playback

import (
	"errors"
)

// State is the playback lifecycle position
type State int

const (
	Idle State = iota
	Playing
	Paused
	Stopped
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	// ErrNoData is returned by Start when there are no buckets to play
	ErrNoData = errors.New("no data to play back")

	// ErrInvalidConfiguration is returned for a non-positive frame interval
	ErrInvalidConfiguration = errors.New("playback interval must be a positive number of milliseconds")
)
