// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package models

import (
	"time"
)

// PresenceRecord is a single enter/exit observation of a person in an area.
// ExitTime is expected to be after EnterTime. DurationSeconds is optional;
// when nil the duration is derived from the enter and exit timestamps.
type PresenceRecord struct {
	AreaID          int64     `json:"area_id"`
	AreaName        string    `json:"area_name"`
	AreaNumber      *string   `json:"area_number,omitempty"`
	PersonID        string    `json:"person_id"`
	EnterTime       time.Time `json:"enter_time"`
	ExitTime        time.Time `json:"exit_time"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
}

// Duration returns the dwell time in seconds. A supplied DurationSeconds wins
// over the timestamps; a non-positive derived duration counts as zero.
func (r *PresenceRecord) Duration() float64 {
	if r.DurationSeconds != nil {
		if *r.DurationSeconds < 0 {
			return 0
		}
		return *r.DurationSeconds
	}
	if r.ExitTime.After(r.EnterTime) {
		return r.ExitTime.Sub(r.EnterTime).Seconds()
	}
	return 0
}

// Area is a distinct region known to the presence store
type Area struct {
	ID     int64   `json:"area_id"`
	Name   string  `json:"area_name"`
	Number *string `json:"area_number,omitempty"`
}

// AreaSummary is the per-area aggregate over a whole query window
type AreaSummary struct {
	AreaID               int64   `json:"area_id"`
	AreaName             string  `json:"area_name"`
	AreaNumber           *string `json:"area_number,omitempty"`
	VisitCount           int     `json:"visit_count"`
	TotalDurationMinutes float64 `json:"total_duration_minutes"`
	AvgDurationMinutes   float64 `json:"avg_duration_minutes"`
}

// PresenceQuery selects records for a set of areas in a half-open
// [Start, End) window with an exclusive duration band in seconds.
type PresenceQuery struct {
	AreaIDs            []int64   `json:"area_ids" validate:"required,min=1,dive,gt=0"`
	Start              time.Time `json:"start" validate:"required"`
	End                time.Time `json:"end" validate:"required,gtfield=Start"`
	MinDurationSeconds float64   `json:"min_duration_seconds" validate:"gte=0"`
	MaxDurationSeconds float64   `json:"max_duration_seconds" validate:"gtfield=MinDurationSeconds"`
}
