// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package models

// TimelineRequest is the body of POST /api/v1/timeline. When Records is
// non-empty the records are bucketed as given and Query is ignored, so Query
// is validated on its own by the handler.
type TimelineRequest struct {
	Query           PresenceQuery    `json:"query" validate:"-"`
	Records         []PresenceRecord `json:"records,omitempty"`
	IntervalMinutes int              `json:"interval_minutes" validate:"omitempty,gt=0"`
	FillGaps        *bool            `json:"fill_gaps,omitempty"`
}

// HeatScaleRequest selects the metric and normalization for frames.
// Zero values fall back to the configured defaults.
type HeatScaleRequest struct {
	Metric   string   `json:"metric,omitempty" validate:"metric"`
	Mode     string   `json:"mode,omitempty" validate:"normmode"`
	RangeMin *float64 `json:"range_min,omitempty"`
	RangeMax *float64 `json:"range_max,omitempty"`
	Radius   int      `json:"radius,omitempty" validate:"gte=0,lte=500"`
	TopN     int      `json:"top_n,omitempty" validate:"gte=0,lte=100"`
}

// PlaybackSessionRequest is the body of POST /api/v1/playback/sessions.
type PlaybackSessionRequest struct {
	TimelineRequest
	HeatScaleRequest
	IntervalMs int    `json:"interval_ms,omitempty" validate:"gte=0,lte=60000"`
	LayoutID   string `json:"layout_id,omitempty" validate:"omitempty,uuid"`
}

// SeekRequest moves playback to a bucket index.
type SeekRequest struct {
	Index int `json:"index" validate:"gte=0"`
}

// IntervalRequest changes the playback cadence.
type IntervalRequest struct {
	IntervalMs int `json:"interval_ms" validate:"gt=0,lte=60000"`
}

// PlaybackSession describes a live playback session.
type PlaybackSession struct {
	ID              string           `json:"id"`
	State           string           `json:"state"`
	Index           int              `json:"index"`
	Total           int              `json:"total"`
	Seeking         bool             `json:"seeking"`
	IntervalMs      int              `json:"interval_ms"`
	IntervalMinutes int              `json:"interval_minutes"`
	Metric          Metric           `json:"metric"`
	LayoutID        string           `json:"layout_id,omitempty"`
	Summary         *TimelineSummary `json:"summary,omitempty"`
}
