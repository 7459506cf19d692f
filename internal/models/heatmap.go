// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package models

import (
	"fmt"
	"math"
	"time"
)

// Metric selects which aggregate scalar drives coloring and ranking
type Metric string

const (
	MetricVisitCount           Metric = "visitCount"
	MetricTotalDurationMinutes Metric = "totalDurationMinutes"
	MetricAvgDurationMinutes   Metric = "avgDurationMinutes"
)

// ParseMetric validates a metric name
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case MetricVisitCount, MetricTotalDurationMinutes, MetricAvgDurationMinutes:
		return m, nil
	default:
		return "", fmt.Errorf("unknown metric %q", s)
	}
}

// Value extracts the metric from an aggregate. A nil aggregate yields 0.
func (m Metric) Value(agg *RegionAggregate) float64 {
	if agg == nil {
		return 0
	}
	switch m {
	case MetricTotalDurationMinutes:
		return agg.TotalDurationMinutes
	case MetricAvgDurationMinutes:
		return agg.AvgDurationMinutes()
	default:
		return float64(agg.VisitCount)
	}
}

// NormalizationMode picks how a NormalizationRange is obtained
type NormalizationMode string

const (
	// NormalizationFixed uses operator-supplied bounds
	NormalizationFixed NormalizationMode = "fixed"
	// NormalizationRelative derives bounds from the displayed frame
	NormalizationRelative NormalizationMode = "relative"
)

// ParseNormalizationMode validates a mode name
func ParseNormalizationMode(s string) (NormalizationMode, error) {
	switch m := NormalizationMode(s); m {
	case NormalizationFixed, NormalizationRelative:
		return m, nil
	default:
		return "", fmt.Errorf("unknown normalization mode %q", s)
	}
}

// NormalizationRange bounds raw metric values for scaling onto [0,1]
type NormalizationRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Degenerate reports whether the range has no usable width
func (r NormalizationRange) Degenerate() bool {
	return !(r.Max > r.Min)
}

// Inverted reports whether the bounds are unusable as a fixed range: min
// above max, or either bound NaN. Equal bounds are a valid "no signal"
// range.
func (r NormalizationRange) Inverted() bool {
	return math.IsNaN(r.Min) || math.IsNaN(r.Max) || r.Min > r.Max
}

// HeatPoint is a weighted point handed to the heatmap renderer
type HeatPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value float64 `json:"value"`
}

// RegionHeat is the normalized state of one region in a displayed frame
type RegionHeat struct {
	AreaID     int64   `json:"area_id"`
	AreaName   string  `json:"area_name"`
	Value      float64 `json:"value"`
	Normalized float64 `json:"normalized"`
	Heat       float64 `json:"heat"`
	Level      string  `json:"level"`
}

// RankingEntry is one row of the busiest-regions leaderboard
type RankingEntry struct {
	Rank                 int     `json:"rank"`
	AreaName             string  `json:"area_name"`
	AreaNumber           *string `json:"area_number,omitempty"`
	VisitCount           int     `json:"visit_count"`
	TotalDurationMinutes float64 `json:"total_duration_minutes"`
	AvgDurationMinutes   float64 `json:"avg_duration_minutes"`
	Value                float64 `json:"value"`
	BarPercent           float64 `json:"bar_percent"`
}

// Ranking is the leaderboard for a single frame
type Ranking struct {
	Metric               Metric         `json:"metric"`
	Entries              []RankingEntry `json:"entries"`
	TotalVisits          int            `json:"total_visits"`
	TotalDurationMinutes float64        `json:"total_duration_minutes"`
}

// FrameChange compares a region's metric with the previous frame
type FrameChange struct {
	AreaID        int64   `json:"area_id"`
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	ChangePercent float64 `json:"change_percent"`
}

// Frame is what a playback viewer receives for one delivered bucket
type Frame struct {
	SessionID string            `json:"session_id"`
	Index     int               `json:"index"`
	Total     int               `json:"total"`
	StartTime time.Time         `json:"start_time"`
	Label     string            `json:"label"`
	Regions   []RegionAggregate `json:"regions"`
	Heat      []RegionHeat      `json:"heat"`
	Points    []HeatPoint       `json:"points,omitempty"`
	Ranking   Ranking           `json:"ranking"`
	Changes   []FrameChange     `json:"changes,omitempty"`
}
