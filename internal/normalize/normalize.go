// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

// Package normalize maps raw region metrics onto bounded scales for heat
// coloring, region levels, frame-to-frame comparison and ranking.
package normalize

import (
	"math"

	"github.com/tomtom215/dwellmap/internal/models"
)

// Normalize scales value into [0,1] against r. A degenerate range yields 0
// in fixed mode (no signal) and 0.5 in relative mode (all values tied).
func Normalize(value float64, r models.NormalizationRange, mode models.NormalizationMode) float64 {
	if r.Degenerate() || math.IsNaN(value) {
		if mode == models.NormalizationRelative {
			return 0.5
		}
		return 0
	}
	return clamp((value-r.Min)/(r.Max-r.Min), 0, 1)
}

// RelativeRange returns the min and max of metric over the given
// aggregates. An empty frame yields the zero range.
func RelativeRange(regions []*models.RegionAggregate, metric models.Metric) models.NormalizationRange {
	if len(regions) == 0 {
		return models.NormalizationRange{}
	}
	r := models.NormalizationRange{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, agg := range regions {
		v := metric.Value(agg)
		if v < r.Min {
			r.Min = v
		}
		if v > r.Max {
			r.Max = v
		}
	}
	return r
}

// HeatValue converts a normalized value into the 0..100 renderer weight
func HeatValue(normalized float64) float64 {
	return clamp(normalized, 0, 1) * 100
}

// Heat levels for region list indicators
const (
	LevelVeryHigh = "very_high"
	LevelHigh     = "high"
	LevelMedium   = "medium"
	LevelLow      = "low"
	LevelVeryLow  = "very_low"
)

// Level buckets a normalized value into a coarse indicator
func Level(normalized float64) string {
	switch {
	case normalized >= 0.8:
		return LevelVeryHigh
	case normalized >= 0.6:
		return LevelHigh
	case normalized >= 0.4:
		return LevelMedium
	case normalized >= 0.2:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
