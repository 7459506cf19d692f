// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package normalize

import (
	"github.com/tomtom215/dwellmap/internal/models"
)

// Scale is the operator's choice of metric and normalization for a session
type Scale struct {
	Metric models.Metric
	Mode   models.NormalizationMode
	// Fixed bounds, used when Mode is NormalizationFixed
	Fixed models.NormalizationRange
}

// Range returns the normalization range for a frame's aggregates
func (s Scale) Range(regions []*models.RegionAggregate) models.NormalizationRange {
	if s.Mode == models.NormalizationRelative {
		return RelativeRange(regions, s.Metric)
	}
	return s.Fixed
}

// Heat normalizes every aggregate of a frame. Normalized and Heat follow the
// scale's mode; Level always uses the frame-relative range so indicators
// compare regions within the frame.
func (s Scale) Heat(regions []*models.RegionAggregate) []models.RegionHeat {
	r := s.Range(regions)
	relative := RelativeRange(regions, s.Metric)

	out := make([]models.RegionHeat, 0, len(regions))
	for _, agg := range regions {
		v := s.Metric.Value(agg)
		n := Normalize(v, r, s.Mode)
		out = append(out, models.RegionHeat{
			AreaID:     agg.AreaID,
			AreaName:   agg.AreaName,
			Value:      v,
			Normalized: n,
			Heat:       HeatValue(n),
			Level:      Level(Normalize(v, relative, models.NormalizationRelative)),
		})
	}
	return out
}
