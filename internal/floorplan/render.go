// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package floorplan

import (
	"github.com/tomtom215/dwellmap/internal/models"
)

// RegionWeight is the 0..100 heat weight of one drawn region. Region
// indexes layout.Regions.
type RegionWeight struct {
	Region int
	Heat   float64
}

// Points places heat points inside each weighted region's polygon. Weights
// whose index falls outside the layout are skipped.
func Points(layout *models.Layout, weights []RegionWeight, radius int) []models.HeatPoint {
	if layout == nil {
		return nil
	}

	var points []models.HeatPoint
	for _, w := range weights {
		if w.Region < 0 || w.Region >= len(layout.Regions) {
			continue
		}
		points = append(points, Fill(layout.Regions[w.Region].Polygon, radius, w.Heat)...)
	}
	return points
}
