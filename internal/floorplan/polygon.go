// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

// Package floorplan turns per-area heat values into weighted points placed
// inside the polygons drawn over a floorplan image.
package floorplan

import (
	"math"

	"github.com/tomtom215/dwellmap/internal/models"
)

const (
	minGridSize      = 5
	gridRadiusFactor = 0.4
	minGridPoints    = 3
)

// Contains reports whether p lies inside polygon using ray casting.
// Points exactly on an edge may fall either way.
func Contains(polygon []models.Point, p models.Point) bool {
	inside := false
	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		xi, yi := polygon[i].X, polygon[i].Y
		xj, yj := polygon[j].X, polygon[j].Y

		if (yi > p.Y) != (yj > p.Y) && p.X < (xj-xi)*(p.Y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Centroid returns the vertex average of polygon
func Centroid(polygon []models.Point) models.Point {
	if len(polygon) == 0 {
		return models.Point{}
	}
	var c models.Point
	for _, p := range polygon {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(polygon))
	return models.Point{X: c.X / n, Y: c.Y / n}
}

// GridSize is the spacing between sample points for a renderer radius
func GridSize(radius int) float64 {
	return math.Max(minGridSize, math.Floor(float64(radius)*gridRadiusFactor))
}

// Fill samples a grid over the polygon's bounding box and keeps the points
// inside it, each carrying value. The grid has at least 3x3 cells. A polygon
// too thin to contain any grid point gets a single point at its centroid.
func Fill(polygon []models.Point, radius int, value float64) []models.HeatPoint {
	if len(polygon) == 0 {
		return nil
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range polygon {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	width, height := maxX-minX, maxY-minY

	grid := GridSize(radius)
	nx := int(math.Max(minGridPoints, math.Ceil(width/grid)))
	ny := int(math.Max(minGridPoints, math.Ceil(height/grid)))

	var points []models.HeatPoint
	for i := 0; i <= nx; i++ {
		for j := 0; j <= ny; j++ {
			p := models.Point{
				X: minX + width*float64(i)/float64(nx),
				Y: minY + height*float64(j)/float64(ny),
			}
			if Contains(polygon, p) {
				points = append(points, models.HeatPoint{X: math.Floor(p.X), Y: math.Floor(p.Y), Value: value})
			}
		}
	}

	if len(points) == 0 {
		c := Centroid(polygon)
		points = append(points, models.HeatPoint{X: math.Floor(c.X), Y: math.Floor(c.Y), Value: value})
	}
	return points
}
