// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package floorplan

import (
	"testing"

	"github.com/tomtom215/dwellmap/internal/models"
)

var square = []models.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}

func TestContains(t *testing.T) {
	triangle := []models.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}

	tests := []struct {
		name    string
		polygon []models.Point
		p       models.Point
		want    bool
	}{
		{"square center", square, models.Point{X: 50, Y: 50}, true},
		{"square outside", square, models.Point{X: 150, Y: 50}, false},
		{"triangle inside", triangle, models.Point{X: 2, Y: 2}, true},
		{"triangle beyond hypotenuse", triangle, models.Point{X: 8, Y: 8}, false},
		{"empty polygon", nil, models.Point{X: 1, Y: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(tt.polygon, tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestCentroid(t *testing.T) {
	if c := Centroid(square); c.X != 50 || c.Y != 50 {
		t.Errorf("Expected (50,50), got %+v", c)
	}
	if c := Centroid(nil); c != (models.Point{}) {
		t.Errorf("Expected zero point, got %+v", c)
	}
}

func TestGridSize(t *testing.T) {
	tests := map[int]float64{0: 5, 10: 5, 50: 20, 51: 20, 100: 40}
	for radius, want := range tests {
		if got := GridSize(radius); got != want {
			t.Errorf("GridSize(%d) = %v, want %v", radius, got, want)
		}
	}
}

func TestFill_PointsInsidePolygon(t *testing.T) {
	points := Fill(square, 50, 42)
	if len(points) == 0 {
		t.Fatal("Expected points inside the square")
	}
	for _, p := range points {
		if p.Value != 42 {
			t.Fatalf("Expected value 42, got %v", p.Value)
		}
		if p.X < 0 || p.X > 100 || p.Y < 0 || p.Y > 100 {
			t.Fatalf("Point %+v outside bounding box", p)
		}
	}

	// A 100px square with 20px grid samples a 6x6 lattice; interior 4x4 plus
	// the lower/left edges that the ray cast counts as inside.
	if len(points) < 16 {
		t.Errorf("Expected at least 16 points, got %d", len(points))
	}
}

func TestFill_CentroidFallback(t *testing.T) {
	sliver := []models.Point{{X: 10, Y: 10}, {X: 11, Y: 10}, {X: 10.5, Y: 10.2}}
	points := Fill(sliver, 50, 7)
	if len(points) == 0 {
		t.Fatal("Expected at least the centroid point")
	}
	if len(points) == 1 && (points[0].X != 10 || points[0].Y != 10) {
		t.Errorf("Expected centroid fallback at (10,10), got %+v", points[0])
	}

	if Fill(nil, 50, 1) != nil {
		t.Error("Expected no points for an empty polygon")
	}
}

func TestPoints(t *testing.T) {
	layout := &models.Layout{
		Name: "Ground floor",
		Regions: []models.Region{
			{Name: "Front", AreaIDs: []int64{1, 2}, Polygon: square},
			{Name: "Back", AreaIDs: []int64{3}, Polygon: []models.Point{{X: 200, Y: 0}, {X: 300, Y: 0}, {X: 300, Y: 100}, {X: 200, Y: 100}}},
		},
	}
	weights := []RegionWeight{
		{Region: 0, Heat: 80},
		{Region: 1, Heat: 20},
		{Region: 2, Heat: 99},
		{Region: -1, Heat: 99},
	}

	points := Points(layout, weights, 50)

	var front, back int
	for _, p := range points {
		switch {
		case p.Value == 99:
			t.Fatal("Weight outside the layout must be skipped")
		case p.X <= 100:
			front++
			if p.Value != 80 {
				t.Fatalf("Front point has value %v", p.Value)
			}
		default:
			back++
			if p.Value != 20 {
				t.Fatalf("Back point has value %v", p.Value)
			}
		}
	}
	if front == 0 || back == 0 {
		t.Errorf("Expected points in both regions, got %d/%d", front, back)
	}

	if Points(nil, weights, 50) != nil {
		t.Error("Expected nil points without a layout")
	}
}
