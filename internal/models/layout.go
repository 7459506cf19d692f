// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package models

import (
	"time"
)

// Point is a floorplan pixel coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Region is a polygon drawn over the floorplan. One region may cover
// several store areas whose metrics are merged when rendered.
type Region struct {
	Name    string  `json:"name" validate:"max=200"`
	Color   string  `json:"color,omitempty" validate:"omitempty,max=32"`
	AreaIDs []int64 `json:"area_ids" validate:"required,min=1,dive,gt=0"`
	Polygon []Point `json:"polygon" validate:"min=3"`
}

// Layout is a named, saved set of regions for one floorplan image
type Layout struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,min=1,max=200"`
	Floorplan string    `json:"floorplan,omitempty" validate:"max=1024"`
	Regions   []Region  `json:"regions" validate:"required,min=1,dive"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
