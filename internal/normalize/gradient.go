// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package normalize

// GradientStop is one color stop of the heat gradient, Offset in [0,1]
type GradientStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// RendererOptions describes how a heat renderer should paint weights
type RendererOptions struct {
	Radius     int            `json:"radius"`
	Max        float64        `json:"max"`
	Min        float64        `json:"min"`
	MaxOpacity float64        `json:"max_opacity"`
	MinOpacity float64        `json:"min_opacity"`
	Blur       float64        `json:"blur"`
	Gradient   []GradientStop `json:"gradient"`
}

// DefaultGradient runs blue through cyan, green, yellow and orange to red
// with opacity rising alongside the heat value.
var DefaultGradient = []GradientStop{
	{0.0, "rgba(0, 0, 255, 0.1)"},
	{0.05, "rgba(0, 50, 255, 0.2)"},
	{0.1, "rgba(0, 100, 255, 0.3)"},
	{0.2, "rgba(0, 150, 255, 0.45)"},
	{0.3, "rgba(0, 200, 200, 0.55)"},
	{0.4, "rgba(0, 230, 150, 0.6)"},
	{0.5, "rgba(100, 255, 100, 0.65)"},
	{0.6, "rgba(180, 255, 0, 0.7)"},
	{0.7, "rgba(255, 255, 0, 0.75)"},
	{0.8, "rgba(255, 180, 0, 0.8)"},
	{0.9, "rgba(255, 100, 0, 0.85)"},
	{1.0, "rgba(255, 0, 0, 0.9)"},
}

// DefaultRendererOptions returns renderer settings for the given radius
func DefaultRendererOptions(radius int) RendererOptions {
	stops := make([]GradientStop, len(DefaultGradient))
	copy(stops, DefaultGradient)
	return RendererOptions{
		Radius:     radius,
		Max:        100,
		Min:        0,
		MaxOpacity: 0.65,
		MinOpacity: 0.05,
		Blur:       0.95,
		Gradient:   stops,
	}
}
