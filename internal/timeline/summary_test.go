// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package timeline

import (
	"math"
	"testing"
	"time"

	"github.com/tomtom215/dwellmap/internal/models"
)

func TestSummarize(t *testing.T) {
	records := []models.PresenceRecord{
		visit(1, 0, 2),
		visit(1, 5, 9),
		visit(2, 20, 26),
		visit(2, 40, 48),
		{AreaID: 3},
	}
	buckets, err := Bucket(records, 15)
	if err != nil {
		t.Fatalf("Bucket failed: %v", err)
	}

	s := Summarize(records, buckets, 15)

	if s.RecordCount != 5 || s.SkippedCount != 1 {
		t.Errorf("Expected 5 records with 1 skipped, got %d/%d", s.RecordCount, s.SkippedCount)
	}
	if s.BucketCount != 3 {
		t.Errorf("Expected 3 buckets, got %d", s.BucketCount)
	}
	if !s.FirstEnter.Equal(at(0)) || !s.LastEnter.Equal(at(40)) {
		t.Errorf("Unexpected enter bounds %v..%v", s.FirstEnter, s.LastEnter)
	}
	if math.Abs(s.MeanDurationMinutes-5) > 1e-9 {
		t.Errorf("Expected mean 5, got %v", s.MeanDurationMinutes)
	}
	if s.P50DurationMinutes != 4 {
		t.Errorf("Expected p50 4, got %v", s.P50DurationMinutes)
	}
	if s.P90DurationMinutes != 8 {
		t.Errorf("Expected p90 8, got %v", s.P90DurationMinutes)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil, 30)
	if s.RecordCount != 0 || s.MeanDurationMinutes != 0 || s.IntervalMinutes != 30 {
		t.Errorf("Unexpected summary for empty batch: %+v", s)
	}
}

func TestLabel(t *testing.T) {
	ts := time.Date(2026, 1, 15, 14, 30, 0, 0, time.UTC)
	tests := []struct {
		interval int
		want     string
	}{
		{0, "2026-01-15T14:30:00Z"},
		{15, "2026-01-15 14:30"},
		{24 * 60, "Thu Jan 15"},
		{7 * 24 * 60, "Week of Jan 15"},
		{30 * 24 * 60, "Jan 2026"},
	}
	for _, tt := range tests {
		if got := Label(ts, tt.interval); got != tt.want {
			t.Errorf("Label(%d) = %q, want %q", tt.interval, got, tt.want)
		}
	}
}
