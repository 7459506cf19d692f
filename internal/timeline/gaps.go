// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package timeline

import (
	"time"

	"github.com/tomtom215/dwellmap/internal/models"
)

// FillGaps inserts empty buckets between non-adjacent buckets so playback
// advances at an even wall-clock pace. Input must be ordered by StartTime.
func FillGaps(buckets []models.TimeBucket, intervalMinutes int) []models.TimeBucket {
	if len(buckets) < 2 || intervalMinutes <= 0 {
		return buckets
	}
	interval := time.Duration(intervalMinutes) * time.Minute

	result := []models.TimeBucket{buckets[0]}
	for i := 1; i < len(buckets); i++ {
		curr := buckets[i]
		expectedNext := result[len(result)-1].StartTime.Add(interval)

		for expectedNext.Before(curr.StartTime) {
			result = append(result, models.TimeBucket{
				StartTime: expectedNext,
				Regions:   map[int64]*models.RegionAggregate{},
			})
			expectedNext = expectedNext.Add(interval)
		}

		result = append(result, curr)
	}

	return result
}
