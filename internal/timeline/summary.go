// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package timeline

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/dwellmap/internal/models"
)

// Summarize describes a record batch and the buckets produced from it.
// Duration statistics cover the valid records only.
func Summarize(records []models.PresenceRecord, buckets []models.TimeBucket, intervalMinutes int) models.TimelineSummary {
	summary := models.TimelineSummary{
		RecordCount:     len(records),
		BucketCount:     len(buckets),
		IntervalMinutes: intervalMinutes,
	}

	durations := make([]float64, 0, len(records))
	for i := range records {
		rec := &records[i]
		if !ValidEnterTime(rec.EnterTime) {
			summary.SkippedCount++
			continue
		}
		if summary.FirstEnter.IsZero() || rec.EnterTime.Before(summary.FirstEnter) {
			summary.FirstEnter = rec.EnterTime
		}
		if rec.EnterTime.After(summary.LastEnter) {
			summary.LastEnter = rec.EnterTime
		}
		durations = append(durations, rec.Duration()/60)
	}

	if len(durations) == 0 {
		return summary
	}

	sort.Float64s(durations)
	summary.MeanDurationMinutes = stat.Mean(durations, nil)
	summary.P50DurationMinutes = stat.Quantile(0.5, stat.Empirical, durations, nil)
	summary.P90DurationMinutes = stat.Quantile(0.9, stat.Empirical, durations, nil)
	return summary
}
