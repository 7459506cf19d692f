// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package normalize

import (
	"sort"

	"github.com/tomtom215/dwellmap/internal/models"
)

// ChangePercent is the relative change from previous to current. Growth from
// zero counts as 100 and no activity in either frame as 0.
func ChangePercent(current, previous float64) float64 {
	if previous > 0 {
		return (current - previous) / previous * 100
	}
	if current > 0 {
		return 100
	}
	return 0
}

// Compare reports per-area metric changes between two frames. Areas present
// in either frame are included; a missing area counts as zero.
func Compare(current, previous *models.TimeBucket, metric models.Metric) []models.FrameChange {
	ids := make(map[int64]struct{})
	if current != nil {
		for id := range current.Regions {
			ids[id] = struct{}{}
		}
	}
	if previous != nil {
		for id := range previous.Regions {
			ids[id] = struct{}{}
		}
	}

	changes := make([]models.FrameChange, 0, len(ids))
	for id := range ids {
		c := metric.Value(lookup(current, id))
		p := metric.Value(lookup(previous, id))
		changes = append(changes, models.FrameChange{
			AreaID:        id,
			Current:       c,
			Previous:      p,
			ChangePercent: ChangePercent(c, p),
		})
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].AreaID < changes[j].AreaID
	})
	return changes
}

// Merge sums the aggregates of several areas into one, as when a drawn
// region covers more than one store area.
func Merge(bucket *models.TimeBucket, areaIDs []int64) *models.RegionAggregate {
	merged := &models.RegionAggregate{}
	for _, id := range areaIDs {
		agg := lookup(bucket, id)
		if agg == nil {
			continue
		}
		if merged.AreaName == "" {
			merged.AreaID = agg.AreaID
			merged.AreaName = agg.AreaName
			merged.AreaNumber = agg.AreaNumber
		}
		merged.VisitCount += agg.VisitCount
		merged.TotalDurationMinutes += agg.TotalDurationMinutes
	}
	return merged
}

func lookup(bucket *models.TimeBucket, id int64) *models.RegionAggregate {
	if bucket == nil {
		return nil
	}
	return bucket.Regions[id]
}
