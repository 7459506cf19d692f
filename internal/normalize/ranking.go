// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package normalize

import (
	"sort"

	"github.com/tomtom215/dwellmap/internal/models"
)

// DefaultTopN is the leaderboard length
const DefaultTopN = 10

// Rank builds the leaderboard for one frame. Aggregates sharing an area
// name are merged and their average re-derived. Entries are ordered by
// metric descending (ties by name) and cut to topN. Bar percentages are
// relative to the top entry of this frame only.
func Rank(regions []*models.RegionAggregate, metric models.Metric, topN int) models.Ranking {
	if topN <= 0 {
		topN = DefaultTopN
	}

	ranking := models.Ranking{Metric: metric, Entries: []models.RankingEntry{}}
	if len(regions) == 0 {
		return ranking
	}

	merged := make(map[string]*models.RegionAggregate)
	order := make([]string, 0, len(regions))
	for _, agg := range regions {
		if agg == nil {
			continue
		}
		m, ok := merged[agg.AreaName]
		if !ok {
			m = &models.RegionAggregate{
				AreaID:     agg.AreaID,
				AreaName:   agg.AreaName,
				AreaNumber: agg.AreaNumber,
			}
			merged[agg.AreaName] = m
			order = append(order, agg.AreaName)
		}
		m.VisitCount += agg.VisitCount
		m.TotalDurationMinutes += agg.TotalDurationMinutes

		ranking.TotalVisits += agg.VisitCount
		ranking.TotalDurationMinutes += agg.TotalDurationMinutes
	}

	if len(order) == 0 {
		return ranking
	}

	entries := make([]models.RankingEntry, 0, len(order))
	for _, name := range order {
		m := merged[name]
		entries = append(entries, models.RankingEntry{
			AreaName:             m.AreaName,
			AreaNumber:           m.AreaNumber,
			VisitCount:           m.VisitCount,
			TotalDurationMinutes: m.TotalDurationMinutes,
			AvgDurationMinutes:   m.AvgDurationMinutes(),
			Value:                metric.Value(m),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].AreaName < entries[j].AreaName
	})

	if len(entries) > topN {
		entries = entries[:topN]
	}

	maxValue := entries[0].Value
	for i := range entries {
		entries[i].Rank = i + 1
		entries[i].BarPercent = BarPercent(entries[i].Value, maxValue)
	}

	ranking.Entries = entries
	return ranking
}

// BarPercent returns value as a percentage of the frame maximum, 0 when the
// maximum is not positive.
func BarPercent(value, maxValue float64) float64 {
	if maxValue <= 0 {
		return 0
	}
	return value / maxValue * 100
}
