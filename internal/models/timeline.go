// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package models

import (
	"sort"
	"time"

	"github.com/goccy/go-json"
)

// RegionAggregate holds the metrics of one area inside one time bucket.
// The average dwell time is always derived from the count and total.
type RegionAggregate struct {
	AreaID               int64
	AreaName             string
	AreaNumber           *string
	VisitCount           int
	TotalDurationMinutes float64
}

// AvgDurationMinutes returns TotalDurationMinutes / VisitCount, or 0 when
// the region has no visits.
func (a *RegionAggregate) AvgDurationMinutes() float64 {
	if a.VisitCount <= 0 {
		return 0
	}
	return a.TotalDurationMinutes / float64(a.VisitCount)
}

type regionAggregateJSON struct {
	AreaID               int64   `json:"area_id"`
	AreaName             string  `json:"area_name"`
	AreaNumber           *string `json:"area_number,omitempty"`
	VisitCount           int     `json:"visit_count"`
	TotalDurationMinutes float64 `json:"total_duration_minutes"`
	AvgDurationMinutes   float64 `json:"avg_duration_minutes"`
}

// MarshalJSON emits the derived average alongside the stored fields.
func (a RegionAggregate) MarshalJSON() ([]byte, error) {
	return json.Marshal(regionAggregateJSON{
		AreaID:               a.AreaID,
		AreaName:             a.AreaName,
		AreaNumber:           a.AreaNumber,
		VisitCount:           a.VisitCount,
		TotalDurationMinutes: a.TotalDurationMinutes,
		AvgDurationMinutes:   a.AvgDurationMinutes(),
	})
}

// UnmarshalJSON ignores any supplied average; it is recomputed on demand.
func (a *RegionAggregate) UnmarshalJSON(data []byte) error {
	var raw regionAggregateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.AreaID = raw.AreaID
	a.AreaName = raw.AreaName
	a.AreaNumber = raw.AreaNumber
	a.VisitCount = raw.VisitCount
	a.TotalDurationMinutes = raw.TotalDurationMinutes
	return nil
}

// TimeBucket is one fixed-width window of the playback timeline
type TimeBucket struct {
	StartTime time.Time                  `json:"start_time"`
	Regions   map[int64]*RegionAggregate `json:"regions"`
}

// SortedRegions returns the bucket's aggregates ordered by area id so that
// consumers iterating a frame see a stable order.
func (b *TimeBucket) SortedRegions() []*RegionAggregate {
	out := make([]*RegionAggregate, 0, len(b.Regions))
	for _, agg := range b.Regions {
		out = append(out, agg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AreaID < out[j].AreaID
	})
	return out
}

// VisitTotal sums visit counts across all regions of the bucket
func (b *TimeBucket) VisitTotal() int {
	total := 0
	for _, agg := range b.Regions {
		total += agg.VisitCount
	}
	return total
}

// TimelineSummary describes a bucketing pass
type TimelineSummary struct {
	RecordCount         int       `json:"record_count"`
	SkippedCount        int       `json:"skipped_count"`
	BucketCount         int       `json:"bucket_count"`
	IntervalMinutes     int       `json:"interval_minutes"`
	FirstEnter          time.Time `json:"first_enter"`
	LastEnter           time.Time `json:"last_enter"`
	MeanDurationMinutes float64   `json:"mean_duration_minutes"`
	P50DurationMinutes  float64   `json:"p50_duration_minutes"`
	P90DurationMinutes  float64   `json:"p90_duration_minutes"`
}

// TimelineResponse is returned by the timeline endpoint
type TimelineResponse struct {
	Buckets []TimeBucket    `json:"buckets"`
	Summary TimelineSummary `json:"summary"`
}
