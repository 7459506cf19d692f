// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package session

import (
	"github.com/tomtom215/dwellmap/internal/floorplan"
	"github.com/tomtom215/dwellmap/internal/metrics"
	"github.com/tomtom215/dwellmap/internal/models"
	"github.com/tomtom215/dwellmap/internal/normalize"
	"github.com/tomtom215/dwellmap/internal/playback"
	"github.com/tomtom215/dwellmap/internal/websocket"
)

// The controller always calls the renderer before the ranking sink, under
// its own lock. The renderer assembles the heat part of a frame and the
// ranking sink completes and publishes it.

type rendererSink struct {
	s *Session
}

func (r *rendererSink) Deliver(f playback.Frame) {
	s := r.s
	regions := f.Bucket.SortedRegions()

	frame := &models.Frame{
		SessionID: s.id,
		Index:     f.Index,
		Total:     f.Total,
		StartTime: f.Bucket.StartTime,
		Label:     f.Label,
		Regions:   make([]models.RegionAggregate, 0, len(regions)),
		Heat:      s.opts.Scale.Heat(regions),
		Changes:   normalize.Compare(f.Bucket, f.Previous, s.opts.Scale.Metric),
	}
	for _, agg := range regions {
		frame.Regions = append(frame.Regions, *agg)
	}
	if s.opts.Layout != nil {
		frame.Points = layoutPoints(s.opts.Layout, f.Bucket, s.opts.Scale, s.opts.Radius)
	}

	s.mu.Lock()
	s.pending = frame
	s.mu.Unlock()
}

func (r *rendererSink) Clear() {
	r.s.mu.Lock()
	r.s.pending = nil
	r.s.mu.Unlock()
}

type rankingSink struct {
	s *Session
}

func (k *rankingSink) Deliver(f playback.Frame) {
	s := k.s
	ranking := normalize.Rank(f.Bucket.SortedRegions(), s.opts.Scale.Metric, s.opts.TopN)

	s.mu.Lock()
	frame := s.pending
	s.pending = nil
	if frame == nil {
		frame = &models.Frame{SessionID: s.id, Index: f.Index, Total: f.Total, StartTime: f.Bucket.StartTime, Label: f.Label}
	}
	frame.Ranking = ranking

	trigger := "seek"
	switch {
	case s.last == nil:
		trigger = "start"
	case f.Index == s.lastIndex+1:
		trigger = "tick"
	}
	s.last = frame
	s.lastIndex = f.Index
	s.mu.Unlock()

	metrics.PlaybackFramesDelivered.WithLabelValues(trigger).Inc()
	s.hub.BroadcastSession(s.id, websocket.MessageTypePlaybackFrame, frame)
}

func (k *rankingSink) Clear() {
	s := k.s
	s.mu.Lock()
	s.last = nil
	s.lastIndex = -1
	s.mu.Unlock()

	s.hub.BroadcastSession(s.id, websocket.MessageTypePlaybackCleared, nil)
}

// layoutAggregates merges the areas each drawn region covers into one
// aggregate per region, named after the region. Regions with no activity
// in the bucket are left out; regions[i] is the layout index of aggs[i].
func layoutAggregates(layout *models.Layout, bucket *models.TimeBucket) (aggs []*models.RegionAggregate, regions []int) {
	aggs = make([]*models.RegionAggregate, 0, len(layout.Regions))
	regions = make([]int, 0, len(layout.Regions))
	for i, region := range layout.Regions {
		merged := normalize.Merge(bucket, region.AreaIDs)
		if merged.VisitCount == 0 && merged.TotalDurationMinutes == 0 {
			continue
		}
		if region.Name != "" {
			merged.AreaName = region.Name
		}
		aggs = append(aggs, merged)
		regions = append(regions, i)
	}
	return aggs, regions
}

// layoutPoints scales the per-region aggregates of a bucket and fills each
// region's own polygon with its weight. Regions sharing an area each get
// points.
func layoutPoints(layout *models.Layout, bucket *models.TimeBucket, scale normalize.Scale, radius int) []models.HeatPoint {
	aggs, regions := layoutAggregates(layout, bucket)
	heat := scale.Heat(aggs)

	weights := make([]floorplan.RegionWeight, len(heat))
	for i, h := range heat {
		weights[i] = floorplan.RegionWeight{Region: regions[i], Heat: h.Heat}
	}
	return floorplan.Points(layout, weights, radius)
}
