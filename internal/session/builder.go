// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package session

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/dwellmap/internal/config"
	"github.com/tomtom215/dwellmap/internal/metrics"
	"github.com/tomtom215/dwellmap/internal/models"
	"github.com/tomtom215/dwellmap/internal/presence"
	"github.com/tomtom215/dwellmap/internal/timeline"
)

// Builder fetches presence records and buckets them into a timeline.
type Builder struct {
	source   presence.Source
	timeline config.TimelineConfig
	filter   config.FilterConfig
}

// NewBuilder creates a Builder. source may be nil when every request
// supplies its own records.
func NewBuilder(source presence.Source, tl config.TimelineConfig, filter config.FilterConfig) *Builder {
	return &Builder{source: source, timeline: tl, filter: filter}
}

// ApplyFilterDefaults fills unset duration bounds from the configured filter.
func (b *Builder) ApplyFilterDefaults(q *models.PresenceQuery) {
	if q.MinDurationSeconds == 0 {
		q.MinDurationSeconds = b.filter.MinDurationSeconds
	}
	if q.MaxDurationSeconds == 0 {
		q.MaxDurationSeconds = b.filter.MaxDurationSeconds
	}
}

// Build returns the buckets and summary for req. Supplied records are used
// as given; otherwise the query is run against the source.
func (b *Builder) Build(ctx context.Context, req *models.TimelineRequest) (*models.TimelineResponse, error) {
	records := req.Records
	if len(records) == 0 {
		if b.source == nil {
			return nil, presence.ErrUnavailable
		}
		q := req.Query
		b.ApplyFilterDefaults(&q)
		var err error
		records, err = b.source.FetchRecords(ctx, q)
		if err != nil {
			return nil, err
		}
	}

	interval := req.IntervalMinutes
	if interval == 0 {
		interval = b.timeline.IntervalMinutes
	}
	fill := b.timeline.FillGaps
	if req.FillGaps != nil {
		fill = *req.FillGaps
	}

	start := time.Now()
	engine := timeline.NewEngine(timeline.Options{MaxSlots: b.timeline.MaxSlots, FillGaps: fill})
	buckets, err := engine.Bucket(records, interval)
	if err != nil {
		metrics.RecordTimeline(time.Since(start), 0, 0, errors.Is(err, timeline.ErrRangeTooLarge))
		return nil, err
	}

	summary := timeline.Summarize(records, buckets, interval)
	metrics.RecordTimeline(time.Since(start), len(buckets), summary.SkippedCount, false)

	return &models.TimelineResponse{Buckets: buckets, Summary: summary}, nil
}
