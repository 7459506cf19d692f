// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/dwellmap/internal/config"
	"github.com/tomtom215/dwellmap/internal/models"
	"github.com/tomtom215/dwellmap/internal/presence"
)

// querySource records the last query and returns fixed records
type querySource struct {
	last    models.PresenceQuery
	records []models.PresenceRecord
	err     error
}

func (q *querySource) ListAreas(ctx context.Context) ([]models.Area, error) { return nil, nil }
func (q *querySource) AreaSummaries(ctx context.Context, pq models.PresenceQuery) ([]models.AreaSummary, error) {
	return nil, nil
}
func (q *querySource) FetchRecords(ctx context.Context, pq models.PresenceQuery) ([]models.PresenceRecord, error) {
	q.last = pq
	return q.records, q.err
}
func (q *querySource) Ping(ctx context.Context) error { return nil }
func (q *querySource) Driver() string                 { return "test" }

func newTestBuilder(src presence.Source, fill bool) *Builder {
	return NewBuilder(src,
		config.TimelineConfig{IntervalMinutes: 60, MaxSlots: 500, FillGaps: fill},
		config.FilterConfig{MinDurationSeconds: 0, MaxDurationSeconds: 999999})
}

func TestBuilder_ApplyFilterDefaults(t *testing.T) {
	b := NewBuilder(nil, config.TimelineConfig{}, config.FilterConfig{MinDurationSeconds: 30, MaxDurationSeconds: 3600})

	tests := []struct {
		name     string
		in, want models.PresenceQuery
	}{
		{"both unset", models.PresenceQuery{}, models.PresenceQuery{MinDurationSeconds: 30, MaxDurationSeconds: 3600}},
		{"both set", models.PresenceQuery{MinDurationSeconds: 1, MaxDurationSeconds: 2}, models.PresenceQuery{MinDurationSeconds: 1, MaxDurationSeconds: 2}},
		{"max only", models.PresenceQuery{MaxDurationSeconds: 90}, models.PresenceQuery{MinDurationSeconds: 30, MaxDurationSeconds: 90}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.in
			b.ApplyFilterDefaults(&q)
			if diff := cmp.Diff(tt.want, q); diff != "" {
				t.Errorf("ApplyFilterDefaults() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuilder_FetchesWhenNoRecords(t *testing.T) {
	src := &querySource{records: threeHours()}
	b := newTestBuilder(src, false)

	req := &models.TimelineRequest{Query: models.PresenceQuery{
		AreaIDs: []int64{1, 2, 3},
		Start:   base,
		End:     base.Add(24 * time.Hour),
	}}
	resp, err := b.Build(context.Background(), req)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if src.last.MaxDurationSeconds != 999999 {
		t.Errorf("query MaxDurationSeconds = %v, want configured default", src.last.MaxDurationSeconds)
	}
	if len(resp.Buckets) != 3 {
		t.Errorf("len(Buckets) = %d, want 3", len(resp.Buckets))
	}
	if resp.Summary.RecordCount != 5 || resp.Summary.IntervalMinutes != 60 {
		t.Errorf("Summary = %+v", resp.Summary)
	}
}

func TestBuilder_SourceErrors(t *testing.T) {
	src := &querySource{err: presence.ErrUnavailable}
	b := newTestBuilder(src, false)
	if _, err := b.Build(context.Background(), &models.TimelineRequest{}); !errors.Is(err, presence.ErrUnavailable) {
		t.Errorf("Build() error = %v, want ErrUnavailable", err)
	}

	noSource := newTestBuilder(nil, false)
	if _, err := noSource.Build(context.Background(), &models.TimelineRequest{}); !errors.Is(err, presence.ErrUnavailable) {
		t.Errorf("Build() without source error = %v, want ErrUnavailable", err)
	}
}

func TestBuilder_GapFilling(t *testing.T) {
	// activity at 09:00 and 12:00 only
	records := []models.PresenceRecord{rec(1, "Entrance", "p1", 0, 5), rec(1, "Entrance", "p2", 180, 5)}
	on, off := true, false

	tests := []struct {
		name    string
		config  bool
		request *bool
		want    int
	}{
		{"default drops empty slots", false, nil, 2},
		{"config fills", true, nil, 4},
		{"request overrides config on", false, &on, 4},
		{"request overrides config off", true, &off, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(nil, tt.config)
			resp, err := b.Build(context.Background(), &models.TimelineRequest{Records: records, FillGaps: tt.request})
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if len(resp.Buckets) != tt.want {
				t.Errorf("len(Buckets) = %d, want %d", len(resp.Buckets), tt.want)
			}
		})
	}
}

func TestBuilder_IntervalOverride(t *testing.T) {
	b := newTestBuilder(nil, false)
	resp, err := b.Build(context.Background(), &models.TimelineRequest{Records: threeHours(), IntervalMinutes: 15})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if resp.Summary.IntervalMinutes != 15 {
		t.Errorf("IntervalMinutes = %d, want 15", resp.Summary.IntervalMinutes)
	}
	// enters at +0, +5, +70, +130 and +150 minutes fill slots 0, 4, 8 and 10
	if len(resp.Buckets) != 4 {
		t.Errorf("len(Buckets) = %d, want 4", len(resp.Buckets))
	}
}
