// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package presence

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/dwellmap/internal/config"
	"github.com/tomtom215/dwellmap/internal/logging"
	"github.com/tomtom215/dwellmap/internal/models"
)

func TestMain(m *testing.M) {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
	os.Exit(m.Run())
}

var errBackend = errors.New("backend down")

// fakeSource counts calls and can be told to fail.
type fakeSource struct {
	mu      sync.Mutex
	calls   map[string]int
	fail    bool
	records []models.PresenceRecord
}

func newFakeSource() *fakeSource {
	return &fakeSource{calls: make(map[string]int)}
}

func (f *fakeSource) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if f.fail {
		return errBackend
	}
	return nil
}

func (f *fakeSource) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeSource) setFail(fail bool) {
	f.mu.Lock()
	f.fail = fail
	f.mu.Unlock()
}

func (f *fakeSource) ListAreas(ctx context.Context) ([]models.Area, error) {
	if err := f.record("areas"); err != nil {
		return nil, err
	}
	return []models.Area{{ID: 1, Name: "Entrance"}, {ID: 2, Name: "Checkout"}}, nil
}

func (f *fakeSource) AreaSummaries(ctx context.Context, q models.PresenceQuery) ([]models.AreaSummary, error) {
	if err := f.record("summaries"); err != nil {
		return nil, err
	}
	out := make([]models.AreaSummary, 0, len(q.AreaIDs))
	for _, id := range q.AreaIDs {
		out = append(out, models.AreaSummary{AreaID: id, VisitCount: 1})
	}
	return out, nil
}

func (f *fakeSource) FetchRecords(ctx context.Context, q models.PresenceQuery) ([]models.PresenceRecord, error) {
	if err := f.record("records"); err != nil {
		return nil, err
	}
	return f.records, nil
}

func (f *fakeSource) Ping(ctx context.Context) error {
	return f.record("ping")
}

func (f *fakeSource) Driver() string { return "fake" }

func sampleQuery(ids ...int64) models.PresenceQuery {
	start := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	return models.PresenceQuery{
		AreaIDs:            ids,
		Start:              start,
		End:                start.Add(24 * time.Hour),
		MaxDurationSeconds: 999999,
	}
}

func testBreakerConfig() config.BreakerConfig {
	return config.BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Hour,
		FailureThreshold: 3,
	}
}

func TestBreakerSource_OpensAfterConsecutiveFailures(t *testing.T) {
	src := newFakeSource()
	src.setFail(true)
	b := NewBreakerSource(src, testBreakerConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := b.FetchRecords(ctx, sampleQuery(1))
		if !errors.Is(err, errBackend) {
			t.Fatalf("call %d: err = %v, want backend error", i, err)
		}
	}
	if got := b.State(); got != "open" {
		t.Fatalf("State() = %q, want open", got)
	}

	_, err := b.FetchRecords(ctx, sampleQuery(1))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if got := src.count("records"); got != 3 {
		t.Errorf("backend calls = %d, want 3 (open circuit must not reach the source)", got)
	}
}

func TestBreakerSource_SuccessResetsFailures(t *testing.T) {
	src := newFakeSource()
	b := NewBreakerSource(src, testBreakerConfig())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		src.setFail(i%2 == 0)
		_, _ = b.ListAreas(ctx)
	}
	if got := b.State(); got != "closed" {
		t.Errorf("State() = %q, want closed", got)
	}
}

func TestBreakerSource_CancelledContextDoesNotTrip(t *testing.T) {
	src := &cancelSource{fakeSource: newFakeSource()}
	b := NewBreakerSource(src, testBreakerConfig())

	for i := 0; i < 5; i++ {
		_, err := b.FetchRecords(context.Background(), sampleQuery(1))
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	}
	if got := b.State(); got != "closed" {
		t.Errorf("State() = %q, want closed", got)
	}
}

type cancelSource struct {
	*fakeSource
}

func (c *cancelSource) FetchRecords(ctx context.Context, q models.PresenceQuery) ([]models.PresenceRecord, error) {
	return nil, context.Canceled
}

func TestBreakerSource_PingBypassesOpenCircuit(t *testing.T) {
	src := newFakeSource()
	src.setFail(true)
	b := NewBreakerSource(src, testBreakerConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = b.ListAreas(ctx)
	}
	src.setFail(false)

	if err := b.Ping(ctx); err != nil {
		t.Errorf("Ping() = %v, want nil", err)
	}
}

func TestCachedSource_HitsAndCopies(t *testing.T) {
	src := newFakeSource()
	src.records = []models.PresenceRecord{{AreaID: 1, PersonID: "p1"}, {AreaID: 2, PersonID: "p2"}}
	c := NewCachedSource(src, config.CacheConfig{TTL: time.Minute, Capacity: 8})
	ctx := context.Background()

	first, err := c.FetchRecords(ctx, sampleQuery(1, 2))
	if err != nil {
		t.Fatalf("FetchRecords() error = %v", err)
	}
	first[0].PersonID = "mutated"

	second, err := c.FetchRecords(ctx, sampleQuery(2, 1, 2))
	if err != nil {
		t.Fatalf("FetchRecords() error = %v", err)
	}
	if got := src.count("records"); got != 1 {
		t.Errorf("backend calls = %d, want 1", got)
	}
	if second[0].PersonID != "p1" {
		t.Errorf("cached record was mutated through a returned slice")
	}
}

func TestCachedSource_DistinctQueries(t *testing.T) {
	src := newFakeSource()
	c := NewCachedSource(src, config.CacheConfig{TTL: time.Minute, Capacity: 8})
	ctx := context.Background()

	q1 := sampleQuery(1)
	q2 := sampleQuery(1)
	q2.MinDurationSeconds = 30

	for _, q := range []models.PresenceQuery{q1, q2, q1, q2} {
		if _, err := c.AreaSummaries(ctx, q); err != nil {
			t.Fatalf("AreaSummaries() error = %v", err)
		}
	}
	if got := src.count("summaries"); got != 2 {
		t.Errorf("backend calls = %d, want 2", got)
	}
}

func TestCachedSource_ErrorsAreNotCached(t *testing.T) {
	src := newFakeSource()
	src.setFail(true)
	c := NewCachedSource(src, config.CacheConfig{TTL: time.Minute, Capacity: 8})
	ctx := context.Background()

	if _, err := c.ListAreas(ctx); !errors.Is(err, errBackend) {
		t.Fatalf("ListAreas() error = %v, want backend error", err)
	}
	src.setFail(false)
	areas, err := c.ListAreas(ctx)
	if err != nil {
		t.Fatalf("ListAreas() error = %v", err)
	}
	if len(areas) != 2 {
		t.Errorf("len(areas) = %d, want 2", len(areas))
	}
}

func TestCachedSource_Invalidate(t *testing.T) {
	src := newFakeSource()
	c := NewCachedSource(src, config.CacheConfig{TTL: time.Minute, Capacity: 8})
	ctx := context.Background()

	_, _ = c.ListAreas(ctx)
	c.Invalidate()
	_, _ = c.ListAreas(ctx)

	if got := src.count("areas"); got != 2 {
		t.Errorf("backend calls = %d, want 2", got)
	}
}

func TestResilient_ServesCacheWhileOpen(t *testing.T) {
	src := newFakeSource()
	r := NewResilient(src, testBreakerConfig(), config.CacheConfig{TTL: time.Minute, Capacity: 8})
	ctx := context.Background()

	if _, err := r.ListAreas(ctx); err != nil {
		t.Fatalf("ListAreas() error = %v", err)
	}

	src.setFail(true)
	for i := 0; i < 3; i++ {
		_, _ = r.FetchRecords(ctx, sampleQuery(int64(i+1)))
	}
	if got := r.BreakerState(); got != "open" {
		t.Fatalf("BreakerState() = %q, want open", got)
	}

	if _, err := r.ListAreas(ctx); err != nil {
		t.Errorf("cached ListAreas() error = %v, want nil", err)
	}
	if _, err := r.FetchRecords(ctx, sampleQuery(9)); !errors.Is(err, ErrUnavailable) {
		t.Errorf("uncached FetchRecords() error = %v, want ErrUnavailable", err)
	}
}

func TestCanonicalQuery(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	q := sampleQuery(3, 1, 3, 2)
	q.Start = q.Start.In(loc)

	got := canonicalQuery(q)
	want := []int64{1, 2, 3}
	if len(got.AreaIDs) != len(want) {
		t.Fatalf("AreaIDs = %v, want %v", got.AreaIDs, want)
	}
	for i := range want {
		if got.AreaIDs[i] != want[i] {
			t.Fatalf("AreaIDs = %v, want %v", got.AreaIDs, want)
		}
	}
	if got.Start.Location() != time.UTC {
		t.Errorf("Start location = %v, want UTC", got.Start.Location())
	}
	if q.AreaIDs[0] != 3 {
		t.Errorf("canonicalQuery mutated the caller's AreaIDs")
	}
}
