// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package metrics

import (
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordSourceFetch(t *testing.T) {
	okBefore := testutil.ToFloat64(SourceRecordsFetched.WithLabelValues("duckdb"))
	errBefore := testutil.ToFloat64(SourceFetchErrors.WithLabelValues("postgres", "records"))

	RecordSourceFetch("duckdb", "records", 5*time.Millisecond, 42, nil)
	RecordSourceFetch("postgres", "records", time.Second, 0, errors.New("connection refused"))

	if got := testutil.ToFloat64(SourceRecordsFetched.WithLabelValues("duckdb")) - okBefore; got != 42 {
		t.Errorf("records fetched delta = %v, want 42", got)
	}
	if got := testutil.ToFloat64(SourceFetchErrors.WithLabelValues("postgres", "records")) - errBefore; got != 1 {
		t.Errorf("fetch errors delta = %v, want 1", got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("records"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("records"))

	RecordCacheLookup("records", true)
	RecordCacheLookup("records", true)
	RecordCacheLookup("records", false)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("records")) - hits; got != 2 {
		t.Errorf("hits delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("records")) - misses; got != 1 {
		t.Errorf("misses delta = %v, want 1", got)
	}
}

func TestRecordTimeline(t *testing.T) {
	rejected := testutil.ToFloat64(TimelineRangeTooLarge)
	skipped := testutil.ToFloat64(TimelineRecordsSkipped)

	RecordTimeline(time.Millisecond, 12, 3, false)
	RecordTimeline(time.Millisecond, 0, 0, true)

	if got := testutil.ToFloat64(TimelineRangeTooLarge) - rejected; got != 1 {
		t.Errorf("range too large delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(TimelineRecordsSkipped) - skipped; got != 3 {
		t.Errorf("skipped delta = %v, want 3", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode int
	}{
		{"timeline ok", "POST", "/api/v1/timeline", 200},
		{"range too large", "POST", "/api/v1/timeline", 422},
		{"unknown session", "GET", "/api/v1/playback/sessions/{id}", 404},
		{"rate limited", "GET", "/api/v1/areas", 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, strconv.Itoa(tt.statusCode)))
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, 10*time.Millisecond)
			after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, strconv.Itoa(tt.statusCode)))
			if after-before != 1 {
				t.Errorf("counter delta = %v, want 1", after-before)
			}
		})
	}
}

func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 2 {
		t.Errorf("active delta = %v, want 2", got)
	}
	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active = %v, want %v", got, before)
	}
}

func TestRecordBreakerTransition(t *testing.T) {
	RecordBreakerTransition("presence-test", "closed", "open", BreakerOpen)

	// Read the gauge through the client model to check the exported value.
	var m dto.Metric
	if err := CircuitBreakerState.WithLabelValues("presence-test").Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := m.GetGauge().GetValue(); got != BreakerOpen {
		t.Errorf("breaker gauge = %v, want %d", got, BreakerOpen)
	}
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("presence-test", "closed", "open")); got != 1 {
		t.Errorf("transitions = %v, want 1", got)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	before := testutil.ToFloat64(PlaybackFramesDelivered.WithLabelValues("tick"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			PlaybackFramesDelivered.WithLabelValues("tick").Inc()
			RecordCacheLookup("records", false)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(PlaybackFramesDelivered.WithLabelValues("tick")) - before; got != 50 {
		t.Errorf("frames delta = %v, want 50", got)
	}
}

// TestMetricGathering checks the registry for naming problems.
func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("GET", "/test", 200, time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}
