// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package presence

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/dwellmap/internal/config"
	"github.com/tomtom215/dwellmap/internal/logging"
	"github.com/tomtom215/dwellmap/internal/metrics"
	"github.com/tomtom215/dwellmap/internal/models"
)

// BreakerSource wraps a Source with a circuit breaker.
//
// The breaker runs on real time for its interval and timeout. Tests that
// need to observe the open state trip it with consecutive failures rather
// than waiting on the clock.
type BreakerSource struct {
	source Source
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewBreakerSource wraps source. The circuit opens after
// cfg.FailureThreshold consecutive failures and half-opens after cfg.Timeout.
func NewBreakerSource(source Source, cfg config.BreakerConfig) *BreakerSource {
	name := "presence-" + source.Driver()
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(metrics.BreakerClosed)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			shouldTrip := counts.ConsecutiveFailures >= threshold
			if shouldTrip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Str("breaker", name).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("[CIRCUIT BREAKER] State transition")
			metrics.RecordBreakerTransition(name, stateToString(from), stateToString(to), stateToInt(to))
		},

		// Cancelled requests say nothing about the health of the store.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerSource{source: source, cb: cb, name: name}
}

// State reports the breaker state as closed, half-open or open.
func (b *BreakerSource) State() string {
	return stateToString(b.cb.State())
}

// Driver returns the wrapped source's driver.
func (b *BreakerSource) Driver() string {
	return b.source.Driver()
}

// Ping bypasses the breaker so health checks can observe recovery.
func (b *BreakerSource) Ping(ctx context.Context) error {
	return b.source.Ping(ctx)
}

// ListAreas lists areas with circuit breaker protection.
func (b *BreakerSource) ListAreas(ctx context.Context) ([]models.Area, error) {
	return castResult[[]models.Area](b.execute(func() (interface{}, error) {
		return b.source.ListAreas(ctx)
	}))
}

// AreaSummaries aggregates per area with circuit breaker protection.
func (b *BreakerSource) AreaSummaries(ctx context.Context, q models.PresenceQuery) ([]models.AreaSummary, error) {
	return castResult[[]models.AreaSummary](b.execute(func() (interface{}, error) {
		return b.source.AreaSummaries(ctx, q)
	}))
}

// FetchRecords fetches records with circuit breaker protection.
func (b *BreakerSource) FetchRecords(ctx context.Context, q models.PresenceQuery) ([]models.PresenceRecord, error) {
	return castResult[[]models.PresenceRecord](b.execute(func() (interface{}, error) {
		return b.source.FetchRecords(ctx, q)
	}))
}

// execute maps open-state and half-open overflow rejections to ErrUnavailable.
func (b *BreakerSource) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Warn().Err(err).Str("breaker", b.name).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	return result, nil
}

func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateHalfOpen:
		return metrics.BreakerHalfOpen
	case gobreaker.StateOpen:
		return metrics.BreakerOpen
	default:
		return metrics.BreakerClosed
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
