// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package presence

import (
	"github.com/tomtom215/dwellmap/internal/config"
)

// Resilient is a Source behind a result cache and a circuit breaker. Cache
// hits are served even while the breaker is open.
type Resilient struct {
	*CachedSource
	breaker *BreakerSource
}

// NewResilient composes the cache over the breaker over source.
func NewResilient(source Source, breakerCfg config.BreakerConfig, cacheCfg config.CacheConfig) *Resilient {
	breaker := NewBreakerSource(source, breakerCfg)
	return &Resilient{
		CachedSource: NewCachedSource(breaker, cacheCfg),
		breaker:      breaker,
	}
}

// BreakerState reports the circuit breaker state for health output.
func (r *Resilient) BreakerState() string {
	return r.breaker.State()
}
