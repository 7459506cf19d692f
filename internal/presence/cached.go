// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package presence

import (
	"context"
	"slices"

	"github.com/tomtom215/dwellmap/internal/cache"
	"github.com/tomtom215/dwellmap/internal/config"
	"github.com/tomtom215/dwellmap/internal/metrics"
	"github.com/tomtom215/dwellmap/internal/models"
)

// CachedSource memoizes query results for a short TTL. Callers receive
// copies so they may reorder or trim the slices freely.
type CachedSource struct {
	source    Source
	areas     *cache.LRU[[]models.Area]
	summaries *cache.LRU[[]models.AreaSummary]
	records   *cache.LRU[[]models.PresenceRecord]
}

// NewCachedSource wraps source with LRU caches sized by cfg.
func NewCachedSource(source Source, cfg config.CacheConfig) *CachedSource {
	return &CachedSource{
		source:    source,
		areas:     cache.NewLRU[[]models.Area](1, cfg.TTL),
		summaries: cache.NewLRU[[]models.AreaSummary](cfg.Capacity, cfg.TTL),
		records:   cache.NewLRU[[]models.PresenceRecord](cfg.Capacity, cfg.TTL),
	}
}

// Driver returns the wrapped source's driver.
func (c *CachedSource) Driver() string {
	return c.source.Driver()
}

// Ping is never cached.
func (c *CachedSource) Ping(ctx context.Context) error {
	return c.source.Ping(ctx)
}

// ListAreas returns the cached area list or fetches it.
func (c *CachedSource) ListAreas(ctx context.Context) ([]models.Area, error) {
	return lookup(ctx, c.areas, "areas", "ListAreas", nil, func(ctx context.Context) ([]models.Area, error) {
		return c.source.ListAreas(ctx)
	})
}

// AreaSummaries returns cached summaries for an equivalent query or fetches them.
func (c *CachedSource) AreaSummaries(ctx context.Context, q models.PresenceQuery) ([]models.AreaSummary, error) {
	return lookup(ctx, c.summaries, "summaries", "AreaSummaries", canonicalQuery(q), func(ctx context.Context) ([]models.AreaSummary, error) {
		return c.source.AreaSummaries(ctx, q)
	})
}

// FetchRecords returns cached records for an equivalent query or fetches them.
func (c *CachedSource) FetchRecords(ctx context.Context, q models.PresenceQuery) ([]models.PresenceRecord, error) {
	return lookup(ctx, c.records, "records", "FetchRecords", canonicalQuery(q), func(ctx context.Context) ([]models.PresenceRecord, error) {
		return c.source.FetchRecords(ctx, q)
	})
}

// Invalidate drops every cached result, e.g. after new records are loaded.
func (c *CachedSource) Invalidate() {
	c.areas.Clear()
	c.summaries.Clear()
	c.records.Clear()
}

// CleanupExpired evicts expired entries and returns how many were removed.
func (c *CachedSource) CleanupExpired() int {
	return c.areas.CleanupExpired() + c.summaries.CleanupExpired() + c.records.CleanupExpired()
}

func lookup[T any](ctx context.Context, lru *cache.LRU[[]T], name, method string, params interface{}, fetch func(context.Context) ([]T, error)) ([]T, error) {
	key := cache.GenerateKey(method, params)
	if v, ok := lru.Get(key); ok {
		metrics.RecordCacheLookup(name, true)
		return slices.Clone(v), nil
	}
	metrics.RecordCacheLookup(name, false)

	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = []T{}
	}
	lru.Add(key, v)
	return slices.Clone(v), nil
}

// canonicalQuery makes queries that differ only in area order or time zone
// share a cache key.
func canonicalQuery(q models.PresenceQuery) models.PresenceQuery {
	q.AreaIDs = slices.Clone(q.AreaIDs)
	slices.Sort(q.AreaIDs)
	q.AreaIDs = slices.Compact(q.AreaIDs)
	q.Start = q.Start.UTC()
	q.End = q.End.UTC()
	return q
}
