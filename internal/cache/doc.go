// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

// Package cache provides a bounded, expiring LRU cache and key hashing for
// memoizing presence record fetches.
//
//	records := cache.NewLRU[[]models.PresenceRecord](128, 5*time.Minute)
//	key := cache.GenerateKey("records", query)
//	if batch, ok := records.Get(key); ok {
//	    return batch, nil
//	}
package cache
