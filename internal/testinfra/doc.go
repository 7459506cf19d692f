// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

//go:build integration

// Package testinfra provides container helpers for integration tests.
//
// Tests using it carry the integration build tag and skip when Docker is
// not reachable:
//
//	func TestPostgresSource(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, pg)
//
//	    src, err := presence.NewPostgres(ctx, pg.DSN, 5, time.Second)
//	    ...
//	}
//
// Run with:
//
//	go test -tags integration ./...
package testinfra
