// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

/*
Package database provides the embedded DuckDB presence store.

The store keeps two base tables, area and store_analysis, and exposes them
through the v_area and v_store_analysis views. Queries only touch the views,
matching the layout of the external PostgreSQL deployment served by the
presence package.

# Queries

  - ListAreas: distinct named areas ordered by id
  - AreaSummaries: distinct visitors plus total and average stay per area
  - FetchRecords: filtered stays ordered by enter time

All three apply the same filter: area in the requested set, enter time in
[start, end), exit after enter, and duration strictly between the minimum
and maximum bounds.

# Sample Data

With database.seed_sample_data enabled, New fills empty tables with three
days of deterministic visits across six areas starting at SampleStart.

# Usage

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

	records, err := db.FetchRecords(ctx, query)
*/
package database
