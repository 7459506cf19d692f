// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext bounds DDL statements.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// initialize creates the base tables and the views queries run against.
// The views keep the column names of the external PostgreSQL deployment
// so both drivers share one query shape.
func (db *DB) initialize() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range schemaQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

var schemaQueries = []string{
	`CREATE TABLE IF NOT EXISTS area (
		area_id BIGINT PRIMARY KEY,
		area_name VARCHAR,
		area_number VARCHAR
	)`,

	// One row per detected stay of a re-identified person in an area.
	`CREATE TABLE IF NOT EXISTS store_analysis (
		area_id BIGINT NOT NULL,
		reid VARCHAR NOT NULL,
		enter_time TIMESTAMP NOT NULL,
		exit_time TIMESTAMP NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_store_analysis_area_enter
		ON store_analysis (area_id, enter_time)`,

	`CREATE OR REPLACE VIEW v_area AS
		SELECT area_id, area_name, area_number FROM area`,

	`CREATE OR REPLACE VIEW v_store_analysis AS
		SELECT area_id, reid, enter_time, exit_time FROM store_analysis`,
}
