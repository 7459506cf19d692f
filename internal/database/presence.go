// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/dwellmap/internal/logging"
	"github.com/tomtom215/dwellmap/internal/metrics"
	"github.com/tomtom215/dwellmap/internal/models"
)

// durationExpr is the stay length in fractional seconds.
const durationExpr = "date_diff('millisecond', sa.enter_time, sa.exit_time) / 1000.0"

// presenceFilter renders the shared WHERE clause for a query.
// Records must start inside [Start, End), end after they start and have a
// duration strictly between the two bounds.
func presenceFilter(q models.PresenceQuery) (string, []interface{}) {
	placeholders := make([]string, len(q.AreaIDs))
	args := make([]interface{}, 0, len(q.AreaIDs)+4)
	for i, id := range q.AreaIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}

	where := fmt.Sprintf(`sa.area_id IN (%s)
		AND sa.enter_time >= ?
		AND sa.enter_time < ?
		AND sa.exit_time > sa.enter_time
		AND %s > ?
		AND %s < ?`, strings.Join(placeholders, ", "), durationExpr, durationExpr)
	args = append(args, q.Start.UTC(), q.End.UTC(), q.MinDurationSeconds, q.MaxDurationSeconds)
	return where, args
}

// ListAreas returns every named area ordered by id.
func (db *DB) ListAreas(ctx context.Context) (areas []models.Area, err error) {
	start := time.Now()
	defer func() { metrics.RecordSourceFetch(DriverName, "areas", time.Since(start), len(areas), err) }()

	if db.conn == nil {
		return nil, ErrClosed
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT area_id, area_name, area_number
		FROM v_area
		WHERE area_name IS NOT NULL
		ORDER BY area_id`)
	if err != nil {
		return nil, wrapQueryError("list areas", err)
	}
	defer closeWithLog(rows, "rows")

	areas = make([]models.Area, 0)
	for rows.Next() {
		var a models.Area
		var number sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &number); err != nil {
			return nil, fmt.Errorf("failed to scan area: %w", err)
		}
		a.Number = nullStringPtr(number)
		areas = append(areas, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError("list areas", err)
	}
	return areas, nil
}

// AreaSummaries aggregates the filtered window per area: distinct visitors
// and total/average stay, ordered by total stay descending.
func (db *DB) AreaSummaries(ctx context.Context, q models.PresenceQuery) (summaries []models.AreaSummary, err error) {
	start := time.Now()
	defer func() { metrics.RecordSourceFetch(DriverName, "summaries", time.Since(start), len(summaries), err) }()

	if db.conn == nil {
		return nil, ErrClosed
	}
	if len(q.AreaIDs) == 0 {
		return []models.AreaSummary{}, nil
	}

	where, args := presenceFilter(q)
	query := fmt.Sprintf(`
		SELECT
			sa.area_id,
			a.area_name,
			a.area_number,
			COUNT(DISTINCT sa.reid) AS visit_count,
			SUM(%[1]s) AS total_duration_seconds,
			AVG(%[1]s) AS avg_duration_seconds
		FROM v_store_analysis sa
		JOIN v_area a ON sa.area_id = a.area_id
		WHERE %[2]s
		GROUP BY sa.area_id, a.area_name, a.area_number
		ORDER BY total_duration_seconds DESC, sa.area_id`, durationExpr, where)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryError("area summaries", err)
	}
	defer closeWithLog(rows, "rows")

	summaries = make([]models.AreaSummary, 0)
	for rows.Next() {
		var s models.AreaSummary
		var name, number sql.NullString
		var total, avg sql.NullFloat64
		if err := rows.Scan(&s.AreaID, &name, &number, &s.VisitCount, &total, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan area summary: %w", err)
		}
		s.AreaName = name.String
		s.AreaNumber = nullStringPtr(number)
		s.TotalDurationMinutes = total.Float64 / 60
		s.AvgDurationMinutes = avg.Float64 / 60
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError("area summaries", err)
	}
	return summaries, nil
}

// FetchRecords returns the filtered presence records ordered by enter time.
func (db *DB) FetchRecords(ctx context.Context, q models.PresenceQuery) (records []models.PresenceRecord, err error) {
	start := time.Now()
	defer func() { metrics.RecordSourceFetch(DriverName, "records", time.Since(start), len(records), err) }()

	if db.conn == nil {
		return nil, ErrClosed
	}
	if len(q.AreaIDs) == 0 {
		return []models.PresenceRecord{}, nil
	}

	where, args := presenceFilter(q)
	query := fmt.Sprintf(`
		SELECT
			sa.area_id,
			a.area_name,
			a.area_number,
			sa.reid,
			sa.enter_time,
			sa.exit_time,
			%s AS duration_seconds
		FROM v_store_analysis sa
		JOIN v_area a ON sa.area_id = a.area_id
		WHERE %s
		ORDER BY sa.enter_time, sa.area_id, sa.reid`, durationExpr, where)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryError("fetch records", err)
	}
	defer closeWithLog(rows, "rows")

	records = make([]models.PresenceRecord, 0)
	for rows.Next() {
		var r models.PresenceRecord
		var name, number sql.NullString
		var duration sql.NullFloat64
		if err := rows.Scan(&r.AreaID, &name, &number, &r.PersonID, &r.EnterTime, &r.ExitTime, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan presence record: %w", err)
		}
		r.AreaName = name.String
		r.AreaNumber = nullStringPtr(number)
		r.EnterTime = r.EnterTime.UTC()
		r.ExitTime = r.ExitTime.UTC()
		if duration.Valid {
			d := duration.Float64
			r.DurationSeconds = &d
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError("fetch records", err)
	}

	logging.Debug().
		Int("areas", len(q.AreaIDs)).
		Int("records", len(records)).
		Dur("elapsed", time.Since(start)).
		Msg("Fetched presence records")
	return records, nil
}

// UpsertAreas inserts or renames areas.
func (db *DB) UpsertAreas(ctx context.Context, areas []models.Area) error {
	if db.conn == nil {
		return ErrClosed
	}
	return db.withTx(ctx, `
		INSERT INTO area (area_id, area_name, area_number) VALUES (?, ?, ?)
		ON CONFLICT (area_id) DO UPDATE SET
			area_name = excluded.area_name,
			area_number = excluded.area_number`,
		len(areas), func(i int) []interface{} {
			a := areas[i]
			return []interface{}{a.ID, a.Name, stringPtrValue(a.Number)}
		})
}

// InsertRecords appends presence records. Area names on the records are
// ignored; areas come from UpsertAreas.
func (db *DB) InsertRecords(ctx context.Context, records []models.PresenceRecord) error {
	if db.conn == nil {
		return ErrClosed
	}
	return db.withTx(ctx, `
		INSERT INTO store_analysis (area_id, reid, enter_time, exit_time) VALUES (?, ?, ?, ?)`,
		len(records), func(i int) []interface{} {
			r := records[i]
			return []interface{}{r.AreaID, r.PersonID, r.EnterTime.UTC(), r.ExitTime.UTC()}
		})
}

// withTx runs one prepared statement n times inside a transaction.
func (db *DB) withTx(ctx context.Context, query string, n int, args func(i int) []interface{}) error {
	if n == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func wrapQueryError(op string, err error) error {
	if isConnectionError(err) {
		logging.Error().Err(err).Str("operation", op).Msg("Database connection lost")
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func stringPtrValue(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
