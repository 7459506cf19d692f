// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package presence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tomtom215/dwellmap/internal/logging"
	"github.com/tomtom215/dwellmap/internal/metrics"
	"github.com/tomtom215/dwellmap/internal/models"
)

// PostgresDriver labels the external source in metrics and health output.
const PostgresDriver = "postgres"

// pgDurationExpr is the stay length in fractional seconds.
const pgDurationExpr = "EXTRACT(EPOCH FROM (sa.exit_time - sa.enter_time))"

// pgFilter is shared by the summary and record queries. gorm expands the
// area id slice for IN ?.
const pgFilter = `sa.area_id IN ?
	AND sa.enter_time >= ?
	AND sa.enter_time < ?
	AND sa.exit_time > sa.enter_time
	AND ` + pgDurationExpr + ` > ?
	AND ` + pgDurationExpr + ` < ?`

// Postgres reads presence data from the v_area and v_store_analysis views.
type Postgres struct {
	db *gorm.DB
}

// ConnectWithRetry opens a gorm connection, retrying while the server comes up.
func ConnectWithRetry(ctx context.Context, dsn string, attempts int, delay time.Duration) (*gorm.DB, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err == nil {
			sqlDB, derr := db.DB()
			if derr == nil {
				derr = sqlDB.PingContext(ctx)
			}
			if derr == nil {
				return db, nil
			}
			err = derr
		}
		lastErr = err

		logging.Warn().Err(err).Int("attempt", i).Int("attempts", attempts).Msg("PostgreSQL not ready")
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("db connect failed after %d attempts: %w", attempts, lastErr)
}

// NewPostgres connects to dsn and returns a Source over the presence views.
func NewPostgres(ctx context.Context, dsn string, attempts int, delay time.Duration) (*Postgres, error) {
	db, err := ConnectWithRetry(ctx, dsn, attempts, delay)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxIdleTime(30 * time.Second)

	return &Postgres{db: db}, nil
}

// NewPostgresFromDB wraps an existing gorm handle.
func NewPostgresFromDB(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

// DB exposes the gorm handle, mainly for tests that load fixtures.
func (p *Postgres) DB() *gorm.DB {
	return p.db
}

// Driver returns PostgresDriver.
func (p *Postgres) Driver() string {
	return PostgresDriver
}

// Ping checks connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type areaRow struct {
	AreaID     int64
	AreaName   sql.NullString
	AreaNumber sql.NullString
}

// ListAreas returns every named area ordered by id.
func (p *Postgres) ListAreas(ctx context.Context) (areas []models.Area, err error) {
	start := time.Now()
	defer func() { metrics.RecordSourceFetch(PostgresDriver, "areas", time.Since(start), len(areas), err) }()

	var rows []areaRow
	err = p.db.WithContext(ctx).Raw(`
		SELECT DISTINCT area_id, area_name, area_number
		FROM v_area
		WHERE area_name IS NOT NULL
		ORDER BY area_id`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list areas: %w", err)
	}

	areas = make([]models.Area, len(rows))
	for i, r := range rows {
		areas[i] = models.Area{ID: r.AreaID, Name: r.AreaName.String, Number: nullString(r.AreaNumber)}
	}
	return areas, nil
}

type summaryRow struct {
	AreaID               int64
	AreaName             sql.NullString
	AreaNumber           sql.NullString
	VisitCount           int
	TotalDurationSeconds sql.NullFloat64
	AvgDurationSeconds   sql.NullFloat64
}

// AreaSummaries aggregates distinct visitors and stay totals per area.
func (p *Postgres) AreaSummaries(ctx context.Context, q models.PresenceQuery) (summaries []models.AreaSummary, err error) {
	start := time.Now()
	defer func() { metrics.RecordSourceFetch(PostgresDriver, "summaries", time.Since(start), len(summaries), err) }()

	if len(q.AreaIDs) == 0 {
		return []models.AreaSummary{}, nil
	}

	var rows []summaryRow
	err = p.db.WithContext(ctx).Raw(`
		SELECT
			sa.area_id,
			a.area_name,
			a.area_number,
			COUNT(DISTINCT sa.reid) AS visit_count,
			SUM(`+pgDurationExpr+`) AS total_duration_seconds,
			AVG(`+pgDurationExpr+`) AS avg_duration_seconds
		FROM v_store_analysis sa
		JOIN v_area a ON sa.area_id = a.area_id
		WHERE `+pgFilter+`
		GROUP BY sa.area_id, a.area_name, a.area_number
		ORDER BY total_duration_seconds DESC, sa.area_id`,
		pgArgs(q)...).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query area summaries: %w", err)
	}

	summaries = make([]models.AreaSummary, len(rows))
	for i, r := range rows {
		summaries[i] = models.AreaSummary{
			AreaID:               r.AreaID,
			AreaName:             r.AreaName.String,
			AreaNumber:           nullString(r.AreaNumber),
			VisitCount:           r.VisitCount,
			TotalDurationMinutes: r.TotalDurationSeconds.Float64 / 60,
			AvgDurationMinutes:   r.AvgDurationSeconds.Float64 / 60,
		}
	}
	return summaries, nil
}

type recordRow struct {
	AreaID          int64
	AreaName        sql.NullString
	AreaNumber      sql.NullString
	Reid            string
	EnterTime       time.Time
	ExitTime        time.Time
	DurationSeconds sql.NullFloat64
}

// FetchRecords returns filtered stays ordered by enter time.
func (p *Postgres) FetchRecords(ctx context.Context, q models.PresenceQuery) (records []models.PresenceRecord, err error) {
	start := time.Now()
	defer func() { metrics.RecordSourceFetch(PostgresDriver, "records", time.Since(start), len(records), err) }()

	if len(q.AreaIDs) == 0 {
		return []models.PresenceRecord{}, nil
	}

	var rows []recordRow
	err = p.db.WithContext(ctx).Raw(`
		SELECT
			sa.area_id,
			a.area_name,
			a.area_number,
			sa.reid,
			sa.enter_time,
			sa.exit_time,
			`+pgDurationExpr+` AS duration_seconds
		FROM v_store_analysis sa
		JOIN v_area a ON sa.area_id = a.area_id
		WHERE `+pgFilter+`
		ORDER BY sa.enter_time, sa.area_id, sa.reid`,
		pgArgs(q)...).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}

	records = make([]models.PresenceRecord, len(rows))
	for i, r := range rows {
		rec := models.PresenceRecord{
			AreaID:     r.AreaID,
			AreaName:   r.AreaName.String,
			AreaNumber: nullString(r.AreaNumber),
			PersonID:   r.Reid,
			EnterTime:  r.EnterTime.UTC(),
			ExitTime:   r.ExitTime.UTC(),
		}
		if r.DurationSeconds.Valid {
			d := r.DurationSeconds.Float64
			rec.DurationSeconds = &d
		}
		records[i] = rec
	}
	return records, nil
}

func pgArgs(q models.PresenceQuery) []interface{} {
	return []interface{}{q.AreaIDs, q.Start.UTC(), q.End.UTC(), q.MinDurationSeconds, q.MaxDurationSeconds}
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
