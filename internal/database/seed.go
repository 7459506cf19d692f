// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tomtom215/dwellmap/internal/models"
)

// sampleAreas is a small store floor used by the demo dataset.
var sampleAreas = []struct {
	id     int64
	name   string
	number string
	// weight scales how busy the area is relative to the others
	weight int
	// meanStay is the typical dwell time
	meanStay time.Duration
}{
	{1, "Entrance", "A-01", 10, 40 * time.Second},
	{2, "Produce", "B-01", 7, 4 * time.Minute},
	{3, "Bakery", "B-02", 5, 3 * time.Minute},
	{4, "Electronics", "C-01", 3, 9 * time.Minute},
	{5, "Checkout", "D-01", 8, 2 * time.Minute},
	{6, "Cafe", "D-02", 2, 18 * time.Minute},
}

// SampleDays is how many days of visits SeedSampleData generates.
const SampleDays = 3

// SampleStart is the first day of the demo dataset, at midnight UTC.
var SampleStart = time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

// SeedSampleData fills empty tables with a deterministic demo dataset and
// returns the number of presence records written. Existing data is left
// untouched and 0 is returned.
func (db *DB) SeedSampleData(ctx context.Context) (int, error) {
	var existing int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM store_analysis").Scan(&existing); err != nil {
		return 0, fmt.Errorf("failed to count existing records: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	areas, records := sampleData(newRand())
	if err := db.UpsertAreas(ctx, areas); err != nil {
		return 0, err
	}
	if err := db.InsertRecords(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// sampleData generates visits between 08:00 and 22:00 with a midday and an
// evening peak.
func sampleData(rng *rand.Rand) ([]models.Area, []models.PresenceRecord) {
	areas := make([]models.Area, len(sampleAreas))
	for i, a := range sampleAreas {
		number := a.number
		areas[i] = models.Area{ID: a.id, Name: a.name, Number: &number}
	}

	var records []models.PresenceRecord
	person := 0
	for day := 0; day < SampleDays; day++ {
		dayStart := SampleStart.AddDate(0, 0, day)
		for hour := 8; hour < 22; hour++ {
			busy := 1
			if hour >= 11 && hour <= 13 || hour >= 17 && hour <= 19 {
				busy = 3
			}
			for _, a := range sampleAreas {
				visits := a.weight * busy / 2
				for v := 0; v < visits; v++ {
					person++
					enter := dayStart.Add(time.Duration(hour)*time.Hour +
						time.Duration(rng.Intn(3600))*time.Second)
					// Stays vary between half and one and a half times the mean
					stay := a.meanStay/2 + time.Duration(rng.Int63n(int64(a.meanStay)))
					records = append(records, models.PresenceRecord{
						AreaID:    a.id,
						PersonID:  fmt.Sprintf("reid-%05d", person),
						EnterTime: enter,
						ExitTime:  enter.Add(stay),
					})
				}
			}
		}
	}
	return areas, records
}

// newRand returns the fixed-seed source behind the demo dataset.
func newRand() *rand.Rand {
	return rand.New(rand.NewSource(2026))
}
