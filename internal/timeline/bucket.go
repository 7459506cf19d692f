// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package timeline

import (
	"sort"
	"time"

	"github.com/tomtom215/dwellmap/internal/models"
)

const (
	// DefaultMaxSlots caps the number of buckets one batch may span
	DefaultMaxSlots = 500

	// MaxIntervalMinutes keeps interval arithmetic inside time.Duration
	MaxIntervalMinutes = 100 * 366 * 24 * 60
)

var epoch = time.Unix(0, 0)

// Options tune a bucketing pass
type Options struct {
	// MaxSlots overrides DefaultMaxSlots when positive
	MaxSlots int
	// FillGaps synthesizes empty buckets between populated ones
	FillGaps bool
}

// Engine buckets record batches with fixed options
type Engine struct {
	opts Options
}

// NewEngine creates an Engine. A non-positive MaxSlots falls back to DefaultMaxSlots.
func NewEngine(opts Options) *Engine {
	if opts.MaxSlots <= 0 {
		opts.MaxSlots = DefaultMaxSlots
	}
	return &Engine{opts: opts}
}

// Bucket partitions records into intervalMinutes-wide buckets using the
// default slot ceiling and no gap filling.
func Bucket(records []models.PresenceRecord, intervalMinutes int) ([]models.TimeBucket, error) {
	return NewEngine(Options{}).Bucket(records, intervalMinutes)
}

// MaxSlots returns the effective slot ceiling
func (e *Engine) MaxSlots() int {
	return e.opts.MaxSlots
}

// Bucket partitions records into intervalMinutes-wide buckets anchored at the
// earliest valid enter time. The result is ordered by StartTime.
func (e *Engine) Bucket(records []models.PresenceRecord, intervalMinutes int) ([]models.TimeBucket, error) {
	if intervalMinutes <= 0 || intervalMinutes > MaxIntervalMinutes {
		return nil, ErrInvalidInterval
	}

	valid := validRecords(records)
	if len(valid) == 0 {
		return []models.TimeBucket{}, nil
	}

	minTime, maxTime := enterBounds(valid)
	interval := time.Duration(intervalMinutes) * time.Minute
	span := maxTime.Sub(minTime)

	totalSlots := ceilDiv(span, interval)
	if totalSlots > int64(e.opts.MaxSlots) {
		return nil, &RangeTooLargeError{
			TotalSlots:               totalSlots,
			MaxSlots:                 e.opts.MaxSlots,
			IntervalMinutes:          intervalMinutes,
			SuggestedIntervalMinutes: SuggestInterval(span, e.opts.MaxSlots),
		}
	}

	slots := make(map[int64]*models.TimeBucket)
	for i := range valid {
		rec := valid[i]
		if rec.EnterTime.Before(minTime) || rec.EnterTime.After(maxTime) {
			continue
		}

		slot := int64(rec.EnterTime.Sub(minTime) / interval)
		// A span of exactly MaxSlots intervals passes the guard but puts a
		// record ending it one slot past the ceiling; fold it into the last.
		if slot >= int64(e.opts.MaxSlots) {
			slot = int64(e.opts.MaxSlots) - 1
		}
		bucket, ok := slots[slot]
		if !ok {
			bucket = &models.TimeBucket{
				StartTime: minTime.Add(time.Duration(slot) * interval),
				Regions:   make(map[int64]*models.RegionAggregate),
			}
			slots[slot] = bucket
		}

		agg, ok := bucket.Regions[rec.AreaID]
		if !ok {
			agg = &models.RegionAggregate{
				AreaID:     rec.AreaID,
				AreaName:   rec.AreaName,
				AreaNumber: rec.AreaNumber,
			}
			bucket.Regions[rec.AreaID] = agg
		}
		agg.VisitCount++
		agg.TotalDurationMinutes += rec.Duration() / 60
	}

	buckets := sortSlots(slots)
	if e.opts.FillGaps {
		buckets = FillGaps(buckets, intervalMinutes)
	}
	return buckets, nil
}

// SuggestInterval returns the smallest whole-minute interval that covers
// span within maxSlots buckets.
func SuggestInterval(span time.Duration, maxSlots int) int64 {
	if maxSlots <= 0 {
		maxSlots = DefaultMaxSlots
	}
	suggested := ceilDiv(span, time.Duration(maxSlots)*time.Minute)
	if suggested < 1 {
		suggested = 1
	}
	return suggested
}

func ceilDiv(span, width time.Duration) int64 {
	q := int64(span / width)
	if span%width != 0 {
		q++
	}
	return q
}

// ValidEnterTime reports whether t is usable as a bucketing instant
func ValidEnterTime(t time.Time) bool {
	return !t.IsZero() && t.After(epoch)
}

func validRecords(records []models.PresenceRecord) []models.PresenceRecord {
	valid := make([]models.PresenceRecord, 0, len(records))
	for i := range records {
		if ValidEnterTime(records[i].EnterTime) {
			valid = append(valid, records[i])
		}
	}
	return valid
}

func enterBounds(records []models.PresenceRecord) (minTime, maxTime time.Time) {
	minTime = records[0].EnterTime
	maxTime = records[0].EnterTime
	for i := 1; i < len(records); i++ {
		t := records[i].EnterTime
		if t.Before(minTime) {
			minTime = t
		}
		if t.After(maxTime) {
			maxTime = t
		}
	}
	return minTime, maxTime
}

func sortSlots(slots map[int64]*models.TimeBucket) []models.TimeBucket {
	keys := make([]int64, 0, len(slots))
	for k := range slots {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	buckets := make([]models.TimeBucket, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, *slots[k])
	}
	return buckets
}
