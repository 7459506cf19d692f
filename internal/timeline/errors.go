// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package timeline

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInterval is returned for a non-positive or oversized bucket width
	ErrInvalidInterval = errors.New("interval minutes must be a positive integer")

	// ErrRangeTooLarge matches any *RangeTooLargeError via errors.Is
	ErrRangeTooLarge = errors.New("time range produces too many buckets")
)

// RangeTooLargeError reports a batch whose span needs more slots than allowed
type RangeTooLargeError struct {
	TotalSlots               int64
	MaxSlots                 int
	IntervalMinutes          int
	SuggestedIntervalMinutes int64
}

func (e *RangeTooLargeError) Error() string {
	return fmt.Sprintf("time range needs %d buckets of %d minutes (maximum %d); use an interval of at least %d minutes or narrow the range",
		e.TotalSlots, e.IntervalMinutes, e.MaxSlots, e.SuggestedIntervalMinutes)
}

// Is lets errors.Is(err, ErrRangeTooLarge) match
func (e *RangeTooLargeError) Is(target error) bool {
	return target == ErrRangeTooLarge
}
