// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

/*
Package timeline partitions a batch of presence records into fixed-width time
buckets and aggregates per-area metrics inside each bucket.

Buckets are anchored at the earliest valid enter time of the batch. A record
lands in slot floor((enter - first) / interval) and contributes one visit and
its dwell minutes to its area's aggregate in that slot. Only slots that
receive at least one record are emitted unless gap filling is enabled.

The number of slots a batch may span is capped (MaxSlots, 500 by default)
because every bucket becomes one rendered playback frame. A batch that would
exceed the cap fails with a *RangeTooLargeError carrying the smallest
interval that fits:

	buckets, err := timeline.Bucket(records, 15)
	var tooLarge *timeline.RangeTooLargeError
	if errors.As(err, &tooLarge) {
	    // ask the operator to retry with tooLarge.SuggestedIntervalMinutes
	}

An empty or fully invalid batch is not an error; Bucket returns an empty
slice.

Bucketing is pure and deterministic. It never returns partial results
alongside an error.
*/
package timeline
