// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package timeline

import (
	"fmt"
	"time"
)

// Label renders a bucket start time for the playback time display. The
// format coarsens with the bucket width.
func Label(t time.Time, intervalMinutes int) string {
	switch {
	case intervalMinutes <= 0:
		return t.Format(time.RFC3339)
	case intervalMinutes < 24*60:
		return t.Format("2006-01-02 15:04")
	case intervalMinutes < 7*24*60:
		return t.Format("Mon Jan 2")
	case intervalMinutes < 28*24*60:
		return fmt.Sprintf("Week of %s", t.Format("Jan 2"))
	default:
		return t.Format("Jan 2006")
	}
}
