// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

/*
Package models defines the data structures shared by the Dwellmap packages.

Model Categories:

1. Presence Records:
  - PresenceRecord: one enter/exit observation of a person in an area
  - Area, AreaSummary: known areas and their per-window aggregates
  - PresenceQuery: area set, half-open time window and duration band

2. Timeline:
  - RegionAggregate: visits and total dwell of one area in one bucket.
    The average is derived, never stored.
  - TimeBucket: fixed-width window keyed by area id
  - TimelineSummary, TimelineResponse

3. Heatmap Frames:
  - Metric, NormalizationMode, NormalizationRange
  - RegionHeat, HeatPoint, Ranking, FrameChange, Frame

4. Floorplan Layouts:
  - Layout, Region, Point

5. API Request/Response Models:
  - APIResponse, APIError, Metadata and the ErrCode* constants
  - TimelineRequest, PlaybackSessionRequest, SeekRequest, IntervalRequest
  - PlaybackSession

JSON uses snake_case field names except for metric values, which keep the
camelCase names viewers already send (visitCount, totalDurationMinutes,
avgDurationMinutes). Validation tags are read by internal/validation.
*/
package models
