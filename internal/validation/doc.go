// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built once (WithRequiredStructEnabled) and
// shared by all handlers. Field names in errors use the json tag, and two
// custom tags are registered:
//
//   - metric: visitCount, totalDurationMinutes or avgDurationMinutes
//   - normmode: fixed or relative
//
// Failures convert to the API error envelope with ToAPIError:
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
