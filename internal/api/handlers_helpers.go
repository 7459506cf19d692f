// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dwellmap/internal/layout"
	"github.com/tomtom215/dwellmap/internal/logging"
	"github.com/tomtom215/dwellmap/internal/models"
	"github.com/tomtom215/dwellmap/internal/playback"
	"github.com/tomtom215/dwellmap/internal/presence"
	"github.com/tomtom215/dwellmap/internal/session"
	"github.com/tomtom215/dwellmap/internal/timeline"
	"github.com/tomtom215/dwellmap/internal/validation"
)

// maxBodyBytes bounds JSON request bodies; supplied record batches are the
// largest legitimate payload.
const maxBodyBytes = 16 << 20

// sanitizeLogValue escapes control characters to prevent log injection.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, started time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(started).Milliseconds(),
		},
	})
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	respondErrorDetails(w, status, &models.APIError{Code: code, Message: message}, err)
}

func respondErrorDetails(w http.ResponseWriter, status int, apiErr *models.APIError, err error) {
	if err != nil {
		event := logging.Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Error()
		}
		event.Str("code", sanitizeLogValue(apiErr.Code)).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    apiErr,
	})
}

// respondServiceError maps domain errors from the source, engine, sessions
// and layouts onto HTTP status codes and error codes.
func respondServiceError(w http.ResponseWriter, err error) {
	var rangeErr *timeline.RangeTooLargeError
	var validationErr *validation.RequestValidationError

	switch {
	case errors.As(err, &rangeErr):
		respondErrorDetails(w, http.StatusUnprocessableEntity, &models.APIError{
			Code:    models.ErrCodeRangeTooLarge,
			Message: rangeErr.Error(),
			Details: map[string]interface{}{
				"suggested_interval_minutes": rangeErr.SuggestedIntervalMinutes,
				"total_slots":                rangeErr.TotalSlots,
				"max_slots":                  rangeErr.MaxSlots,
			},
		}, nil)
	case errors.Is(err, playback.ErrNoData):
		respondError(w, http.StatusUnprocessableEntity, models.ErrCodeNoData, "No presence records in the selected window", nil)
	case errors.As(err, &validationErr):
		respondErrorDetails(w, http.StatusBadRequest, validationErr.ToAPIError(), nil)
	case errors.Is(err, timeline.ErrInvalidInterval),
		errors.Is(err, playback.ErrInvalidConfiguration),
		errors.Is(err, session.ErrInvalidScale):
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
	case errors.Is(err, session.ErrNotFound):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Playback session not found", nil)
	case errors.Is(err, layout.ErrNotFound):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Layout not found", nil)
	case errors.Is(err, session.ErrTooManySessions):
		respondError(w, http.StatusTooManyRequests, models.ErrCodeTooMany, "Too many playback sessions", nil)
	case errors.Is(err, presence.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Presence source unavailable", err)
	default:
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to query presence data", err)
	}
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes.
func validateRequest(v interface{}) *models.APIError {
	if validationErr := validation.ValidateStruct(v); validationErr != nil {
		return validationErr.ToAPIError()
	}
	return nil
}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v
// untouched when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, allowEmpty bool) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		respondError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// decodeAndValidate decodes the body into v and validates it.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if !decodeJSON(w, r, v, false) {
		return false
	}
	if apiErr := validateRequest(v); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr, nil)
		return false
	}
	return true
}

// parsePresenceQuery reads the window query parameters. Parse failures
// are returned as validation errors so they render like struct failures.
func parsePresenceQuery(r *http.Request) (models.PresenceQuery, *models.APIError) {
	var q models.PresenceQuery
	params := r.URL.Query()

	if raw := params.Get("area_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return q, paramError("area_ids", "must be a comma separated list of integers")
			}
			q.AreaIDs = append(q.AreaIDs, id)
		}
	}

	var err error
	if q.Start, err = parseTimeParam(params.Get("start")); err != nil {
		return q, paramError("start", "must be an RFC 3339 timestamp")
	}
	if q.End, err = parseTimeParam(params.Get("end")); err != nil {
		return q, paramError("end", "must be an RFC 3339 timestamp")
	}
	if q.MinDurationSeconds, err = parseFloatParam(params.Get("min_duration_seconds")); err != nil {
		return q, paramError("min_duration_seconds", "must be a number")
	}
	if q.MaxDurationSeconds, err = parseFloatParam(params.Get("max_duration_seconds")); err != nil {
		return q, paramError("max_duration_seconds", "must be a number")
	}
	return q, nil
}

func parseTimeParam(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

func parseFloatParam(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func paramError(field, message string) *models.APIError {
	return &models.APIError{
		Code:    models.ErrCodeValidation,
		Message: field + " " + message,
		Details: map[string]interface{}{"field": field},
	}
}
