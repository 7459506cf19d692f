// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package api

import (
	"net/http"
	"testing"

	"github.com/tomtom215/dwellmap/internal/models"
)

func square(x, y float64) []models.Point {
	return []models.Point{{X: x, Y: y}, {X: x + 100, Y: y}, {X: x + 100, Y: y + 100}, {X: x, Y: y + 100}}
}

func groundFloor(name string) models.Layout {
	return models.Layout{
		Name:      name,
		Floorplan: "floor-0.png",
		Regions: []models.Region{
			{Name: "Entrance", AreaIDs: []int64{1}, Polygon: square(0, 0)},
			{Name: "Checkout", AreaIDs: []int64{2}, Polygon: square(200, 0)},
		},
	}
}

func TestLayouts_CRUD(t *testing.T) {
	e := newTestEnv(t)

	var created models.Layout
	decodeEnvelope(t, e.do(t, http.MethodPost, "/api/v1/layouts", groundFloor("Ground floor")), http.StatusCreated, &created)
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("created layout missing id or timestamp: %+v", created)
	}
	decodeEnvelope(t, e.do(t, http.MethodPost, "/api/v1/layouts", groundFloor("Annex")), http.StatusCreated, nil)

	var list []models.Layout
	decodeEnvelope(t, e.do(t, http.MethodGet, "/api/v1/layouts", nil), http.StatusOK, &list)
	if len(list) != 2 || list[0].Name != "Annex" || list[1].Name != "Ground floor" {
		t.Errorf("list not ordered by name: %+v", list)
	}

	path := "/api/v1/layouts/" + created.ID
	update := groundFloor("Ground floor v2")
	update.Regions = update.Regions[:1]

	var updated models.Layout
	decodeEnvelope(t, e.do(t, http.MethodPut, path, update), http.StatusOK, &updated)
	if updated.ID != created.ID || updated.Name != "Ground floor v2" || len(updated.Regions) != 1 {
		t.Errorf("updated = %+v", updated)
	}

	var got models.Layout
	decodeEnvelope(t, e.do(t, http.MethodGet, path, nil), http.StatusOK, &got)
	if got.Name != "Ground floor v2" {
		t.Errorf("get after update = %q", got.Name)
	}

	if rr := e.do(t, http.MethodDelete, path, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	expectError(t, e.do(t, http.MethodGet, path, nil), http.StatusNotFound, models.ErrCodeNotFound)
	expectError(t, e.do(t, http.MethodDelete, path, nil), http.StatusNotFound, models.ErrCodeNotFound)
	expectError(t, e.do(t, http.MethodPut, path, update), http.StatusNotFound, models.ErrCodeNotFound)
}

func TestLayouts_Invalid(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name   string
		mutate func(*models.Layout)
	}{
		{"missing name", func(l *models.Layout) { l.Name = "" }},
		{"no regions", func(l *models.Layout) { l.Regions = nil }},
		{"region without areas", func(l *models.Layout) { l.Regions[0].AreaIDs = nil }},
		{"open polygon", func(l *models.Layout) { l.Regions[1].Polygon = l.Regions[1].Polygon[:2] }},
		{"zero area id", func(l *models.Layout) { l.Regions[0].AreaIDs = []int64{0} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := groundFloor("Ground floor")
			tt.mutate(&l)
			expectError(t, e.do(t, http.MethodPost, "/api/v1/layouts", l), http.StatusBadRequest, models.ErrCodeValidation)
		})
	}
}

func TestLayouts_UsedBySession(t *testing.T) {
	e := newTestEnv(t)

	var l models.Layout
	decodeEnvelope(t, e.do(t, http.MethodPost, "/api/v1/layouts", groundFloor("Ground floor")), http.StatusCreated, &l)

	req := recordsRequest()
	req.LayoutID = l.ID
	s := createSession(t, e, req)
	if s.LayoutID != l.ID {
		t.Errorf("session layout = %q, want %q", s.LayoutID, l.ID)
	}

	var frame models.Frame
	decodeEnvelope(t, e.do(t, http.MethodGet, "/api/v1/playback/sessions/"+s.ID+"/frame", nil), http.StatusOK, &frame)
	if len(frame.Points) == 0 {
		t.Error("frame for a session with a layout has no heat points")
	}
}
