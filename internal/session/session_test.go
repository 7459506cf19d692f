// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package session

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/dwellmap/internal/config"
	"github.com/tomtom215/dwellmap/internal/logging"
	"github.com/tomtom215/dwellmap/internal/models"
	"github.com/tomtom215/dwellmap/internal/playback"
	"github.com/tomtom215/dwellmap/internal/timeline"
	"github.com/tomtom215/dwellmap/internal/websocket"
)

func TestMain(m *testing.M) {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
	os.Exit(m.Run())
}

type hubMessage struct {
	session string
	typ     string
	data    interface{}
}

// recordingHub captures broadcasts in order
type recordingHub struct {
	mu   sync.Mutex
	msgs []hubMessage
}

func (h *recordingHub) BroadcastSession(sessionID, messageType string, data interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, hubMessage{sessionID, messageType, data})
}

func (h *recordingHub) ofType(typ string) []hubMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []hubMessage
	for _, m := range h.msgs {
		if m.typ == typ {
			out = append(out, m)
		}
	}
	return out
}

func (h *recordingHub) frameIndexes() []int {
	var out []int
	for _, m := range h.ofType(websocket.MessageTypePlaybackFrame) {
		out = append(out, m.data.(*models.Frame).Index)
	}
	return out
}

var base = time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)

func rec(area int64, name, person string, enterMin, stayMin int) models.PresenceRecord {
	enter := base.Add(time.Duration(enterMin) * time.Minute)
	return models.PresenceRecord{
		AreaID:    area,
		AreaName:  name,
		PersonID:  person,
		EnterTime: enter,
		ExitTime:  enter.Add(time.Duration(stayMin) * time.Minute),
	}
}

// threeHours puts activity in three consecutive hourly buckets
func threeHours() []models.PresenceRecord {
	return []models.PresenceRecord{
		rec(1, "Entrance", "p1", 0, 10),
		rec(2, "Checkout", "p2", 5, 20),
		rec(1, "Entrance", "p3", 70, 5),
		rec(3, "Bakery", "p4", 130, 15),
		rec(3, "Bakery", "p5", 150, 30),
	}
}

type env struct {
	mgr   *Manager
	hub   *recordingHub
	sched *playback.ManualScheduler
}

func newEnv(t *testing.T, layouts LayoutGetter) *env {
	t.Helper()
	hub := &recordingHub{}
	sched := playback.NewManualScheduler()
	builder := NewBuilder(nil,
		config.TimelineConfig{IntervalMinutes: 60, MaxSlots: timeline.DefaultMaxSlots},
		config.FilterConfig{MaxDurationSeconds: 999999})
	mgr := NewManager(builder, layouts, hub, ManagerConfig{
		Playback:  config.PlaybackConfig{IntervalMs: 1000, SessionTTL: 30 * time.Minute, MaxSessions: 2},
		Heatmap:   config.HeatmapConfig{Metric: "visitCount", Mode: "fixed", RangeMin: 0, RangeMax: 10, Radius: 50, TopN: 10},
		Scheduler: sched,
	})
	return &env{mgr: mgr, hub: hub, sched: sched}
}

func request(records []models.PresenceRecord) *models.PlaybackSessionRequest {
	return &models.PlaybackSessionRequest{
		TimelineRequest: models.TimelineRequest{Records: records},
	}
}

func TestManager_CreatePlaysToFinish(t *testing.T) {
	e := newEnv(t, nil)

	s, err := e.mgr.Create(context.Background(), request(threeHours()))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if s.State() != playback.Playing {
		t.Fatalf("State() = %v, want playing", s.State())
	}
	if got := e.hub.frameIndexes(); len(got) != 1 || got[0] != 0 {
		t.Fatalf("frames after Start = %v, want [0]", got)
	}

	e.sched.Advance(time.Second)
	e.sched.Advance(time.Second)
	if got := e.hub.frameIndexes(); len(got) != 3 || got[2] != 2 {
		t.Fatalf("frames = %v, want [0 1 2]", got)
	}

	e.sched.Advance(time.Second)
	if s.State() != playback.Finished {
		t.Errorf("State() = %v, want finished", s.State())
	}
	if n := len(e.hub.ofType(websocket.MessageTypePlaybackFinished)); n != 1 {
		t.Errorf("finished messages = %d, want 1", n)
	}

	for _, m := range e.hub.msgs {
		if m.session != s.ID() {
			t.Errorf("message %q tagged %q, want %q", m.typ, m.session, s.ID())
		}
	}
}

func TestSession_FrameContent(t *testing.T) {
	e := newEnv(t, nil)
	s, err := e.mgr.Create(context.Background(), request(threeHours()))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	f := s.Frame()
	if f == nil {
		t.Fatal("Frame() = nil after Start")
	}
	if f.Total != 3 || f.Index != 0 {
		t.Errorf("Index/Total = %d/%d, want 0/3", f.Index, f.Total)
	}
	if f.Label != "2026-01-12 09:00" {
		t.Errorf("Label = %q", f.Label)
	}
	if len(f.Regions) != 2 || len(f.Heat) != 2 {
		t.Fatalf("regions/heat = %d/%d, want 2/2", len(f.Regions), len(f.Heat))
	}
	// fixed range 0..10, one visit each
	for _, h := range f.Heat {
		if h.Normalized != 0.1 {
			t.Errorf("area %d normalized = %v, want 0.1", h.AreaID, h.Normalized)
		}
	}
	if f.Ranking.TotalVisits != 2 || len(f.Ranking.Entries) != 2 {
		t.Errorf("Ranking = %+v", f.Ranking)
	}
	if f.Points != nil {
		t.Errorf("Points without a layout = %v, want nil", f.Points)
	}

	s.Seek(2)
	f = s.Frame()
	if f.Index != 2 {
		t.Fatalf("Index after Seek = %d, want 2", f.Index)
	}
	var bakery *models.FrameChange
	for i := range f.Changes {
		if f.Changes[i].AreaID == 3 {
			bakery = &f.Changes[i]
		}
	}
	if bakery == nil || bakery.ChangePercent != 100 {
		t.Errorf("bakery change = %+v, want growth from zero", bakery)
	}
}

type staticLayouts map[string]*models.Layout

func (s staticLayouts) Get(ctx context.Context, id string) (*models.Layout, error) {
	l, ok := s[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l, nil
}

func TestSession_LayoutPoints(t *testing.T) {
	id := "7f1b9a3c-1111-4a2b-9c3d-000000000001"
	layouts := staticLayouts{id: {
		ID:   id,
		Name: "Ground",
		Regions: []models.Region{{
			Name:    "Front",
			AreaIDs: []int64{1, 2},
			Polygon: []models.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}},
		}},
	}}
	e := newEnv(t, layouts)

	req := request(threeHours())
	req.LayoutID = id
	s, err := e.mgr.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	f := s.Frame()
	if len(f.Points) == 0 {
		t.Fatal("expected heat points inside the drawn region")
	}
	// areas 1 and 2 merge into two visits, 0.2 of the fixed range
	for _, p := range f.Points {
		if p.Value != 20 {
			t.Fatalf("point value = %v, want 20", p.Value)
		}
	}
	if got := s.Status().LayoutID; got != id {
		t.Errorf("Status().LayoutID = %q, want %q", got, id)
	}

	req.LayoutID = "7f1b9a3c-1111-4a2b-9c3d-000000000002"
	if _, err := e.mgr.Create(context.Background(), req); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown layout error = %v, want ErrNotFound", err)
	}
}

func TestSession_LayoutRegionsSharingAnArea(t *testing.T) {
	id := "7f1b9a3c-1111-4a2b-9c3d-000000000003"
	layouts := staticLayouts{id: {
		ID:   id,
		Name: "Ground",
		Regions: []models.Region{
			{
				Name:    "Front",
				AreaIDs: []int64{1, 2},
				Polygon: []models.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}},
			},
			{
				Name:    "Tills",
				AreaIDs: []int64{2},
				Polygon: []models.Point{{X: 200, Y: 0}, {X: 300, Y: 0}, {X: 300, Y: 100}, {X: 200, Y: 100}},
			},
		},
	}}
	e := newEnv(t, layouts)

	req := request([]models.PresenceRecord{rec(2, "Checkout", "p1", 0, 10)})
	req.LayoutID = id
	s, err := e.mgr.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	var front, tills int
	for _, p := range s.Frame().Points {
		if p.Value != 10 {
			t.Fatalf("point value = %v, want 10", p.Value)
		}
		if p.X <= 100 {
			front++
		} else {
			tills++
		}
	}
	if front == 0 || tills == 0 {
		t.Errorf("points front=%d tills=%d, want both regions filled", front, tills)
	}
}

func TestManager_FlatFixedRange(t *testing.T) {
	e := newEnv(t, nil)
	five := 5.0
	req := request(threeHours())
	req.RangeMin, req.RangeMax = &five, &five

	s, err := e.mgr.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	heat := s.Frame().Heat
	if len(heat) == 0 {
		t.Fatal("expected heat entries")
	}
	for _, h := range heat {
		if h.Normalized != 0 || h.Heat != 0 {
			t.Errorf("%s heat = %v/%v, want 0 for a flat range", h.AreaName, h.Normalized, h.Heat)
		}
	}
}

func TestManager_CreateErrors(t *testing.T) {
	one, ten := 1.0, 10.0
	tests := []struct {
		name   string
		mutate func(*models.PlaybackSessionRequest)
		want   error
	}{
		{
			name:   "no valid records",
			mutate: func(r *models.PlaybackSessionRequest) { r.Records = []models.PresenceRecord{{AreaID: 1}} },
			want:   playback.ErrNoData,
		},
		{
			name: "range too large",
			mutate: func(r *models.PlaybackSessionRequest) {
				r.Records = []models.PresenceRecord{rec(1, "a", "p", 0, 1), rec(1, "a", "q", 60*24*30, 1)}
				r.IntervalMinutes = 1
			},
			want: timeline.ErrRangeTooLarge,
		},
		{
			name:   "inverted fixed range",
			mutate: func(r *models.PlaybackSessionRequest) { r.RangeMin, r.RangeMax = &ten, &one },
			want:   ErrInvalidScale,
		},
		{
			name:   "layout without store",
			mutate: func(r *models.PlaybackSessionRequest) { r.LayoutID = "7f1b9a3c-1111-4a2b-9c3d-000000000001" },
			want:   ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, nil)
			req := request(threeHours())
			tt.mutate(req)
			_, err := e.mgr.Create(context.Background(), req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
			if e.mgr.Count() != 0 {
				t.Errorf("Count() = %d after failed Create", e.mgr.Count())
			}
		})
	}
}

func TestManager_MaxSessions(t *testing.T) {
	e := newEnv(t, nil)
	for i := 0; i < 2; i++ {
		if _, err := e.mgr.Create(context.Background(), request(threeHours())); err != nil {
			t.Fatalf("Create() #%d error = %v", i, err)
		}
	}
	if _, err := e.mgr.Create(context.Background(), request(threeHours())); !errors.Is(err, ErrTooManySessions) {
		t.Errorf("third Create() error = %v, want ErrTooManySessions", err)
	}
	if got := len(e.mgr.List()); got != 2 {
		t.Errorf("List() len = %d, want 2", got)
	}
}

func TestManager_Delete(t *testing.T) {
	e := newEnv(t, nil)
	s, err := e.mgr.Create(context.Background(), request(threeHours()))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !e.mgr.Delete(s.ID()) {
		t.Fatal("Delete() = false, want true")
	}
	if e.mgr.Delete(s.ID()) {
		t.Error("second Delete() = true, want false")
	}
	if _, err := e.mgr.Get(s.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if n := len(e.hub.ofType(websocket.MessageTypePlaybackCleared)); n != 1 {
		t.Errorf("cleared messages = %d, want 1", n)
	}
	if n := len(e.hub.ofType(websocket.MessageTypeSessionClosed)); n != 1 {
		t.Errorf("closed messages = %d, want 1", n)
	}

	// no tick may deliver after the session is gone
	before := len(e.hub.frameIndexes())
	e.sched.Advance(5 * time.Second)
	if after := len(e.hub.frameIndexes()); after != before {
		t.Errorf("frames after delete: %d, want %d", after, before)
	}
}

func TestManager_Reap(t *testing.T) {
	e := newEnv(t, nil)
	playing, err := e.mgr.Create(context.Background(), request(threeHours()))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	paused, err := e.mgr.Create(context.Background(), request(threeHours()))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	paused.Pause()

	if n := e.mgr.Reap(time.Now()); n != 0 {
		t.Errorf("Reap(now) = %d, want 0", n)
	}

	later := time.Now().Add(31 * time.Minute)
	if n := e.mgr.Reap(later); n != 1 {
		t.Fatalf("Reap(later) = %d, want 1", n)
	}
	if _, err := e.mgr.Get(paused.ID()); !errors.Is(err, ErrNotFound) {
		t.Error("paused idle session should be reaped")
	}
	if _, err := e.mgr.Get(playing.ID()); err != nil {
		t.Error("playing session should survive the reaper")
	}
}

func TestSession_StateMessages(t *testing.T) {
	e := newEnv(t, nil)
	s, err := e.mgr.Create(context.Background(), request(threeHours()))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	s.Pause()
	s.Pause() // no-op, no message
	s.Resume()
	s.Stop()

	var states []string
	for _, m := range e.hub.ofType(websocket.MessageTypePlaybackState) {
		states = append(states, m.data.(playback.Status).State.String())
	}
	want := []string{"playing", "paused", "playing", "idle"}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("states[%d] = %q, want %q", i, states[i], want[i])
		}
	}
	if s.Frame() != nil {
		t.Error("Frame() after Stop should be nil")
	}
}

func TestSession_SeekPreviewThrottle(t *testing.T) {
	e := newEnv(t, nil)
	s, err := e.mgr.Create(context.Background(), request(threeHours()))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !s.Seek(1) {
		t.Fatal("Seek outside a gesture must not be throttled")
	}

	s.BeginSeek()
	applied := 0
	for i := 0; i < 50; i++ {
		if s.Seek(i % 3) {
			applied++
		}
	}
	if applied == 0 || applied >= 50 {
		t.Errorf("applied previews = %d, want some but not all", applied)
	}

	s.EndSeek(2)
	if f := s.Frame(); f.Index != 2 {
		t.Errorf("Index after EndSeek = %d, want 2", f.Index)
	}
	if s.Status().Seeking {
		t.Error("Seeking still set after EndSeek")
	}
}

func TestSession_SetInterval(t *testing.T) {
	e := newEnv(t, nil)
	s, err := e.mgr.Create(context.Background(), request(threeHours()))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.SetInterval(0); !errors.Is(err, playback.ErrInvalidConfiguration) {
		t.Errorf("SetInterval(0) error = %v", err)
	}
	if err := s.SetInterval(250); err != nil {
		t.Fatalf("SetInterval(250) error = %v", err)
	}
	if got := s.Status().IntervalMs; got != 250 {
		t.Errorf("IntervalMs = %d, want 250", got)
	}
}

func TestManager_CloseAll(t *testing.T) {
	e := newEnv(t, nil)
	for i := 0; i < 2; i++ {
		if _, err := e.mgr.Create(context.Background(), request(threeHours())); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	e.mgr.CloseAll()
	if e.mgr.Count() != 0 {
		t.Errorf("Count() = %d, want 0", e.mgr.Count())
	}
	if n := len(e.hub.ofType(websocket.MessageTypeSessionClosed)); n != 2 {
		t.Errorf("closed messages = %d, want 2", n)
	}
}
