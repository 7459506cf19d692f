// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package websocket

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/dwellmap/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// setupHub creates a hub running until the test ends
func setupHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

// createTestClient creates a client without a connection
func createTestClient(hub *Hub, sessions ...string) *Client {
	return NewClient(hub, nil, sessions...)
}

// registerClient registers a client and waits for the hub to see it
func registerClient(t *testing.T, hub *Hub, client *Client) {
	t.Helper()
	hub.Register <- client
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		_, ok := hub.clients[client]
		hub.mu.RUnlock()
		if ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("client was not registered")
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message %+v", msg)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	checks := []struct {
		name  string
		check bool
	}{
		{"clients map", hub.clients != nil},
		{"broadcast channel", hub.broadcast != nil},
		{"Register channel", hub.Register != nil},
		{"Unregister channel", hub.Unregister != nil},
		{"empty clients", len(hub.clients) == 0},
	}
	for _, c := range checks {
		if !c.check {
			t.Errorf("%s not initialized", c.name)
		}
	}
}

func TestHub_GetClientCount(t *testing.T) {
	hub := NewHub()
	if hub.GetClientCount() != 0 {
		t.Errorf("Expected 0 clients initially, got %d", hub.GetClientCount())
	}
	for i := 0; i < 5; i++ {
		hub.clients[createTestClient(hub)] = true
	}
	if hub.GetClientCount() != 5 {
		t.Errorf("Expected 5 clients, got %d", hub.GetClientCount())
	}
}

func TestHub_SessionFiltering(t *testing.T) {
	hub := setupHub(t)

	all := createTestClient(hub)
	alpha := createTestClient(hub, "alpha")
	beta := createTestClient(hub, "beta")
	for _, c := range []*Client{all, alpha, beta} {
		registerClient(t, hub, c)
	}

	hub.BroadcastSession("alpha", MessageTypePlaybackFrame, map[string]int{"index": 0})

	if msg := receive(t, all); msg.SessionID != "alpha" {
		t.Errorf("unsubscribed client got session %q, want alpha", msg.SessionID)
	}
	if msg := receive(t, alpha); msg.Type != MessageTypePlaybackFrame {
		t.Errorf("alpha got type %q, want %q", msg.Type, MessageTypePlaybackFrame)
	}
	expectNothing(t, beta)

	hub.BroadcastJSON(MessageTypePong, nil)
	for _, c := range []*Client{all, alpha, beta} {
		if msg := receive(t, c); msg.Type != MessageTypePong {
			t.Errorf("client %d got %q, want untagged pong", c.ID(), msg.Type)
		}
	}
}

func TestHub_OrderPreserved(t *testing.T) {
	hub := setupHub(t)
	client := createTestClient(hub, "s1")
	registerClient(t, hub, client)

	for i := 0; i < 20; i++ {
		hub.BroadcastSession("s1", MessageTypePlaybackFrame, i)
	}
	for i := 0; i < 20; i++ {
		msg := receive(t, client)
		if msg.Data.(int) != i {
			t.Fatalf("message %d carried %v", i, msg.Data)
		}
	}
}

func TestHub_SlowClientDisconnected(t *testing.T) {
	hub := NewHub()
	slow := &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan Message), subscriptions: map[string]struct{}{}}
	fast := createTestClient(hub)
	hub.clients[slow] = true
	hub.clients[fast] = true

	hub.broadcastToClients(Message{Type: MessageTypePlaybackFrame})

	if _, ok := hub.clients[slow]; ok {
		t.Error("slow client should have been removed")
	}
	if _, ok := <-slow.send; ok {
		t.Error("slow client send channel should be closed")
	}
	if len(fast.send) != 1 {
		t.Errorf("fast client buffered %d messages, want 1", len(fast.send))
	}
}

func TestHub_BroadcastDropsWhenFull(t *testing.T) {
	hub := NewHub()
	for i := 0; i < cap(hub.broadcast); i++ {
		hub.Broadcast(Message{Type: MessageTypePlaybackFrame})
	}

	done := make(chan struct{})
	go func() {
		hub.Broadcast(Message{Type: MessageTypePlaybackFrame})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a full queue")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := setupHub(t)
	client := createTestClient(hub)
	registerClient(t, hub, client)

	hub.Unregister <- client
	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected closed send channel")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed after unregister")
	}
	if hub.GetClientCount() != 0 {
		t.Errorf("GetClientCount() = %d, want 0", hub.GetClientCount())
	}
}

func TestHub_RunWithContext_Shutdown(t *testing.T) {
	tests := []struct {
		name   string
		ctx    func() (context.Context, context.CancelFunc)
		want   error
		reason ShutdownReason
	}{
		{
			name: "canceled",
			ctx:  func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) },
			want: context.Canceled, reason: ShutdownReasonContextCanceled,
		},
		{
			name: "deadline",
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), 20*time.Millisecond)
			},
			want: context.DeadlineExceeded, reason: ShutdownReasonContextDeadline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub()
			client := createTestClient(hub)
			hub.clients[client] = true

			ctx, cancel := tt.ctx()
			errCh := make(chan error, 1)
			go func() { errCh <- hub.RunWithContext(ctx) }()
			if tt.want == context.Canceled {
				cancel()
			} else {
				defer cancel()
			}

			select {
			case err := <-errCh:
				if !errors.Is(err, tt.want) {
					t.Errorf("RunWithContext() = %v, want %v", err, tt.want)
				}
			case <-time.After(time.Second):
				t.Fatal("hub did not stop")
			}
			if got := getShutdownReason(ctx); got != tt.reason {
				t.Errorf("reason = %q, want %q", got, tt.reason)
			}
			if hub.GetClientCount() != 0 {
				t.Error("clients not closed on shutdown")
			}
		})
	}
}

func TestMarshalMessage(t *testing.T) {
	data, err := MarshalMessage(Message{Type: MessageTypePlaybackCleared, SessionID: "abc"})
	if err != nil {
		t.Fatalf("MarshalMessage() error = %v", err)
	}
	got := string(data)
	for _, want := range []string{`"type":"playback_cleared"`, `"session_id":"abc"`, `"data":null`} {
		if !strings.Contains(got, want) {
			t.Errorf("MarshalMessage() = %s, missing %s", got, want)
		}
	}

	untagged, _ := MarshalMessage(Message{Type: MessageTypePong})
	if strings.Contains(string(untagged), "session_id") {
		t.Errorf("untagged message includes session_id: %s", untagged)
	}
}
