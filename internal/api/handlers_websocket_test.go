// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/slidecast/internal/history"
	"github.com/tomtom215/slidecast/internal/models"
	ws "github.com/tomtom215/slidecast/internal/websocket"
)

func newWebSocketTestServer(t *testing.T, store *history.Store) (*httptest.Server, *ws.Hub) {
	t.Helper()

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.RunWithContext(ctx) }()

	handler := NewHandler(testConfig(), store, hub, newRecordingProcessor())
	server := httptest.NewServer(http.HandlerFunc(handler.WebSocket))
	t.Cleanup(server.Close)
	return server, hub
}

func dialWebSocket(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readStateMessage(t *testing.T, conn *websocket.Conn) models.State {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg struct {
		Type string       `json:"type"`
		Data models.State `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	if msg.Type != "state" {
		t.Fatalf("message type = %q, want state", msg.Type)
	}
	return msg.Data
}

func TestWebSocketSeedsCurrentSlide(t *testing.T) {
	store := history.NewStore(history.NewMemoryKV())
	err := store.With(context.Background(), func(h *history.History) error {
		h.Append(models.NewSlideEntry("100", "<img src='current'>", "blue"))
		return nil
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}

	server, _ := newWebSocketTestServer(t, store)
	conn := dialWebSocket(t, server)

	state := readStateMessage(t, conn)
	if state.HTML != "<img src='current'>" || state.Color != "blue" {
		t.Errorf("seeded state = %+v", state)
	}
}

func TestWebSocketEmptyHistoryNoSeed(t *testing.T) {
	store := history.NewStore(history.NewMemoryKV())
	server, hub := newWebSocketTestServer(t, store)
	conn := dialWebSocket(t, server)

	// No seed should arrive; the first message is the next broadcast.
	waitForClients(t, hub, 1)
	hub.BroadcastState(models.State{HTML: "<p>first</p>", Color: "#fff"})

	state := readStateMessage(t, conn)
	if state.HTML != "<p>first</p>" {
		t.Errorf("first message = %+v, want the broadcast", state)
	}
}

func TestWebSocketBroadcastReachesAllViewers(t *testing.T) {
	store := history.NewStore(history.NewMemoryKV())
	server, hub := newWebSocketTestServer(t, store)

	first := dialWebSocket(t, server)
	second := dialWebSocket(t, server)
	waitForClients(t, hub, 2)

	hub.BroadcastState(models.State{HTML: "<p>shared</p>", Color: "#000"})

	for _, conn := range []*websocket.Conn{first, second} {
		state := readStateMessage(t, conn)
		if state.HTML != "<p>shared</p>" || state.Color != "#000" {
			t.Errorf("viewer state = %+v", state)
		}
	}
}

func waitForClients(t *testing.T, hub *ws.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() < want {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", hub.ClientCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
