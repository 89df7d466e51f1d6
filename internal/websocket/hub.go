// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

// Package websocket implements the single-room broadcast fan-out: a hub
// tracking live viewer connections and pushing the current slide state to
// all of them. Delivery is at-most-once, best-effort; a viewer that falls
// behind has its frames dropped rather than blocking the room, since the
// authoritative state lives in the history store, not the channel.
package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/slidecast/internal/logging"
	"github.com/tomtom215/slidecast/internal/metrics"
	"github.com/tomtom215/slidecast/internal/models"
)

// MessageTypeState is the single server-to-client frame kind: the full
// filtered current slide. Partial frames are never sent.
const MessageTypeState = "state"

// Client-to-server keepalive frames.
const (
	MessageTypePing = "ping"
	MessageTypePong = "pong"
)

// Message is a websocket frame.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// StateMessage builds the canonical state frame for a slide.
func StateMessage(state models.State) Message {
	return Message{Type: MessageTypeState, Data: state}
}

// Hub maintains the set of active clients and broadcasts state to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext runs the hub until the context is canceled, at which
// point all clients are closed and ctx.Err() is returned. Designed for
// suture supervision.
//
// Selection is priority-ordered (shutdown, then lifecycle, then
// broadcast) so client state is consistent before frames are fanned out.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketClients.Set(float64(count))
	logging.Info().Int("total_clients", count).Msg("viewer connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketClients.Set(float64(count))
	logging.Info().Int("total_clients", count).Msg("viewer disconnected")
}

// broadcastToClients fans a frame out to every client in id order. A
// client whose send buffer is full is dropped; it can reconnect and
// reseed from the history store.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
	if len(toRemove) > 0 {
		logging.Warn().Int("dropped", len(toRemove)).Msg("dropped slow viewers during broadcast")
	}
	metrics.WebSocketClients.Set(float64(len(h.clients)))
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	count := len(h.clients)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	metrics.WebSocketClients.Set(0)
	logging.Info().
		Str("component", "websocket-hub").
		AnErr("reason", ctx.Err()).
		Int("clients_closed", count).
		Msg("websocket hub stopped")
}

// BroadcastState queues the current slide state for fan-out to every
// viewer. Best-effort: when the hub's own queue is full the frame is
// dropped and viewers converge on the next mutation.
func (h *Hub) BroadcastState(state models.State) {
	select {
	case h.broadcast <- StateMessage(state):
		metrics.BroadcastsSent.Inc()
	default:
		logging.Warn().Msg("broadcast channel full, dropping state frame")
	}
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
