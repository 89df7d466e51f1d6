// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

package api

import (
	"net/http"

	"github.com/tomtom215/slidecast/internal/logging"
	ws "github.com/tomtom215/slidecast/internal/websocket"
)

// WebSocket upgrades a viewer connection and registers it with the hub.
// GET /ws
//
// A newly connected viewer is seeded with the current slide so it shows
// the same content as everyone else without waiting for the next event.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "websocket service unavailable")
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Err(err).Msg("websocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client

	if entry, err := h.store.Current(r.Context()); err != nil {
		logging.Err(err).Msg("failed to read current slide for new viewer")
	} else if entry != nil {
		client.Enqueue(ws.StateMessage(entry.State()))
	}

	client.Start()
}
