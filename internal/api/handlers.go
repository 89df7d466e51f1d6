// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

// Package api provides HTTP routing and handlers using the Chi router:
// the Slack webhook receiver, the viewer websocket endpoint, health and
// metrics, and the embedded viewer page.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/slidecast/internal/config"
	"github.com/tomtom215/slidecast/internal/history"
	"github.com/tomtom215/slidecast/internal/logging"
	"github.com/tomtom215/slidecast/internal/models"
	ws "github.com/tomtom215/slidecast/internal/websocket"
)

// eventTimeout bounds background event processing, which may involve
// external fetches.
const eventTimeout = 60 * time.Second

// EventProcessor handles one decoded Slack event in the background.
// Satisfied by *classifier.Classifier.
type EventProcessor interface {
	Process(ctx context.Context, event *models.SlackEvent) error
}

// Handler contains dependencies for the API handlers.
type Handler struct {
	config    *config.Config
	store     *history.Store
	wsHub     *ws.Hub
	processor EventProcessor
	startTime time.Time

	// baseCtx parents background event processing so in-flight events
	// are canceled on shutdown.
	baseCtx context.Context
}

// NewHandler creates an API handler.
func NewHandler(cfg *config.Config, store *history.Store, wsHub *ws.Hub, processor EventProcessor) *Handler {
	return &Handler{
		config:    cfg,
		store:     store,
		wsHub:     wsHub,
		processor: processor,
		startTime: time.Now(),
		baseCtx:   context.Background(),
	}
}

// WithBaseContext sets the parent context for background event
// processing. Defaults to context.Background.
func (h *Handler) WithBaseContext(ctx context.Context) *Handler {
	h.baseCtx = ctx
	return h
}

// getUpgrader creates a websocket upgrader with origin checking and a
// handshake timeout against slow clients.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates websocket connection origins. Requests
// without an Origin header are allowed: the viewer may be a non-browser
// client, and the endpoint only ever pushes public slide state.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if h.config == nil || len(h.config.Server.CORSOrigins) == 0 {
		return true
	}
	for _, allowed := range h.config.Server.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", origin).Msg("websocket connection rejected from unauthorized origin")
	return false
}
