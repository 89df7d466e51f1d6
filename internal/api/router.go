// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/slidecast/internal/config"
)

// Router wires the handler into the Chi route tree.
type Router struct {
	handler *Handler
	server  config.ServerConfig
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, server config.ServerConfig) *Router {
	return &Router{handler: handler, server: server}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID())
	r.Use(RequestLogger())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	}))

	// The webhook is rate limited per source IP. Slack retries on 429 so
	// a burst beyond the limit degrades to delayed delivery, not loss.
	r.With(httprate.Limit(
		router.server.RateLimitRequests,
		router.server.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
	)).Post("/slack/events", router.handler.SlackEvents)

	r.Get("/ws", router.handler.WebSocket)
	r.Get("/api/v1/health", router.handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/", router.handler.Viewer)

	return r
}
