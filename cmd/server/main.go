// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

// Package main is the entry point for the Slidecast server.
//
// Slidecast relays a Slack channel onto browser screens in real time:
// images, unfurled videos, and emoji-triggered special content posted to
// the channel become slides, and reactions recolor the backdrop. The
// webhook receiver ingests Slack events, a bounded slide history keeps
// the latest content, and a websocket hub fans the current slide out to
// every connected viewer.
//
// The server initializes in the following order:
//
//  1. Configuration: Koanf v2 layered sources (env, YAML file, defaults)
//  2. Logging: zerolog with the configured level and format
//  3. History: BadgerDB-backed slide store (in-memory when no dir set)
//  4. Hub and classifier: websocket fan-out plus event dispatch
//  5. Supervisor tree: suture-managed hub and HTTP server
//
// # Configuration
//
// Required settings:
//   - SLIDECAST_SLACK_SIGNING_SECRET: webhook signature verification
//   - SLIDECAST_SLACK_BOT_TOKEN: file downloads and threaded replies
//
// The full set, including the emoji-triggered producers (fire video,
// sandwich gallery, ambient streams, moon images, astronomy picture of
// the day), is documented in internal/config.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the HTTP
// server drains in-flight requests, the hub closes viewer connections,
// and the history database is closed last.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/slidecast/internal/api"
	"github.com/tomtom215/slidecast/internal/classifier"
	"github.com/tomtom215/slidecast/internal/config"
	"github.com/tomtom215/slidecast/internal/history"
	"github.com/tomtom215/slidecast/internal/logging"
	"github.com/tomtom215/slidecast/internal/slack"
	"github.com/tomtom215/slidecast/internal/supervisor"
	"github.com/tomtom215/slidecast/internal/supervisor/services"
	"github.com/tomtom215/slidecast/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("history_dir", cfg.History.Dir).
		Str("post_channel", cfg.Slack.PostChannel).
		Msg("starting slidecast")

	db, err := history.OpenBadger(cfg.History.Dir)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open history database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Err(err).Msg("error closing history database")
		}
	}()

	store := history.NewStore(history.NewBadgerKV(db),
		history.WithKey(cfg.History.Key),
		history.WithMaxEntries(cfg.History.MaxEntries),
	)

	hub := websocket.NewHub()
	slackClient := slack.NewClient(cfg.Slack.BotToken)
	fetcher := classifier.NewFetcher()
	apodClient := classifier.NewAPODClient(cfg.Producers.APODBaseURL)

	processor := classifier.New(store, hub, slackClient, fetcher, apodClient,
		cfg.Producers, cfg.Slack.PostChannel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := api.NewHandler(cfg, store, hub, processor).WithBaseContext(ctx)
	router := api.NewRouter(handler, cfg.Server)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	treeConfig := supervisor.DefaultTreeConfig()
	treeConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout

	tree := supervisor.NewTree(logging.NewSlogLogger(), treeConfig)
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Msg("supervisor tree starting")
	if err := tree.Serve(ctx); err != nil && err != context.Canceled {
		logging.Err(err).Msg("supervisor tree stopped with error")
		os.Exit(1)
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("service did not stop in time")
		}
	}

	logging.Info().Msg("shutdown complete")
}
