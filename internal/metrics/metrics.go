// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

// Package metrics provides Prometheus instrumentation for Slidecast:
// webhook event throughput, history store writes, enrichment fetch
// outcomes, and websocket fan-out.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsReceived counts decoded webhook events by type/subtype pair.
	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slidecast_events_received_total",
			Help: "Total number of Slack events received, by event kind",
		},
		[]string{"kind"},
	)

	// EventsDropped counts events that produced no mutation (unknown
	// shapes, lookup misses, failed enrichment).
	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slidecast_events_dropped_total",
			Help: "Total number of events that resulted in no history mutation",
		},
		[]string{"reason"},
	)

	// HistoryWrites counts committed history store writes.
	HistoryWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slidecast_history_writes_total",
			Help: "Total number of history snapshots written to the backing store",
		},
	)

	// HistoryEntries tracks the retained history length after each commit.
	HistoryEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slidecast_history_entries",
			Help: "Number of slide entries currently retained",
		},
	)

	// EnrichmentFetches counts outbound enrichment fetches by target and outcome.
	EnrichmentFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slidecast_enrichment_fetches_total",
			Help: "Total number of enrichment fetches, by target and outcome",
		},
		[]string{"target", "outcome"},
	)

	// BroadcastsSent counts state frames handed to the hub for fan-out.
	BroadcastsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slidecast_broadcasts_total",
			Help: "Total number of state broadcasts sent to the websocket hub",
		},
	)

	// WebSocketClients tracks the number of connected viewers.
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slidecast_websocket_clients",
			Help: "Current number of connected websocket viewers",
		},
	)

	// SlackAPICalls counts outbound Slack Web API calls by method and outcome.
	SlackAPICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slidecast_slack_api_calls_total",
			Help: "Total number of Slack Web API calls, by method and outcome",
		},
		[]string{"method", "outcome"},
	)
)
