// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

package api

import (
	"context"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/slidecast/internal/logging"
	"github.com/tomtom215/slidecast/internal/metrics"
	"github.com/tomtom215/slidecast/internal/models"
	"github.com/tomtom215/slidecast/internal/slack"
)

// maxEventBody caps the webhook request body. Slack event payloads are
// small; anything larger is not from Slack.
const maxEventBody = 1 << 20 // 1 MB

// SlackEvents handles the Slack Events API webhook.
// POST /slack/events
//
// Every request is signature-verified against the signing secret before
// the body is parsed; url_verification handshakes are answered inline
// with the challenge, and event callbacks are acknowledged immediately
// with processing continuing in the background so Slack never sees a
// slow response.
func (h *Handler) SlackEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "failed to read request body")
		return
	}
	defer r.Body.Close()

	timestamp := r.Header.Get(slack.HeaderTimestamp)
	signature := r.Header.Get(slack.HeaderSignature)
	if !slack.VerifySignature([]byte(h.config.Slack.SigningSecret), timestamp, signature, body) {
		metrics.EventsDropped.WithLabelValues("bad_signature").Inc()
		logging.Warn().Msg("rejected webhook with invalid signature")
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "signature verification failed")
		return
	}

	var envelope models.EventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "failed to parse event payload")
		return
	}

	switch envelope.Type {
	case models.CallbackURLVerification:
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(envelope.Challenge))
		return
	case models.CallbackEventCallback:
		if envelope.Event != nil {
			h.dispatchEvent(envelope.Event)
		}
	default:
		logging.Debug().Str("type", envelope.Type).Msg("ignoring unrecognized callback type")
	}

	// Slack only needs the acknowledgment; the ack body stays empty.
	w.WriteHeader(http.StatusOK)
}

// dispatchEvent hands the event to the classifier in the background.
// The webhook response does not wait on downloads or external fetches.
func (h *Handler) dispatchEvent(event *models.SlackEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(h.baseCtx, eventTimeout)
		defer cancel()

		if err := h.processor.Process(ctx, event); err != nil {
			logging.Err(err).
				Str("type", event.Type).
				Str("subtype", event.Subtype).
				Msg("event processing failed")
		}
	}()
}
