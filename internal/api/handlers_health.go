// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	SlideCount    int    `json:"slide_count"`
	ViewerCount   int    `json:"viewer_count"`
}

// Health reports liveness plus basic relay state.
// GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := &HealthStatus{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}

	if entries, err := h.store.Read(r.Context()); err == nil {
		status.SlideCount = len(entries)
	} else {
		status.Status = "degraded"
	}
	if h.wsHub != nil {
		status.ViewerCount = h.wsHub.ClientCount()
	}

	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, &APIResponse{Success: status.Status == "ok", Data: status})
}
