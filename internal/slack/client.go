// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

package slack

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/slidecast/internal/logging"
	"github.com/tomtom215/slidecast/internal/metrics"
)

const (
	defaultAPIBaseURL = "https://slack.com/api"
	requestTimeout    = 15 * time.Second

	// maxDownloadBytes caps authenticated file downloads; uploads are
	// re-encoded as data URIs held in memory.
	maxDownloadBytes = 20 << 20 // 20 MB
)

// ErrBadToken indicates Slack answered a file download with an HTML page,
// which is what files.slack.com does when the bot token is invalid.
var ErrBadToken = errors.New("slack: file download returned html, check bot token")

// FileContent is the result of an authenticated file download.
type FileContent struct {
	ContentType string
	Data        []byte
}

// Client calls the Slack Web API. Outbound calls are rate limited to stay
// under Slack's per-method chat.postMessage ceiling (1 msg/s, small burst).
type Client struct {
	httpClient *http.Client
	baseURL    string
	botToken   string
	limiter    *rate.Limiter
}

// NewClient creates a Client with the given bot token.
func NewClient(botToken string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    defaultAPIBaseURL,
		botToken:   botToken,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// WithBaseURL overrides the API base URL; used by tests against httptest
// servers.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// WithHTTPClient overrides the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// DownloadFile fetches an uploaded file from files.slack.com with the bot
// token. A text/html response means the token was rejected.
func (c *Client) DownloadFile(ctx context.Context, url string) (*FileContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build file request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.botToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.SlackAPICalls.WithLabelValues("files.download", "error").Inc()
		return nil, fmt.Errorf("fetch file: %w", err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "text/html") {
		metrics.SlackAPICalls.WithLabelValues("files.download", "bad_token").Inc()
		return nil, ErrBadToken
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.SlackAPICalls.WithLabelValues("files.download", "bad_status").Inc()
		return nil, fmt.Errorf("fetch file: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read file body: %w", err)
	}

	metrics.SlackAPICalls.WithLabelValues("files.download", "ok").Inc()
	return &FileContent{ContentType: contentType, Data: data}, nil
}

type postMessageRequest struct {
	Channel  string `json:"channel"`
	ThreadTS string `json:"thread_ts,omitempty"`
	Text     string `json:"text"`
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// PostMessage posts a threaded reply to the given channel. Failures are
// logged and swallowed: a missed confirmation never aborts the mutation
// that triggered it.
func (c *Client) PostMessage(ctx context.Context, channel, threadTS, text string) {
	if err := c.postMessage(ctx, channel, threadTS, text); err != nil {
		metrics.SlackAPICalls.WithLabelValues("chat.postMessage", "error").Inc()
		logging.Err(err).Str("channel", channel).Msg("failed to post message to slack")
		return
	}
	metrics.SlackAPICalls.WithLabelValues("chat.postMessage", "ok").Inc()
}

func (c *Client) postMessage(ctx context.Context, channel, threadTS, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(postMessageRequest{
		Channel:  channel,
		ThreadTS: threadTS,
		Text:     text,
	})
	if err != nil {
		return fmt.Errorf("encode chat.postMessage: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat.postMessage", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build chat.postMessage: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.botToken)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post chat.postMessage: %w", err)
	}
	defer resp.Body.Close()

	var decoded postMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("decode chat.postMessage response: %w", err)
	}
	if !decoded.OK {
		return fmt.Errorf("chat.postMessage rejected: %s", decoded.Error)
	}
	return nil
}
