// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

package classifier

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/slidecast/internal/metrics"
)

// curlUserAgent is sent when a host refuses default Go client requests.
const curlUserAgent = "curl/7.88.1"

// maxImageBytes caps enrichment downloads re-encoded as data URIs.
const maxImageBytes = 20 << 20 // 20 MB

// imageContentTypes are the content-type prefixes accepted for displayed
// images; anything else aborts the action.
var imageContentTypes = []string{"image/jpeg", "image/gif", "image/png", "image/webp"}

// ImageContent is a fetched external image.
type ImageContent struct {
	ContentType string
	Data        []byte
}

// DataURI renders the image as an inline <img> tag.
func (i *ImageContent) DataURI() string {
	return fmt.Sprintf("<img src='data:%s;base64,%s'>",
		i.ContentType, base64.StdEncoding.EncodeToString(i.Data))
}

// ImageFetcher fetches external images for enrichment. Implemented by
// Fetcher; faked in tests.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string, asCurl bool) (*ImageContent, error)
}

// Fetcher fetches enrichment images behind a circuit breaker, so a
// misbehaving external host stops consuming background workers instead
// of timing out on every event.
type Fetcher struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*ImageContent]
}

// NewFetcher creates a Fetcher with conservative defaults.
func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[*ImageContent](gobreaker.Settings{
			Name:        "enrichment-fetch",
			MaxRequests: 3,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
		}),
	}
}

// WithHTTPClient overrides the underlying HTTP client; used in tests.
func (f *Fetcher) WithHTTPClient(hc *http.Client) *Fetcher {
	f.httpClient = hc
	return f
}

// FetchImage downloads url and verifies it is a 2xx response with an
// accepted image content type. asCurl sends a curl User-Agent.
func (f *Fetcher) FetchImage(ctx context.Context, url string, asCurl bool) (*ImageContent, error) {
	img, err := f.breaker.Execute(func() (*ImageContent, error) {
		return f.fetch(ctx, url, asCurl)
	})
	if err != nil {
		metrics.EnrichmentFetches.WithLabelValues("image", "error").Inc()
		return nil, err
	}
	metrics.EnrichmentFetches.WithLabelValues("image", "ok").Inc()
	return img, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string, asCurl bool) (*ImageContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	if asCurl {
		req.Header.Set("User-Agent", curlUserAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isImageContentType(contentType) {
		return nil, fmt.Errorf("fetch %s: unexpected content type %q", url, contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	return &ImageContent{ContentType: contentType, Data: data}, nil
}

func isImageContentType(contentType string) bool {
	for _, prefix := range imageContentTypes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}
