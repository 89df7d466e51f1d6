// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

package classifier

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/tomtom215/slidecast/internal/metrics"
)

// apodRetries bounds the random-day retries after a day page fails to
// parse (the site's markup varies across decades of archives).
const apodRetries = 3

var (
	// archiveEntryRe matches one archive line:
	// "2015 January 01:  <a href="ap150101.html">Vela Supernova Remnant</a>"
	archiveEntryRe = regexp.MustCompile(`(\d\d\d\d .*?\d\d): +<a href="(.*?)">(.*?)</a>`)

	apodImageRe       = regexp.MustCompile(`<a\s+?href=\s*?"(image/.*?)"\s*?>`)
	apodExplanationRe = regexp.MustCompile(`Explanation: </b>\s+(.*?)\s+<p>\s*<center>`)

	anchorHrefRe = regexp.MustCompile(`<a\s*?href=\s*?"(.+?)"\s*?>`)
	anchorRe     = regexp.MustCompile(`<a\s*?href=\s*?"(.+?)"\s*?>(.+?)</a>`)
)

// APODPicture is a scraped astronomy picture of the day.
type APODPicture struct {
	ImageURL    string
	Title       string
	Date        string
	PageURL     string
	Description string
}

// SlackText formats the picture announcement for a threaded reply, with
// relative links absolutized and anchors converted to Slack link syntax.
func (p *APODPicture) SlackText() string {
	return fmt.Sprintf("*%s*\n<%s|NASA's Astronomy Picture of the Day>\n%s\n--------------------\n\n%s",
		p.Title, p.PageURL, p.Date, p.Description)
}

// APODSource fetches an astronomy picture of the day. Implemented by
// APODClient; faked in tests.
type APODSource interface {
	Fetch(ctx context.Context, randomDay bool) (*APODPicture, error)
}

// APODClient scrapes the astronomy-picture-of-the-day site: the archive
// index for the list of days, then one day page for the image and its
// explanation.
type APODClient struct {
	baseURL    string
	httpClient *http.Client

	// pick selects a random archive index; injectable for tests.
	pick func(n int) int
}

// NewAPODClient creates a client for the given site root.
func NewAPODClient(baseURL string) *APODClient {
	return &APODClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
		pick:       rand.IntN,
	}
}

// Fetch scrapes the latest (or a random) day's picture. A day page that
// fails to parse is retried against another random day up to apodRetries
// times; after that the last parse error propagates.
func (c *APODClient) Fetch(ctx context.Context, randomDay bool) (*APODPicture, error) {
	archive, err := c.fetchArchive(ctx)
	if err != nil {
		metrics.EnrichmentFetches.WithLabelValues("apod", "error").Inc()
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= apodRetries; attempt++ {
		target := archive[0]
		if randomDay || attempt > 0 {
			target = archive[c.pick(len(archive))]
		}

		picture, err := c.fetchDay(ctx, target)
		if err == nil {
			metrics.EnrichmentFetches.WithLabelValues("apod", "ok").Inc()
			return picture, nil
		}
		lastErr = err
	}

	metrics.EnrichmentFetches.WithLabelValues("apod", "parse_error").Inc()
	return nil, fmt.Errorf("apod: giving up after %d retries: %w", apodRetries, lastErr)
}

type apodArchiveEntry struct {
	date  string
	page  string
	title string
}

func (c *APODClient) fetchArchive(ctx context.Context) ([]apodArchiveEntry, error) {
	body, err := c.get(ctx, c.baseURL+"/archivepix.html")
	if err != nil {
		return nil, err
	}

	matches := archiveEntryRe.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("apod: no archive entries found, has the markup changed?")
	}

	entries := make([]apodArchiveEntry, 0, len(matches))
	for _, m := range matches {
		entries = append(entries, apodArchiveEntry{date: m[1], page: m[2], title: m[3]})
	}
	return entries, nil
}

func (c *APODClient) fetchDay(ctx context.Context, entry apodArchiveEntry) (*APODPicture, error) {
	pageURL := c.baseURL + "/" + entry.page
	body, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	// Collapse newlines so the scrape regexes can span lines.
	body = strings.ReplaceAll(body, "\n", " ")

	imageMatch := apodImageRe.FindStringSubmatch(body)
	if imageMatch == nil {
		return nil, fmt.Errorf("apod: no image link on %s", pageURL)
	}
	explanationMatch := apodExplanationRe.FindStringSubmatch(body)
	if explanationMatch == nil {
		return nil, fmt.Errorf("apod: no explanation on %s", pageURL)
	}

	return &APODPicture{
		ImageURL:    c.baseURL + "/" + imageMatch[1],
		Title:       entry.title,
		Date:        entry.date,
		PageURL:     pageURL,
		Description: c.formatDescription(explanationMatch[1]),
	}, nil
}

// formatDescription absolutizes relative links and rewrites anchors into
// Slack's <url|text> link syntax.
func (c *APODClient) formatDescription(description string) string {
	for _, m := range anchorHrefRe.FindAllStringSubmatch(description, -1) {
		href := m[1]
		if !strings.HasPrefix(href, "http") {
			description = strings.ReplaceAll(description, `"`+href+`"`, `"`+c.baseURL+"/"+href+`"`)
		}
	}
	return anchorRe.ReplaceAllString(description, "<$1|$2>")
}

func (c *APODClient) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build apod request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}
