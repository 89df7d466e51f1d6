// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

package classifier

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tomtom215/slidecast/internal/config"
	"github.com/tomtom215/slidecast/internal/logging"
	"github.com/tomtom215/slidecast/internal/metrics"
)

// fireVideoHTML wraps the canned fire video in a looping muted player.
const fireVideoHTML = `<video class="fire" controls loop autoplay muted>
  <source src="%s" type="video/mp4">
  Sorry, your browser does not support embedded videos, but you can
  <a href="%s">download the video</a> and watch it locally.
</video>`

// produceFire shows the canned fire video on a black background.
func (c *Classifier) produceFire(ctx context.Context, ts string) error {
	html := fmt.Sprintf(fireVideoHTML, c.producers.FireVideoURL, c.producers.FireVideoURL)
	return c.storeSlide(ctx, ts, html, "black")
}

// produceSandwich picks a random image from the local sandwich gallery
// and confirms the pick in a threaded reply. The display name is the
// filename with its trailing numbering and extension cut off and dashes
// turned into spaces.
func (c *Classifier) produceSandwich(ctx context.Context, ts string) error {
	entries, err := os.ReadDir(c.producers.SandwichDir)
	if err != nil {
		logging.Err(err).Str("dir", c.producers.SandwichDir).Msg("failed to read sandwich gallery")
		metrics.EventsDropped.WithLabelValues("gallery_read_failed").Inc()
		return nil
	}

	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		logging.Warn().Str("dir", c.producers.SandwichDir).Msg("sandwich gallery is empty")
		metrics.EventsDropped.WithLabelValues("gallery_empty").Inc()
		return nil
	}

	filename := files[c.pick(len(files))]
	data, err := os.ReadFile(filepath.Join(c.producers.SandwichDir, filename))
	if err != nil {
		logging.Err(err).Str("file", filename).Msg("failed to read sandwich image")
		metrics.EventsDropped.WithLabelValues("gallery_read_failed").Inc()
		return nil
	}

	img := &ImageContent{ContentType: "image/png", Data: data}
	if err := c.storeSlide(ctx, ts, img.DataURI(), ""); err != nil {
		return err
	}

	c.slack.PostMessage(ctx, c.channel, ts, fmt.Sprintf(`:yum: "%s" :yum:`, sandwichName(filename)))
	return nil
}

// sandwichName derives a display name from a gallery filename shaped
// like "reuben-on-rye-0001.png".
func sandwichName(filename string) string {
	name := filename
	if len(name) > 9 {
		name = name[:len(name)-9]
	}
	return strings.ReplaceAll(name, "-", " ")
}

// produceAstronomy shows the latest (or a random) astronomy picture of
// the day and posts its description as a threaded reply. Unlike the
// other producers a scrape failure propagates, since there is no
// partial result worth showing.
func (c *Classifier) produceAstronomy(ctx context.Context, ts string, randomDay bool) error {
	picture, err := c.apod.Fetch(ctx, randomDay)
	if err != nil {
		return err
	}

	html := fmt.Sprintf("<img src=%q>", picture.ImageURL)
	if err := c.storeSlide(ctx, ts, html, "black"); err != nil {
		return err
	}

	c.slack.PostMessage(ctx, c.channel, ts, picture.SlackText())
	return nil
}

// produceAmbientVideo embeds a muted autoplaying YouTube stream. A
// configured online window outside of which the stream is dark posts
// the offline message instead.
func (c *Classifier) produceAmbientVideo(ctx context.Context, ts string, video config.AmbientVideo) error {
	if video.OnlineBetween != nil {
		online, err := video.OnlineBetween.Contains(c.now())
		if err != nil {
			return err
		}
		if !online {
			message := video.OnlineBetween.OfflineMessage
			if message == "" {
				message = "That stream is offline right now, try again later."
			}
			c.slack.PostMessage(ctx, c.channel, ts, message)
			return nil
		}
	}

	options := url.Values{}
	options.Set("autoplay", "1")
	options.Set("modestbranding", "1")
	options.Set("mute", "1")
	if len(video.StartTimes) > 0 {
		options.Set("start", strconv.Itoa(video.StartTimes[c.pick(len(video.StartTimes))]))
	}
	if video.EndTime > 0 {
		options.Set("end", strconv.Itoa(video.EndTime))
	}
	if video.Loop {
		// YouTube single-video looping needs the playlist set to the video.
		options.Set("loop", "1")
		options.Set("playlist", video.YouTubeID)
	}

	html := fmt.Sprintf(
		`<iframe class="youtube" src="https://www.youtube.com/embed/%s?%s" frameborder="0" allow="autoplay; encrypted-media" allowfullscreen></iframe>`,
		video.YouTubeID, options.Encode())
	return c.storeSlide(ctx, ts, html, "black")
}

// produceMoonImage shows a random configured moon image. The source
// hosts reject default Go client requests, so the fetch masquerades as
// curl.
func (c *Classifier) produceMoonImage(ctx context.Context, ts string) error {
	target := c.producers.MoonURLs[c.pick(len(c.producers.MoonURLs))]
	img, err := c.fetcher.FetchImage(ctx, target, true)
	if err != nil {
		logging.Err(err).Str("url", target).Msg("failed to fetch moon image")
		metrics.EventsDropped.WithLabelValues("fetch_failed").Inc()
		return nil
	}
	return c.storeSlide(ctx, ts, img.DataURI(), "black")
}
