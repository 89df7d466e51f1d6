// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

// Package classifier turns decoded Slack events into slide history
// mutations and state broadcasts. Each event maps to at most one mutation
// and at most one broadcast; unrecognized shapes are no-ops. Enrichment
// failures (image fetches, scrapes) abort only their own action and
// never crash event handling or leave a partial history write.
package classifier

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/tomtom215/slidecast/internal/config"
	"github.com/tomtom215/slidecast/internal/history"
	"github.com/tomtom215/slidecast/internal/logging"
	"github.com/tomtom215/slidecast/internal/metrics"
	"github.com/tomtom215/slidecast/internal/models"
	"github.com/tomtom215/slidecast/internal/slack"
)

// Trigger emoji recognized in plain messages, matched in precedence
// order: fire, sandwich, astronomy, configured ambient videos, then the
// moon-image fallback. First match wins; remaining tokens are ignored.
const (
	triggerFire      = "hotfire"
	triggerSandwich  = "sandwich"
	triggerAstronomy = "milky_way"
	moonSuffix       = "moon"
)

// displayableFiletypes are the upload filetypes relayed as slides.
var displayableFiletypes = map[string]bool{
	"jpg": true, "gif": true, "png": true, "webp": true,
}

// Broadcaster pushes the current slide state to all viewers.
// Satisfied by *websocket.Hub.
type Broadcaster interface {
	BroadcastState(state models.State)
}

// SlackAPI is the outbound Slack surface the classifier needs.
// Satisfied by *slack.Client.
type SlackAPI interface {
	DownloadFile(ctx context.Context, url string) (*slack.FileContent, error)
	PostMessage(ctx context.Context, channel, threadTS, text string)
}

// Classifier dispatches decoded events against the history store.
type Classifier struct {
	store     *history.Store
	hub       Broadcaster
	slack     SlackAPI
	fetcher   ImageFetcher
	apod      APODSource
	producers config.ProducersConfig
	channel   string

	// now and pick are injectable for deterministic tests.
	now  func() time.Time
	pick func(n int) int
}

// New creates a Classifier.
func New(store *history.Store, hub Broadcaster, slackAPI SlackAPI, fetcher ImageFetcher,
	apod APODSource, producers config.ProducersConfig, channel string) *Classifier {
	return &Classifier{
		store:     store,
		hub:       hub,
		slack:     slackAPI,
		fetcher:   fetcher,
		apod:      apod,
		producers: producers,
		channel:   channel,
		now:       time.Now,
		pick:      rand.IntN,
	}
}

// Process handles one decoded event. It is called from a background
// goroutine after the webhook response has been sent; a returned error
// means the whole action failed (it is logged by the caller), while
// per-action enrichment failures are logged here and dropped.
func (c *Classifier) Process(ctx context.Context, event *models.SlackEvent) error {
	kind := event.Kind()
	metrics.EventsReceived.WithLabelValues(kindLabel(kind)).Inc()

	switch kind {
	case models.KindFileShare:
		return c.handleFileShare(ctx, event)
	case models.KindMessageChanged:
		return c.handleMessageChanged(ctx, event)
	case models.KindMessageDeleted:
		return c.handleMessageDeleted(ctx, event)
	case models.KindPlainMessage:
		return c.handlePlainMessage(ctx, event)
	case models.KindReactionAdded:
		return c.handleReactionAdded(ctx, event)
	case models.KindReactionRemoved:
		return c.handleReactionRemoved(ctx, event)
	default:
		metrics.EventsDropped.WithLabelValues("unknown_kind").Inc()
		logging.Debug().Str("type", event.Type).Str("subtype", event.Subtype).Msg("ignoring unrecognized event")
		return nil
	}
}

func kindLabel(kind models.EventKind) string {
	switch kind {
	case models.KindFileShare:
		return "file_share"
	case models.KindMessageChanged:
		return "message_changed"
	case models.KindMessageDeleted:
		return "message_deleted"
	case models.KindPlainMessage:
		return "message"
	case models.KindReactionAdded:
		return "reaction_added"
	case models.KindReactionRemoved:
		return "reaction_removed"
	default:
		return "unknown"
	}
}

// handleFileShare relays an uploaded image as an inline data URI.
func (c *Classifier) handleFileShare(ctx context.Context, event *models.SlackEvent) error {
	if len(event.Files) == 0 {
		metrics.EventsDropped.WithLabelValues("no_files").Inc()
		return nil
	}

	file := event.Files[0]
	if !displayableFiletypes[file.Filetype] {
		metrics.EventsDropped.WithLabelValues("filetype").Inc()
		return nil
	}

	content, err := c.slack.DownloadFile(ctx, file.URLPrivate)
	if err != nil {
		logging.Err(err).Str("url", file.URLPrivate).Msg("failed to fetch uploaded file")
		metrics.EventsDropped.WithLabelValues("download_failed").Inc()
		return nil
	}

	img := &ImageContent{ContentType: content.ContentType, Data: content.Data}
	return c.storeSlide(ctx, event.TS, img.DataURI(), "")
}

// handleMessageChanged covers Slack unfurls: a new video or image
// attachment appends a slide; an attachment that disappeared relative to
// the previous message means it was hidden, which deletes the slide.
func (c *Classifier) handleMessageChanged(ctx context.Context, event *models.SlackEvent) error {
	message := event.Message

	if message != nil && len(message.Attachments) > 0 {
		attachment := message.Attachments[0]

		if attachment.VideoHTML != "" {
			return c.storeSlide(ctx, message.TS, stripVideoDimensions(attachment.VideoHTML), "")
		}
		if attachment.ImageURL != "" {
			img, err := c.fetcher.FetchImage(ctx, attachment.ImageURL, false)
			if err != nil {
				logging.Err(err).Str("url", attachment.ImageURL).Msg("failed to fetch unfurled image")
				metrics.EventsDropped.WithLabelValues("fetch_failed").Inc()
				return nil
			}
			return c.storeSlide(ctx, message.TS, img.DataURI(), "")
		}
		return nil
	}

	if event.PreviousMessage != nil && len(event.PreviousMessage.Attachments) > 0 {
		return c.deleteSlide(ctx, event.PreviousMessage.TS)
	}
	return nil
}

func (c *Classifier) handleMessageDeleted(ctx context.Context, event *models.SlackEvent) error {
	if event.PreviousMessage == nil {
		return nil
	}
	return c.deleteSlide(ctx, event.PreviousMessage.TS)
}

// handlePlainMessage scans message text for trigger emoji and runs the
// first matching producer.
func (c *Classifier) handlePlainMessage(ctx context.Context, event *models.SlackEvent) error {
	emoji := ExtractEmoji(event.Text)
	if len(emoji) == 0 {
		return nil
	}

	switch {
	case containsToken(emoji, triggerFire) && c.producers.FireVideoURL != "":
		return c.produceFire(ctx, event.TS)
	case containsToken(emoji, triggerSandwich) && c.producers.SandwichDir != "":
		return c.produceSandwich(ctx, event.TS)
	case containsToken(emoji, triggerAstronomy):
		return c.produceAstronomy(ctx, event.TS, strings.Contains(event.Text, "random"))
	}

	for _, token := range emoji {
		if video, ok := c.producers.AmbientVideos[token]; ok {
			return c.produceAmbientVideo(ctx, event.TS, video)
		}
	}
	for _, token := range emoji {
		if strings.HasSuffix(token, moonSuffix) && len(c.producers.MoonURLs) > 0 {
			return c.produceMoonImage(ctx, event.TS)
		}
	}
	return nil
}

func (c *Classifier) handleReactionAdded(ctx context.Context, event *models.SlackEvent) error {
	if event.Item == nil || event.Reaction == "" {
		metrics.EventsDropped.WithLabelValues("malformed_reaction").Inc()
		return nil
	}

	var state *models.State
	err := c.store.With(ctx, func(h *history.History) error {
		entry, mostRecent := h.FindByID(event.Item.TS)
		if entry == nil {
			// Referenced message is unknown or already trimmed away.
			return nil
		}
		entry.Reactions = append([]string{event.Reaction}, entry.Reactions...)
		state = recomputeColor(entry, mostRecent)
		return nil
	})
	if err != nil {
		return err
	}

	c.maybeBroadcast(state)
	return nil
}

func (c *Classifier) handleReactionRemoved(ctx context.Context, event *models.SlackEvent) error {
	if event.Item == nil || event.Reaction == "" {
		metrics.EventsDropped.WithLabelValues("malformed_reaction").Inc()
		return nil
	}

	var state *models.State
	err := c.store.With(ctx, func(h *history.History) error {
		entry, mostRecent := h.FindByID(event.Item.TS)
		if entry == nil {
			return nil
		}
		if !removeFirst(&entry.Reactions, event.Reaction) {
			// Nothing removed: the color cannot have changed.
			return nil
		}
		state = recomputeColor(entry, mostRecent)
		return nil
	})
	if err != nil {
		return err
	}

	c.maybeBroadcast(state)
	return nil
}

// recomputeColor rederives the entry color from its reactions and
// returns the state to broadcast, which is non-nil only when the color
// actually changed and the entry is the current slide.
func recomputeColor(entry *models.SlideEntry, mostRecent bool) *models.State {
	newColor := DeriveColor(entry.Reactions)
	if newColor == entry.Color {
		return nil
	}
	entry.Color = newColor
	if !mostRecent {
		return nil
	}
	state := entry.State()
	return &state
}

// storeSlide appends a slide and broadcasts it once the write committed.
func (c *Classifier) storeSlide(ctx context.Context, id, html, color string) error {
	var state models.State
	err := c.store.With(ctx, func(h *history.History) error {
		h.Append(models.NewSlideEntry(id, html, color))
		state = h.Current().State()
		return nil
	})
	if err != nil {
		return err
	}

	c.hub.BroadcastState(state)
	return nil
}

// deleteSlide removes the slide for id if it is still retained. Removing
// the current slide broadcasts its predecessor so viewers fall back
// together; removing an absent id is a silent no-op.
func (c *Classifier) deleteSlide(ctx context.Context, id string) error {
	var state *models.State
	err := c.store.With(ctx, func(h *history.History) error {
		removed, wasMostRecent := h.Remove(id)
		if removed && wasMostRecent {
			if current := h.Current(); current != nil {
				s := current.State()
				state = &s
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.maybeBroadcast(state)
	return nil
}

func (c *Classifier) maybeBroadcast(state *models.State) {
	if state != nil {
		c.hub.BroadcastState(*state)
	}
}

func containsToken(tokens []string, want string) bool {
	for _, token := range tokens {
		if token == want {
			return true
		}
	}
	return false
}

// removeFirst deletes the first occurrence of value and reports whether
// anything was removed.
func removeFirst(list *[]string, value string) bool {
	for i, v := range *list {
		if v == value {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}
