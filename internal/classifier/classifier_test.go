// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

package classifier

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/slidecast/internal/config"
	"github.com/tomtom215/slidecast/internal/history"
	"github.com/tomtom215/slidecast/internal/models"
	"github.com/tomtom215/slidecast/internal/slack"
)

type fakeHub struct {
	states []models.State
}

func (f *fakeHub) BroadcastState(state models.State) {
	f.states = append(f.states, state)
}

type postCall struct {
	channel  string
	threadTS string
	text     string
}

type fakeSlack struct {
	file    *slack.FileContent
	fileErr error
	posts   []postCall
}

func (f *fakeSlack) DownloadFile(_ context.Context, _ string) (*slack.FileContent, error) {
	if f.fileErr != nil {
		return nil, f.fileErr
	}
	return f.file, nil
}

func (f *fakeSlack) PostMessage(_ context.Context, channel, threadTS, text string) {
	f.posts = append(f.posts, postCall{channel: channel, threadTS: threadTS, text: text})
}

type fetchCall struct {
	url    string
	asCurl bool
}

type fakeFetcher struct {
	img   *ImageContent
	err   error
	calls []fetchCall
}

func (f *fakeFetcher) FetchImage(_ context.Context, url string, asCurl bool) (*ImageContent, error) {
	f.calls = append(f.calls, fetchCall{url: url, asCurl: asCurl})
	if f.err != nil {
		return nil, f.err
	}
	return f.img, nil
}

type fakeAPOD struct {
	picture    *APODPicture
	err        error
	randomDays []bool
}

func (f *fakeAPOD) Fetch(_ context.Context, randomDay bool) (*APODPicture, error) {
	f.randomDays = append(f.randomDays, randomDay)
	if f.err != nil {
		return nil, f.err
	}
	return f.picture, nil
}

type testHarness struct {
	classifier *Classifier
	store      *history.Store
	hub        *fakeHub
	slack      *fakeSlack
	fetcher    *fakeFetcher
	apod       *fakeAPOD
}

func newHarness(t *testing.T, producers config.ProducersConfig) *testHarness {
	t.Helper()
	h := &testHarness{
		store:   history.NewStore(history.NewMemoryKV()),
		hub:     &fakeHub{},
		slack:   &fakeSlack{},
		fetcher: &fakeFetcher{},
		apod:    &fakeAPOD{},
	}
	h.classifier = New(h.store, h.hub, h.slack, h.fetcher, h.apod, producers, "#screenshare")
	h.classifier.pick = func(int) int { return 0 }
	return h
}

func (h *testHarness) process(t *testing.T, event *models.SlackEvent) {
	t.Helper()
	if err := h.classifier.Process(context.Background(), event); err != nil {
		t.Fatalf("Process: %v", err)
	}
}

func (h *testHarness) entries(t *testing.T) []models.SlideEntry {
	t.Helper()
	entries, err := h.store.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return entries
}

func fileShareEvent(ts string) *models.SlackEvent {
	return &models.SlackEvent{
		Type:    models.EventTypeMessage,
		Subtype: models.SubtypeFileShare,
		TS:      ts,
		Files:   []models.SlackFile{{Filetype: "png", URLPrivate: "https://files.example.com/" + ts}},
	}
}

func TestFileShareAppendsAndBroadcasts(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.slack.file = &slack.FileContent{ContentType: "image/png", Data: []byte("pixels")}

	h.process(t, fileShareEvent("100"))

	entries := h.entries(t)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID != "100" {
		t.Errorf("entry id = %q, want 100", entries[0].ID)
	}
	if !strings.HasPrefix(entries[0].HTML, "<img src='data:image/png;base64,") {
		t.Errorf("entry html = %q, want inline data URI", entries[0].HTML)
	}
	if entries[0].Color != models.DefaultColor {
		t.Errorf("entry color = %q, want default", entries[0].Color)
	}

	if len(h.hub.states) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(h.hub.states))
	}
	if h.hub.states[0].HTML != entries[0].HTML || h.hub.states[0].Color != models.DefaultColor {
		t.Errorf("broadcast state = %+v", h.hub.states[0])
	}
}

func TestFileShareSkipsUndisplayableFiletype(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})

	event := fileShareEvent("100")
	event.Files[0].Filetype = "pdf"
	h.process(t, event)

	if got := len(h.entries(t)); got != 0 {
		t.Errorf("expected no entries, got %d", got)
	}
	if len(h.hub.states) != 0 {
		t.Errorf("expected no broadcasts, got %d", len(h.hub.states))
	}
}

func TestFileShareDownloadFailureIsDropped(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.slack.fileErr = errors.New("boom")

	h.process(t, fileShareEvent("100"))

	if got := len(h.entries(t)); got != 0 {
		t.Errorf("expected no entries after failed download, got %d", got)
	}
}

func TestHistoryRetainsOnlyNewestFive(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.slack.file = &slack.FileContent{ContentType: "image/png", Data: []byte("pixels")}

	for i := 90; i <= 96; i++ {
		h.process(t, fileShareEvent(fmt.Sprintf("%d", i)))
	}

	entries := h.entries(t)
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	if entries[0].ID != "92" || entries[4].ID != "96" {
		t.Errorf("retained ids %q..%q, want 92..96", entries[0].ID, entries[4].ID)
	}
}

func TestMessageChangedVideoAttachment(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})

	h.process(t, &models.SlackEvent{
		Type:    models.EventTypeMessage,
		Subtype: models.SubtypeMessageChanged,
		Message: &models.NestedMessage{
			TS: "200",
			Attachments: []models.Attachment{{
				VideoHTML: `<iframe width="400" height="300" src="https://example.com/embed"></iframe>`,
			}},
		},
	})

	entries := h.entries(t)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	want := `<iframe src="https://example.com/embed"></iframe>`
	if entries[0].HTML != want {
		t.Errorf("entry html = %q, want dimensions stripped", entries[0].HTML)
	}
}

func TestMessageChangedImageAttachment(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.fetcher.img = &ImageContent{ContentType: "image/jpeg", Data: []byte("jpeg")}

	h.process(t, &models.SlackEvent{
		Type:    models.EventTypeMessage,
		Subtype: models.SubtypeMessageChanged,
		Message: &models.NestedMessage{
			TS:          "201",
			Attachments: []models.Attachment{{ImageURL: "https://example.com/pic.jpg"}},
		},
	})

	if len(h.fetcher.calls) != 1 || h.fetcher.calls[0].asCurl {
		t.Fatalf("fetch calls = %+v, want one plain fetch", h.fetcher.calls)
	}
	entries := h.entries(t)
	if len(entries) != 1 || !strings.Contains(entries[0].HTML, "data:image/jpeg") {
		t.Errorf("entries = %+v, want inline jpeg", entries)
	}
}

func TestMessageChangedImageFetchFailureIsDropped(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.fetcher.err = errors.New("offline")

	h.process(t, &models.SlackEvent{
		Type:    models.EventTypeMessage,
		Subtype: models.SubtypeMessageChanged,
		Message: &models.NestedMessage{
			TS:          "201",
			Attachments: []models.Attachment{{ImageURL: "https://example.com/pic.jpg"}},
		},
	})

	if got := len(h.entries(t)); got != 0 {
		t.Errorf("expected no entries, got %d", got)
	}
}

func TestMessageChangedAttachmentRemovedDeletesSlide(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.slack.file = &slack.FileContent{ContentType: "image/png", Data: []byte("pixels")}
	h.process(t, fileShareEvent("300"))
	h.process(t, fileShareEvent("301"))

	h.process(t, &models.SlackEvent{
		Type:    models.EventTypeMessage,
		Subtype: models.SubtypeMessageChanged,
		Message: &models.NestedMessage{TS: "300"},
		PreviousMessage: &models.NestedMessage{
			TS:          "300",
			Attachments: []models.Attachment{{ImageURL: "https://example.com/pic.jpg"}},
		},
	})

	entries := h.entries(t)
	if len(entries) != 1 || entries[0].ID != "301" {
		t.Errorf("entries = %+v, want only 301", entries)
	}
}

func TestMessageDeletedMostRecentBroadcastsPredecessor(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.slack.file = &slack.FileContent{ContentType: "image/png", Data: []byte("pixels")}
	h.process(t, fileShareEvent("400"))
	h.process(t, fileShareEvent("401"))
	broadcastsBefore := len(h.hub.states)

	h.process(t, &models.SlackEvent{
		Type:            models.EventTypeMessage,
		Subtype:         models.SubtypeMessageDeleted,
		PreviousMessage: &models.NestedMessage{TS: "401"},
	})

	entries := h.entries(t)
	if len(entries) != 1 || entries[0].ID != "400" {
		t.Fatalf("entries = %+v, want only 400", entries)
	}
	if len(h.hub.states) != broadcastsBefore+1 {
		t.Fatalf("expected one fallback broadcast, got %d new", len(h.hub.states)-broadcastsBefore)
	}
	if h.hub.states[len(h.hub.states)-1].HTML != entries[0].HTML {
		t.Errorf("fallback broadcast does not match predecessor")
	}
}

func TestMessageDeletedOlderSlideDoesNotBroadcast(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.slack.file = &slack.FileContent{ContentType: "image/png", Data: []byte("pixels")}
	h.process(t, fileShareEvent("400"))
	h.process(t, fileShareEvent("401"))
	broadcastsBefore := len(h.hub.states)

	h.process(t, &models.SlackEvent{
		Type:            models.EventTypeMessage,
		Subtype:         models.SubtypeMessageDeleted,
		PreviousMessage: &models.NestedMessage{TS: "400"},
	})

	if got := len(h.entries(t)); got != 1 {
		t.Errorf("expected 1 entry, got %d", got)
	}
	if len(h.hub.states) != broadcastsBefore {
		t.Errorf("expected no broadcast for older slide deletion")
	}
}

func TestMessageDeletedAbsentSlideIsNoOp(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.slack.file = &slack.FileContent{ContentType: "image/png", Data: []byte("pixels")}
	h.process(t, fileShareEvent("400"))
	broadcastsBefore := len(h.hub.states)

	h.process(t, &models.SlackEvent{
		Type:            models.EventTypeMessage,
		Subtype:         models.SubtypeMessageDeleted,
		PreviousMessage: &models.NestedMessage{TS: "999"},
	})

	if got := len(h.entries(t)); got != 1 {
		t.Errorf("expected 1 entry, got %d", got)
	}
	if len(h.hub.states) != broadcastsBefore {
		t.Errorf("expected no broadcast for absent slide deletion")
	}
}

func reactionEvent(eventType, reaction, ts string) *models.SlackEvent {
	return &models.SlackEvent{
		Type:     eventType,
		Reaction: reaction,
		Item:     &models.EventItem{Type: "message", Channel: "C1", TS: ts},
	}
}

func TestReactionAddedChangesColorAndBroadcasts(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.slack.file = &slack.FileContent{ContentType: "image/png", Data: []byte("pixels")}
	h.process(t, fileShareEvent("500"))
	broadcastsBefore := len(h.hub.states)

	h.process(t, reactionEvent(models.EventTypeReactionAdded, "red_heart", "500"))

	entries := h.entries(t)
	if entries[0].Color != "red" {
		t.Errorf("entry color = %q, want red", entries[0].Color)
	}
	if len(h.hub.states) != broadcastsBefore+1 {
		t.Fatalf("expected color broadcast")
	}
	last := h.hub.states[len(h.hub.states)-1]
	if last.Color != "red" || last.HTML != entries[0].HTML {
		t.Errorf("broadcast state = %+v, want red with same html", last)
	}
}

func TestReactionAddedNonColorDoesNotBroadcast(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.slack.file = &slack.FileContent{ContentType: "image/png", Data: []byte("pixels")}
	h.process(t, fileShareEvent("500"))
	broadcastsBefore := len(h.hub.states)

	h.process(t, reactionEvent(models.EventTypeReactionAdded, "thumbsup", "500"))

	entries := h.entries(t)
	if entries[0].Color != models.DefaultColor {
		t.Errorf("entry color = %q, want default", entries[0].Color)
	}
	if len(entries[0].Reactions) != 1 {
		t.Errorf("reaction not recorded: %+v", entries[0].Reactions)
	}
	if len(h.hub.states) != broadcastsBefore {
		t.Errorf("expected no broadcast for unchanged color")
	}
}

func TestReactionOnOlderSlideChangesColorWithoutBroadcast(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.slack.file = &slack.FileContent{ContentType: "image/png", Data: []byte("pixels")}
	h.process(t, fileShareEvent("500"))
	h.process(t, fileShareEvent("501"))
	broadcastsBefore := len(h.hub.states)

	h.process(t, reactionEvent(models.EventTypeReactionAdded, "blue_car", "500"))

	entries := h.entries(t)
	if entries[0].Color != "blue" {
		t.Errorf("older entry color = %q, want blue", entries[0].Color)
	}
	if len(h.hub.states) != broadcastsBefore {
		t.Errorf("expected no broadcast for non-current slide")
	}
}

func TestReactionAddedUnknownSlideIsNoOp(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})

	h.process(t, reactionEvent(models.EventTypeReactionAdded, "red_heart", "999"))

	if got := len(h.entries(t)); got != 0 {
		t.Errorf("expected no entries, got %d", got)
	}
	if len(h.hub.states) != 0 {
		t.Errorf("expected no broadcasts")
	}
}

func TestReactionRemovedRestoresColor(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.slack.file = &slack.FileContent{ContentType: "image/png", Data: []byte("pixels")}
	h.process(t, fileShareEvent("500"))
	h.process(t, reactionEvent(models.EventTypeReactionAdded, "red_heart", "500"))
	broadcastsBefore := len(h.hub.states)

	h.process(t, reactionEvent(models.EventTypeReactionRemoved, "red_heart", "500"))

	entries := h.entries(t)
	if entries[0].Color != models.DefaultColor {
		t.Errorf("entry color = %q, want default restored", entries[0].Color)
	}
	if len(h.hub.states) != broadcastsBefore+1 {
		t.Errorf("expected restore broadcast")
	}
}

func TestReactionRemovedAbsentReactionIsNoOp(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.slack.file = &slack.FileContent{ContentType: "image/png", Data: []byte("pixels")}
	h.process(t, fileShareEvent("500"))
	h.process(t, reactionEvent(models.EventTypeReactionAdded, "red_heart", "500"))
	broadcastsBefore := len(h.hub.states)

	h.process(t, reactionEvent(models.EventTypeReactionRemoved, "blue_car", "500"))

	entries := h.entries(t)
	if entries[0].Color != "red" {
		t.Errorf("entry color = %q, want red untouched", entries[0].Color)
	}
	if len(h.hub.states) != broadcastsBefore {
		t.Errorf("expected no broadcast when nothing was removed")
	}
}

func TestReactionRemovedOnlyFirstOccurrence(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.slack.file = &slack.FileContent{ContentType: "image/png", Data: []byte("pixels")}
	h.process(t, fileShareEvent("500"))
	h.process(t, reactionEvent(models.EventTypeReactionAdded, "red_heart", "500"))
	h.process(t, reactionEvent(models.EventTypeReactionAdded, "red_heart", "500"))

	h.process(t, reactionEvent(models.EventTypeReactionRemoved, "red_heart", "500"))

	entries := h.entries(t)
	if len(entries[0].Reactions) != 1 || entries[0].Reactions[0] != "red_heart" {
		t.Errorf("reactions = %+v, want one red_heart left", entries[0].Reactions)
	}
	if entries[0].Color != "red" {
		t.Errorf("entry color = %q, want red (duplicate still present)", entries[0].Color)
	}
}

func plainMessage(ts, text string) *models.SlackEvent {
	return &models.SlackEvent{Type: models.EventTypeMessage, TS: ts, Text: text}
}

func TestFireTrigger(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{FireVideoURL: "https://cdn.example.com/fire.mp4"})

	h.process(t, plainMessage("600", "warm it up :hotfire:"))

	entries := h.entries(t)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !strings.Contains(entries[0].HTML, "https://cdn.example.com/fire.mp4") {
		t.Errorf("fire html = %q", entries[0].HTML)
	}
	if entries[0].Color != "black" {
		t.Errorf("fire color = %q, want black", entries[0].Color)
	}
}

func TestFireBeatsSandwichInPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeSandwich(t, dir, "reuben-on-rye-0001.png")
	h := newHarness(t, config.ProducersConfig{
		FireVideoURL: "https://cdn.example.com/fire.mp4",
		SandwichDir:  dir,
	})

	h.process(t, plainMessage("600", ":sandwich: :hotfire:"))

	entries := h.entries(t)
	if len(entries) != 1 || !strings.Contains(entries[0].HTML, "fire.mp4") {
		t.Errorf("entries = %+v, want fire slide", entries)
	}
}

func writeSandwich(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("png-bytes"), 0o600); err != nil {
		t.Fatalf("write gallery file: %v", err)
	}
}

func TestSandwichTriggerPostsNamedReply(t *testing.T) {
	dir := t.TempDir()
	writeSandwich(t, dir, "reuben-on-rye-0001.png")
	h := newHarness(t, config.ProducersConfig{SandwichDir: dir})

	h.process(t, plainMessage("601", "lunch time :sandwich:"))

	entries := h.entries(t)
	if len(entries) != 1 || !strings.Contains(entries[0].HTML, "data:image/png") {
		t.Fatalf("entries = %+v, want inline png", entries)
	}
	if len(h.slack.posts) != 1 {
		t.Fatalf("expected one threaded reply, got %d", len(h.slack.posts))
	}
	post := h.slack.posts[0]
	if post.threadTS != "601" || post.channel != "#screenshare" {
		t.Errorf("post = %+v", post)
	}
	if post.text != `:yum: "reuben on rye" :yum:` {
		t.Errorf("post text = %q", post.text)
	}
}

func TestSandwichEmptyGalleryIsDropped(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{SandwichDir: t.TempDir()})

	h.process(t, plainMessage("601", ":sandwich:"))

	if got := len(h.entries(t)); got != 0 {
		t.Errorf("expected no entries, got %d", got)
	}
	if len(h.slack.posts) != 0 {
		t.Errorf("expected no reply for empty gallery")
	}
}

func TestAstronomyTrigger(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.apod.picture = &APODPicture{
		ImageURL:    "https://apod.example.com/image/today.jpg",
		Title:       "Vela Supernova Remnant",
		Date:        "2015 January 01",
		PageURL:     "https://apod.example.com/ap150101.html",
		Description: "A supernova remnant.",
	}

	h.process(t, plainMessage("602", ":milky_way:"))

	entries := h.entries(t)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].HTML != `<img src="https://apod.example.com/image/today.jpg">` {
		t.Errorf("apod html = %q", entries[0].HTML)
	}
	if entries[0].Color != "black" {
		t.Errorf("apod color = %q, want black", entries[0].Color)
	}
	if len(h.apod.randomDays) != 1 || h.apod.randomDays[0] {
		t.Errorf("randomDays = %v, want one latest-day fetch", h.apod.randomDays)
	}
	if len(h.slack.posts) != 1 || !strings.Contains(h.slack.posts[0].text, "Vela Supernova Remnant") {
		t.Errorf("posts = %+v", h.slack.posts)
	}
}

func TestAstronomyRandomKeyword(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.apod.picture = &APODPicture{ImageURL: "https://apod.example.com/image/x.jpg"}

	h.process(t, plainMessage("602", "show me a random one :milky_way:"))

	if len(h.apod.randomDays) != 1 || !h.apod.randomDays[0] {
		t.Errorf("randomDays = %v, want one random-day fetch", h.apod.randomDays)
	}
}

func TestAstronomyFailurePropagates(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})
	h.apod.err = errors.New("scrape failed")

	err := h.classifier.Process(context.Background(), plainMessage("602", ":milky_way:"))
	if err == nil {
		t.Fatal("expected error from failed scrape")
	}
	if got := len(h.entries(t)); got != 0 {
		t.Errorf("expected no entries, got %d", got)
	}
}

func ambientProducers(video config.AmbientVideo) config.ProducersConfig {
	return config.ProducersConfig{AmbientVideos: map[string]config.AmbientVideo{"fish": video}}
}

func TestAmbientVideoTrigger(t *testing.T) {
	h := newHarness(t, ambientProducers(config.AmbientVideo{
		YouTubeID:  "abc123",
		StartTimes: []int{30, 60},
		EndTime:    90,
		Loop:       true,
	}))

	h.process(t, plainMessage("603", ":fish:"))

	entries := h.entries(t)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	html := entries[0].HTML
	for _, want := range []string{
		"https://www.youtube.com/embed/abc123?",
		"autoplay=1", "mute=1", "modestbranding=1",
		"start=30", "end=90", "loop=1", "playlist=abc123",
		`class="youtube"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("ambient html missing %q: %s", want, html)
		}
	}
	if entries[0].Color != "black" {
		t.Errorf("ambient color = %q, want black", entries[0].Color)
	}
}

func TestAmbientVideoOfflineWindowPostsMessage(t *testing.T) {
	h := newHarness(t, ambientProducers(config.AmbientVideo{
		YouTubeID: "abc123",
		OnlineBetween: &config.OnlineWindow{
			StartHour:      9,
			EndHour:        17,
			Timezone:       "UTC",
			OfflineMessage: "The fish are asleep.",
		},
	}))
	h.classifier.now = func() time.Time {
		return time.Date(2026, 8, 30, 3, 0, 0, 0, time.UTC)
	}

	h.process(t, plainMessage("603", ":fish:"))

	if got := len(h.entries(t)); got != 0 {
		t.Errorf("expected no entries outside window, got %d", got)
	}
	if len(h.slack.posts) != 1 || h.slack.posts[0].text != "The fish are asleep." {
		t.Errorf("posts = %+v", h.slack.posts)
	}
}

func TestMoonTriggerFetchesAsCurl(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{MoonURLs: []string{"https://moon.example.com/full.jpg"}})
	h.fetcher.img = &ImageContent{ContentType: "image/jpeg", Data: []byte("moon")}

	h.process(t, plainMessage("604", ":full_moon:"))

	if len(h.fetcher.calls) != 1 {
		t.Fatalf("fetch calls = %+v", h.fetcher.calls)
	}
	if !h.fetcher.calls[0].asCurl || h.fetcher.calls[0].url != "https://moon.example.com/full.jpg" {
		t.Errorf("fetch call = %+v, want curl fetch of configured url", h.fetcher.calls[0])
	}
	entries := h.entries(t)
	if len(entries) != 1 || entries[0].Color != "black" {
		t.Errorf("entries = %+v, want one black slide", entries)
	}
}

func TestPlainMessageWithoutTriggersIsNoOp(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{MoonURLs: []string{"https://moon.example.com/full.jpg"}})

	h.process(t, plainMessage("605", "hello :wave: how is it going"))

	if got := len(h.entries(t)); got != 0 {
		t.Errorf("expected no entries, got %d", got)
	}
}

func TestQuotedTriggerIsIgnored(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{FireVideoURL: "https://cdn.example.com/fire.mp4"})

	h.process(t, plainMessage("606", "try typing `:hotfire:` in the channel"))

	if got := len(h.entries(t)); got != 0 {
		t.Errorf("expected no entries for quoted trigger, got %d", got)
	}
}

func TestUnknownEventIsIgnored(t *testing.T) {
	h := newHarness(t, config.ProducersConfig{})

	h.process(t, &models.SlackEvent{Type: "team_join"})

	if got := len(h.entries(t)); got != 0 {
		t.Errorf("expected no entries, got %d", got)
	}
}
