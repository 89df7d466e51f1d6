// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

// Package config loads Slidecast configuration via Koanf v2 with layered
// sources (highest priority wins): environment variables, a YAML config
// file, and built-in defaults.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/slidecast/internal/history"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Slack     SlackConfig     `koanf:"slack"`
	History   HistoryConfig   `koanf:"history"`
	Producers ProducersConfig `koanf:"producers"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed browser origins for the viewer page and
	// websocket upgrades. "*" allows any origin (development only).
	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// SlackConfig holds the Slack workspace credentials.
type SlackConfig struct {
	// SigningSecret verifies inbound webhook signatures. Required.
	SigningSecret string `koanf:"signing_secret" validate:"required"`

	// BotToken authenticates file downloads and chat.postMessage calls.
	BotToken string `koanf:"bot_token" validate:"required"`

	// PostChannel receives threaded confirmation messages.
	PostChannel string `koanf:"post_channel"`
}

// HistoryConfig holds the slide history store settings.
type HistoryConfig struct {
	// Dir is the BadgerDB directory; empty runs Badger in memory.
	Dir string `koanf:"dir"`

	Key        string `koanf:"key"`
	MaxEntries int    `koanf:"max_entries" validate:"min=1"`
}

// ProducersConfig configures the special-content producers triggered by
// emoji tokens in plain messages.
type ProducersConfig struct {
	// FireVideoURL is the canned looping fire video; the fire trigger is
	// disabled when empty.
	FireVideoURL string `koanf:"fire_video_url"`

	// SandwichDir is the local gallery for the sandwich trigger; disabled
	// when empty.
	SandwichDir string `koanf:"sandwich_dir"`

	// APODBaseURL is the astronomy-picture-of-the-day site root.
	APODBaseURL string `koanf:"apod_base_url"`

	// MoonURLs are candidate images for moon-suffixed triggers; one is
	// chosen at random.
	MoonURLs []string `koanf:"moon_urls"`

	// AmbientVideos maps trigger emoji to embeddable video settings.
	AmbientVideos map[string]AmbientVideo `koanf:"ambient_videos"`
}

// AmbientVideo configures one ambient YouTube embed.
type AmbientVideo struct {
	YouTubeID string `koanf:"youtube_id" validate:"required"`

	// OnlineBetween optionally gates the embed to a local time window.
	OnlineBetween *OnlineWindow `koanf:"online_between"`

	// StartTimes are candidate playback offsets in seconds; one is chosen
	// at random when non-empty.
	StartTimes []int `koanf:"start_times"`

	// EndTime is the playback end offset in seconds; 0 means none.
	EndTime int `koanf:"end_time"`

	Loop bool `koanf:"loop"`
}

// OnlineWindow is a local-time availability window. Outside the window
// the producer posts OfflineMessage instead of appending a slide.
type OnlineWindow struct {
	StartHour int    `koanf:"start_hour" validate:"min=0,max=23"`
	EndHour   int    `koanf:"end_hour" validate:"min=0,max=24"`
	Timezone  string `koanf:"timezone" validate:"required"`

	OfflineMessage string `koanf:"offline_message"`
}

// Contains reports whether t falls inside the window in its timezone.
func (w *OnlineWindow) Contains(t time.Time) (bool, error) {
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return false, fmt.Errorf("load timezone %q: %w", w.Timezone, err)
	}
	hour := t.In(loc).Hour()
	return hour >= w.StartHour && hour < w.EndHour, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8040,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Slack: SlackConfig{
			PostChannel: "#screenshare",
		},
		History: HistoryConfig{
			Dir:        "/data/slidecast",
			Key:        history.DefaultKey,
			MaxEntries: history.DefaultMaxEntries,
		},
		Producers: ProducersConfig{
			APODBaseURL:   "https://apod.nasa.gov/apod",
			AmbientVideos: map[string]AmbientVideo{},
		},
	}
}

// Validate checks the configuration beyond what struct tags express.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	for emoji, video := range c.Producers.AmbientVideos {
		if w := video.OnlineBetween; w != nil {
			if _, err := time.LoadLocation(w.Timezone); err != nil {
				return fmt.Errorf("ambient video %q: %w", emoji, err)
			}
			if w.EndHour <= w.StartHour {
				return fmt.Errorf("ambient video %q: end_hour must be after start_hour", emoji)
			}
		}
	}

	return nil
}
