// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/slidecast/config.yaml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix namespaces Slidecast environment variables.
const envPrefix = "SLIDECAST_"

// envKeyMap maps environment variables to config keys explicitly, because
// underscores appear both as separators and inside key names
// (SLACK + SIGNING_SECRET).
var envKeyMap = map[string]string{
	"SLIDECAST_SERVER_HOST":                "server.host",
	"SLIDECAST_SERVER_PORT":                "server.port",
	"SLIDECAST_SERVER_SHUTDOWN_TIMEOUT":    "server.shutdown_timeout",
	"SLIDECAST_SERVER_CORS_ORIGINS":        "server.cors_origins",
	"SLIDECAST_SERVER_RATE_LIMIT_REQUESTS": "server.rate_limit_requests",
	"SLIDECAST_SERVER_RATE_LIMIT_WINDOW":   "server.rate_limit_window",
	"SLIDECAST_LOG_LEVEL":                  "logging.level",
	"SLIDECAST_LOG_FORMAT":                 "logging.format",
	"SLIDECAST_SLACK_SIGNING_SECRET":       "slack.signing_secret",
	"SLIDECAST_SLACK_BOT_TOKEN":            "slack.bot_token",
	"SLIDECAST_SLACK_POST_CHANNEL":         "slack.post_channel",
	"SLIDECAST_HISTORY_DIR":                "history.dir",
	"SLIDECAST_HISTORY_KEY":                "history.key",
	"SLIDECAST_HISTORY_MAX_ENTRIES":        "history.max_entries",
	"SLIDECAST_FIRE_VIDEO_URL":             "producers.fire_video_url",
	"SLIDECAST_SANDWICH_DIR":               "producers.sandwich_dir",
	"SLIDECAST_APOD_BASE_URL":              "producers.apod_base_url",
	"SLIDECAST_MOON_URLS":                  "producers.moon_urls",
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: struct defaults.
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// Layer 2: optional config file.
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %q: %w", path, err)
		}
	}

	// Layer 3: environment variables.
	if err := k.Load(env.Provider(envPrefix, ".", func(key string) string {
		return envKeyMap[key]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
