// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

// Package models defines the shared data types for Slidecast: the slide
// history entries persisted in the backing store, the decoded Slack event
// payloads, and the websocket state frame pushed to viewers.
package models

// Color constants used by the reaction-driven color derivation.
const (
	// DefaultColor is the background color of a slide with no matching reaction.
	DefaultColor = "#fff"

	// NightColor is forced by any reaction containing "night".
	NightColor = "#000"
)

// SlideEntry is one displayable unit: rendered HTML (an <img> with a data
// URI, an <iframe>, a <video> tag) plus a reaction-derived background color.
//
// ID is the Slack message timestamp of the originating message. It is the
// join key for reaction and deletion events and is unique among retained
// entries. Reactions are kept most-recent-first.
type SlideEntry struct {
	ID        string   `json:"id"`
	HTML      string   `json:"html"`
	Color     string   `json:"color"`
	Reactions []string `json:"reactions"`
}

// NewSlideEntry creates an entry with the given id and markup. An empty
// color falls back to DefaultColor.
func NewSlideEntry(id, html, color string) SlideEntry {
	if color == "" {
		color = DefaultColor
	}
	return SlideEntry{
		ID:        id,
		HTML:      html,
		Color:     color,
		Reactions: []string{},
	}
}

// State is the filtered view of a SlideEntry pushed to viewers. Every
// state-affecting mutation broadcasts the full current state; partial
// frames are never sent.
type State struct {
	HTML  string `json:"html"`
	Color string `json:"color"`
}

// State returns the broadcastable view of the entry.
func (e *SlideEntry) State() State {
	return State{HTML: e.HTML, Color: e.Color}
}
