// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

package models

import "testing"

func TestSlackEventKind(t *testing.T) {
	tests := []struct {
		name  string
		event SlackEvent
		want  EventKind
	}{
		{"file share", SlackEvent{Type: EventTypeMessage, Subtype: SubtypeFileShare}, KindFileShare},
		{"message changed", SlackEvent{Type: EventTypeMessage, Subtype: SubtypeMessageChanged}, KindMessageChanged},
		{"message deleted", SlackEvent{Type: EventTypeMessage, Subtype: SubtypeMessageDeleted}, KindMessageDeleted},
		{"plain message", SlackEvent{Type: EventTypeMessage}, KindPlainMessage},
		{"unknown subtype", SlackEvent{Type: EventTypeMessage, Subtype: "bot_message"}, KindUnknown},
		{"reaction added", SlackEvent{Type: EventTypeReactionAdded}, KindReactionAdded},
		{"reaction removed", SlackEvent{Type: EventTypeReactionRemoved}, KindReactionRemoved},
		{"unknown type", SlackEvent{Type: "team_join"}, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewSlideEntryDefaultsColor(t *testing.T) {
	entry := NewSlideEntry("100", "<img>", "")
	if entry.Color != DefaultColor {
		t.Errorf("color = %q, want default", entry.Color)
	}

	black := NewSlideEntry("101", "<img>", "black")
	if black.Color != "black" {
		t.Errorf("color = %q, want black", black.Color)
	}
}
