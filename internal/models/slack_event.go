// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

package models

// Top-level callback types delivered to the events endpoint.
const (
	CallbackURLVerification = "url_verification"
	CallbackEventCallback   = "event_callback"
)

// Inner event types and message subtypes.
const (
	EventTypeMessage         = "message"
	EventTypeReactionAdded   = "reaction_added"
	EventTypeReactionRemoved = "reaction_removed"

	SubtypeFileShare      = "file_share"
	SubtypeMessageChanged = "message_changed"
	SubtypeMessageDeleted = "message_deleted"
)

// EventEnvelope is the top-level shape of a Slack events API request.
type EventEnvelope struct {
	Type      string      `json:"type"`
	Challenge string      `json:"challenge,omitempty"`
	Event     *SlackEvent `json:"event,omitempty"`
}

// SlackEvent is the decoded inner event of an event_callback.
//
// Slack delivers a loosely-shaped payload whose meaning depends on the
// type/subtype pair; Kind() collapses that pair (plus the presence checks
// the pairs imply) into a single discriminant so the classifier can match
// exhaustively instead of probing fields.
type SlackEvent struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`
	TS      string `json:"ts,omitempty"`
	Text    string `json:"text,omitempty"`

	// file_share
	Files []SlackFile `json:"files,omitempty"`

	// message_changed / message_deleted
	Message         *NestedMessage `json:"message,omitempty"`
	PreviousMessage *NestedMessage `json:"previous_message,omitempty"`

	// reaction_added / reaction_removed
	Reaction string     `json:"reaction,omitempty"`
	Item     *EventItem `json:"item,omitempty"`
}

// SlackFile describes an uploaded file attached to a file_share message.
type SlackFile struct {
	Filetype   string `json:"filetype"`
	URLPrivate string `json:"url_private"`
}

// NestedMessage is the message/previous_message object carried by
// message_changed and message_deleted events.
type NestedMessage struct {
	TS          string       `json:"ts"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a Slack unfurl attachment. Exactly one of VideoHTML or
// ImageURL is populated for the shapes this relay acts on.
type Attachment struct {
	VideoHTML string `json:"video_html,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// EventItem references the message a reaction was applied to.
type EventItem struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

// EventKind is the discriminant for the tagged event union.
type EventKind int

// Event kinds, in the order the classifier matches them.
const (
	KindUnknown EventKind = iota
	KindFileShare
	KindMessageChanged
	KindMessageDeleted
	KindPlainMessage
	KindReactionAdded
	KindReactionRemoved
)

// Kind maps the event's type/subtype pair to its discriminant.
// Unrecognized combinations map to KindUnknown, which the classifier
// treats as a no-op.
func (e *SlackEvent) Kind() EventKind {
	switch e.Type {
	case EventTypeMessage:
		switch e.Subtype {
		case SubtypeFileShare:
			return KindFileShare
		case SubtypeMessageChanged:
			return KindMessageChanged
		case SubtypeMessageDeleted:
			return KindMessageDeleted
		case "":
			return KindPlainMessage
		}
	case EventTypeReactionAdded:
		return KindReactionAdded
	case EventTypeReactionRemoved:
		return KindReactionRemoved
	}
	return KindUnknown
}
