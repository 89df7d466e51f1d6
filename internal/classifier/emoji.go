// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

package classifier

import "regexp"

var (
	codeBlockRe  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`.*?`")
	emojiRe      = regexp.MustCompile(`:(\w+):`)

	// videoDimensionsRe matches the fixed width/height attributes Slack
	// puts on unfurled video embeds; they are stripped so the viewer CSS
	// can size the frame.
	videoDimensionsRe = regexp.MustCompile(`width="\d+" height="\d+" `)
)

// ExtractEmoji returns the emoji tokens in message text, in order of
// appearance. Tokens inside code blocks or inline code are ignored so
// quoted examples don't trigger producers.
func ExtractEmoji(text string) []string {
	text = codeBlockRe.ReplaceAllString(text, "")
	text = inlineCodeRe.ReplaceAllString(text, "")

	matches := emojiRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	emoji := make([]string, 0, len(matches))
	for _, m := range matches {
		emoji = append(emoji, m[1])
	}
	return emoji
}

// stripVideoDimensions removes fixed width/height attributes from
// embedded video markup.
func stripVideoDimensions(html string) string {
	return videoDimensionsRe.ReplaceAllString(html, "")
}
