// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

package classifier

import (
	"strings"

	"github.com/tomtom215/slidecast/internal/models"
)

// colorPalette lists the color-name substrings recognized in reaction
// names, in match priority within a single reaction.
var colorPalette = []string{
	"black", "red", "orange", "yellow", "green", "blue", "purple", "brown",
}

// saddleBrown replaces the too-dark CSS "brown".
const saddleBrown = "#8b4513"

// DeriveColor computes the background color from the reaction list,
// scanned most-recent-first. A reaction containing "night" forces the
// night color; otherwise the first reaction containing a palette name
// sets that color ("brown" remaps to saddle brown). No match reverts to
// the default. Pure function of the ordered list.
func DeriveColor(reactions []string) string {
	for _, reaction := range reactions {
		if strings.Contains(reaction, "night") {
			return models.NightColor
		}
		for _, color := range colorPalette {
			if strings.Contains(reaction, color) {
				if color == "brown" {
					return saddleBrown
				}
				return color
			}
		}
	}
	return models.DefaultColor
}
