package farcaster

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// casts are capped at 320 characters
	castMaxLen = 320
	// room left for the source attribution
	truncateAt = 280
)

var tcoPattern = regexp.MustCompile(`https://t\.co/\w+`)

// FormatCast turns tweet text into cast text: t.co shortlinks are
// stripped (the attribution carries the canonical tweet URL), overlong
// text is truncated with an ellipsis, and a source attribution is
// appended when it fits.
func FormatCast(tweetText, tweetURL string) string {
	text := strings.TrimSpace(tweetText)
	text = strings.TrimSpace(tcoPattern.ReplaceAllString(text, ""))

	if utf8.RuneCountInString(text) > truncateAt {
		runes := []rune(text)
		text = string(runes[:truncateAt-3]) + "..."
	}

	attribution := "\n\nOriginally posted on Twitter: " + tweetURL
	if utf8.RuneCountInString(text+attribution) <= castMaxLen {
		return text + attribution
	}

	shortAttribution := "\n\n🐦 " + tweetURL
	if utf8.RuneCountInString(text+shortAttribution) <= castMaxLen {
		return text + shortAttribution
	}

	return text
}
