package conv

import (
	"strings"
	"unicode/utf8"
)

// TelegramMaxMessageLen leaves a margin below Telegram's 4096 limit.
const TelegramMaxMessageLen = 4000

// SplitHTML splits text into parts of at most maxLen bytes, preferring newline
// boundaries in the later two thirds of a part and never cutting a rune.
func SplitHTML(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			parts = append(parts, text)
			break
		}

		cut := maxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if idx := strings.LastIndex(text[:cut], "\n"); idx > maxLen/3 {
			cut = idx
		}

		parts = append(parts, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	return parts
}
