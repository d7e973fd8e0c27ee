package classify

import (
	"strings"
	"unicode"
)

// SanitizeLabel reduces a model response to a single clean color word.
// The response is trimmed, the first whitespace-separated word is
// taken, and every non-letter rune is dropped ("Blue." becomes "Blue").
// Returns the empty string when nothing usable remains.
func SanitizeLabel(s string) string {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return ""
	}

	var b strings.Builder
	for _, r := range fields[0] {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
