package events

import (
	"strings"
	"unicode"
)

// NormalizeToken lowercases s and collapses every run of whitespace,
// underscores and hyphens into a single space, so "Live_Music", "live-music"
// and " LIVE  music " compare equal.
func NormalizeToken(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-'
	})
	return strings.Join(fields, " ")
}
