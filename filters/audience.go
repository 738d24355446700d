package filters

import (
	"strings"

	"github.com/jrsteele09/go-events-client/events"
)

var audienceKeywords = map[Audience][]string{
	AudienceFamily:       {"family", "kids", "kid", "children", "child", "all ages", "all-ages"},
	AudienceNightlife:    {"nightlife", "night", "club", "dj", "bar", "party", "late"},
	AudienceProfessional: {"networking", "professional", "business", "conference", "workshop", "career", "seminar", "meetup"},
}

func matchesAudience(e *events.Event, features []string, a Audience) bool {
	if a == AudienceNone {
		return true
	}
	keywords, ok := audienceKeywords[a]
	if !ok {
		return false
	}

	parts := []string{e.Title, e.Description, e.Category}
	if e.Location != nil {
		parts = append(parts, e.Location.Name)
	}
	parts = append(parts, e.Tags...)
	parts = append(parts, features...)
	haystack := strings.ToLower(strings.Join(parts, " "))

	for _, k := range keywords {
		if strings.Contains(haystack, k) {
			return true
		}
	}
	return false
}
