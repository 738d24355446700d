package filters

import (
	"strings"

	"github.com/jrsteele09/go-events-client/events"
	"github.com/jrsteele09/go-events-client/internal/utils"
)

// VenueFeatures flattens the venue's free-form feature JSON into distinct
// lowercase tokens. Strings are taken as is, lists and objects are walked,
// and an object key counts as a feature when its value is true.
func VenueFeatures(e *events.Event) []string {
	if e.Location == nil {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	addToken := func(s string) {
		token := featureToken(s)
		if token == "" {
			return
		}
		if _, ok := seen[token]; ok {
			return
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	flatten(e.Location.Features, addToken)
	return out
}

func flatten(v any, add func(string)) {
	switch v := v.(type) {
	case string:
		add(v)
	case []string:
		for _, s := range v {
			add(s)
		}
	case []any:
		for _, s := range utils.ToStringSlice(v) {
			add(s)
		}
		for _, item := range v {
			if _, isString := item.(string); !isString {
				flatten(item, add)
			}
		}
	case map[string]bool:
		for k, on := range v {
			if on {
				add(k)
			}
		}
	case map[string]any:
		for k, item := range v {
			if on, ok := item.(bool); ok {
				if on {
					add(k)
				}
				continue
			}
			flatten(item, add)
		}
	}
}

func featureToken(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
