// Package taste learns category and tag affinities from local interactions
// and uses them to rank events without a server round trip.
package taste

import (
	"cmp"
	"slices"
	"time"

	"github.com/jrsteele09/go-events-client/events"
	"github.com/jrsteele09/go-events-client/internal/utils"
)

// Profile is the persisted affinity model. Weights only ever grow.
type Profile struct {
	CategoryCounts map[string]float64 `json:"categoryCounts"`
	TagCounts      map[string]float64 `json:"tagCounts"`
	SeededVibe     string             `json:"seededVibe,omitempty"`
	UpdatedAt      int64              `json:"updatedAt"` // epoch ms
}

// NewProfile returns an empty profile.
func NewProfile() Profile {
	return Profile{CategoryCounts: map[string]float64{}, TagCounts: map[string]float64{}}
}

type InteractionKind string

const (
	InteractionVibe InteractionKind = "vibe" // user picked a vibe during onboarding
	InteractionSave InteractionKind = "save"
	InteractionOpen InteractionKind = "open"
)

// Interaction is one signal. Vibe is read for InteractionVibe, Event for the others.
type Interaction struct {
	Kind  InteractionKind
	Vibe  string
	Event *events.Event
	At    time.Time
}

type weights struct {
	category float64
	tag      float64
}

var interactionWeights = map[InteractionKind]weights{
	InteractionSave: {category: 3, tag: 2},
	InteractionOpen: {category: 1, tag: 1},
}

const (
	vibeWeight    = 5
	tagsPerSignal = 2
)

// UpdateFromInteraction returns p with the interaction's weight added. p is not modified.
func UpdateFromInteraction(p Profile, in Interaction) Profile {
	next := p.clone()

	switch in.Kind {
	case InteractionVibe:
		vibe := events.NormalizeToken(in.Vibe)
		if vibe == "" {
			return p
		}
		next.SeededVibe = vibe
		add(next.CategoryCounts, vibe, vibeWeight)
	case InteractionSave, InteractionOpen:
		if in.Event == nil {
			return p
		}
		w := interactionWeights[in.Kind]
		if category := in.Event.CategoryToken(); category != "" {
			add(next.CategoryCounts, category, w.category)
		}
		for _, tag := range leadingTags(in.Event, tagsPerSignal) {
			add(next.TagCounts, tag, w.tag)
		}
	default:
		return p
	}

	if !in.At.IsZero() {
		next.UpdatedAt = in.At.UnixMilli()
	}
	return next
}

func add(counts map[string]float64, token string, w float64) {
	counts[token] = utils.Round(counts[token]+w, 2)
}

// leadingTags returns up to n distinct normalized tags in event order.
func leadingTags(e *events.Event, n int) []string {
	out := make([]string, 0, n)
	for _, tag := range e.TagTokens() {
		if len(out) == n {
			break
		}
		if !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}

func (p Profile) clone() Profile {
	next := NewProfile()
	for k, v := range p.CategoryCounts {
		next.CategoryCounts[k] = v
	}
	for k, v := range p.TagCounts {
		next.TagCounts[k] = v
	}
	next.SeededVibe = p.SeededVibe
	next.UpdatedAt = p.UpdatedAt
	return next
}

// sanitized merges case and punctuation variants and drops blank tokens and
// non-positive weights, as found in older or hand-edited stored profiles.
func (p Profile) sanitized() Profile {
	clean := func(in map[string]float64) map[string]float64 {
		out := map[string]float64{}
		for k, v := range in {
			token := events.NormalizeToken(k)
			if token == "" || !(v > 0) {
				continue
			}
			out[token] = utils.Round(out[token]+v, 2)
		}
		return out
	}
	return Profile{
		CategoryCounts: clean(p.CategoryCounts),
		TagCounts:      clean(p.TagCounts),
		SeededVibe:     events.NormalizeToken(p.SeededVibe),
		UpdatedAt:      p.UpdatedAt,
	}
}

// TopCategory returns the highest-weighted category, or "" for an empty profile.
func (p Profile) TopCategory() string {
	top := topTokens(p.CategoryCounts, 1)
	if len(top) == 0 {
		return ""
	}
	return top[0]
}

// TopTags returns up to n tags by descending weight.
func (p Profile) TopTags(n int) []string {
	return topTokens(p.TagCounts, n)
}

// topTokens orders by weight, then token, so equal weights rank the same on every call.
func topTokens(counts map[string]float64, n int) []string {
	tokens := make([]string, 0, len(counts))
	for k, v := range counts {
		if v > 0 {
			tokens = append(tokens, k)
		}
	}
	slices.SortFunc(tokens, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if len(tokens) > n {
		tokens = tokens[:n]
	}
	return tokens
}
