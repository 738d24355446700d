// Package filters holds the Discover screen filters and the predicates that
// are evaluated on the client rather than by the events API.
package filters

import (
	"strings"

	"github.com/jrsteele09/go-events-client/events"
	"github.com/pkg/errors"
)

type PriceBand string

const (
	PriceAny     PriceBand = "any"
	PriceFree    PriceBand = "free"
	PriceUnder25 PriceBand = "lt25"
	Price25To50  PriceBand = "btw25and50"
	PriceOver50  PriceBand = "gt50"
)

// ParsePriceBand accepts the band names above; "" means any.
func ParsePriceBand(s string) (PriceBand, error) {
	switch b := PriceBand(strings.ToLower(strings.TrimSpace(s))); b {
	case "", PriceAny:
		return PriceAny, nil
	case PriceFree, PriceUnder25, Price25To50, PriceOver50:
		return b, nil
	}
	return "", errors.Wrapf(ErrUnknownPriceBand, "%q", s)
}

type Audience string

const (
	AudienceNone         Audience = ""
	AudienceFamily       Audience = "family"
	AudienceNightlife    Audience = "nightlife"
	AudienceProfessional Audience = "professional"
)

// ParseAudience accepts the segment names above; "" means no segment.
func ParseAudience(s string) (Audience, error) {
	switch a := Audience(strings.ToLower(strings.TrimSpace(s))); a {
	case AudienceNone, AudienceFamily, AudienceNightlife, AudienceProfessional:
		return a, nil
	}
	return "", errors.Wrapf(ErrUnknownAudience, "%q", s)
}

// DiscoverFilters is transient UI state. The first group is sent to the
// server through Query; PriceBand, VenueFeatures and Audience are applied locally.
type DiscoverFilters struct {
	Date          string // YYYY-MM-DD
	CategoryID    string
	SubcategoryID string
	TagID         string
	RadiusKm      *float64
	MinRating     *float64

	PriceBand     PriceBand
	VenueFeatures []string
	Audience      Audience
}

// Query returns the server-side part of f.
func (f DiscoverFilters) Query() events.Query {
	return events.Query{
		Category:    f.CategoryID,
		Subcategory: f.SubcategoryID,
		Tag:         f.TagID,
		Date:        f.Date,
		MinRating:   f.MinRating,
		RadiusKm:    f.RadiusKm,
	}
}

// Matches reports whether e passes the price, venue feature and audience checks.
// The checks are independent; the result does not depend on their order.
func Matches(e *events.Event, f DiscoverFilters) bool {
	if !matchesPrice(e.Price, f.PriceBand) {
		return false
	}
	features := VenueFeatures(e)
	return matchesFeatures(features, f.VenueFeatures) && matchesAudience(e, features, f.Audience)
}

// Apply returns the events that match f, in input order.
func Apply(list []events.Event, f DiscoverFilters) []events.Event {
	out := make([]events.Event, 0, len(list))
	for i := range list {
		if Matches(&list[i], f) {
			out = append(out, list[i])
		}
	}
	return out
}

func matchesPrice(price *float64, band PriceBand) bool {
	if band == "" || band == PriceAny {
		return true
	}
	if price == nil {
		return false
	}
	p := *price
	switch band {
	case PriceFree:
		return p == 0
	case PriceUnder25:
		return p > 0 && p < 25
	case Price25To50:
		return p >= 25 && p <= 50
	case PriceOver50:
		return p > 50
	}
	return false
}

func matchesFeatures(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, f := range have {
		set[f] = struct{}{}
	}
	for _, w := range want {
		token := featureToken(w)
		if token == "" {
			continue
		}
		if _, ok := set[token]; !ok {
			return false
		}
	}
	return true
}
