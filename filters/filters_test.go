package filters_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-events-client/events"
	"github.com/jrsteele09/go-events-client/filters"
	"github.com/jrsteele09/go-events-client/internal/utils"
	"github.com/stretchr/testify/require"
)

func priced(p float64) events.Event {
	return events.Event{ID: "e", Price: utils.Ptr(p)}
}

func TestPriceBands(t *testing.T) {
	bands := []filters.PriceBand{filters.PriceFree, filters.PriceUnder25, filters.Price25To50, filters.PriceOver50}

	tests := []struct {
		price   *float64
		matches []filters.PriceBand
	}{
		{price: utils.Ptr(0.0), matches: []filters.PriceBand{filters.PriceFree}},
		{price: utils.Ptr(0.01), matches: []filters.PriceBand{filters.PriceUnder25}},
		{price: utils.Ptr(24.99), matches: []filters.PriceBand{filters.PriceUnder25}},
		{price: utils.Ptr(25.0), matches: []filters.PriceBand{filters.Price25To50}},
		{price: utils.Ptr(50.0), matches: []filters.PriceBand{filters.Price25To50}},
		{price: utils.Ptr(50.01), matches: []filters.PriceBand{filters.PriceOver50}},
		{price: nil, matches: nil},
	}

	for _, tc := range tests {
		e := events.Event{ID: "e", Price: tc.price}
		require.True(t, filters.Matches(&e, filters.DiscoverFilters{PriceBand: filters.PriceAny}))
		require.True(t, filters.Matches(&e, filters.DiscoverFilters{}))
		for _, band := range bands {
			want := false
			for _, m := range tc.matches {
				want = want || m == band
			}
			require.Equal(t, want, filters.Matches(&e, filters.DiscoverFilters{PriceBand: band}), "price %v band %s", utils.Value(tc.price), band)
		}
	}
}

func TestParse(t *testing.T) {
	b, err := filters.ParsePriceBand(" LT25 ")
	require.NoError(t, err)
	require.Equal(t, filters.PriceUnder25, b)
	b, err = filters.ParsePriceBand("")
	require.NoError(t, err)
	require.Equal(t, filters.PriceAny, b)
	_, err = filters.ParsePriceBand("cheap")
	require.ErrorIs(t, err, filters.ErrUnknownPriceBand)
	require.ErrorContains(t, err, `"cheap"`)

	a, err := filters.ParseAudience("Family")
	require.NoError(t, err)
	require.Equal(t, filters.AudienceFamily, a)
	_, err = filters.ParseAudience("teens")
	require.ErrorIs(t, err, filters.ErrUnknownAudience)
}

func withFeatures(t *testing.T, raw string) events.Event {
	t.Helper()
	var features any
	require.NoError(t, json.Unmarshal([]byte(raw), &features))
	return events.Event{ID: "e", Location: &events.Location{Name: "Hall", Features: features}}
}

func TestVenueFeatures(t *testing.T) {
	t.Run("nested json", func(t *testing.T) {
		e := withFeatures(t, `{"accessibility": {"Step Free": true, "hearing loop": false}, "amenities": ["Bar", "  outdoor   seating "], "parking": "street", "capacity": 300, "notes": null}`)
		require.ElementsMatch(t, []string{"step free", "bar", "outdoor seating", "street"}, filters.VenueFeatures(&e))
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		e := withFeatures(t, `["Bar", "bar", ["BAR"], {"bar": true}]`)
		require.Equal(t, []string{"bar"}, filters.VenueFeatures(&e))
	})

	t.Run("mixed list keeps strings and walks the rest", func(t *testing.T) {
		e := withFeatures(t, `["Wifi", 42, {"cloakroom": true, "bar": false}, null, ["Late Licence"]]`)
		require.ElementsMatch(t, []string{"wifi", "cloakroom", "late licence"}, filters.VenueFeatures(&e))
	})

	t.Run("plain string and typed values", func(t *testing.T) {
		e := events.Event{Location: &events.Location{Features: "wifi"}}
		require.Equal(t, []string{"wifi"}, filters.VenueFeatures(&e))

		e.Location.Features = map[string]bool{"wifi": true, "cloakroom": false}
		require.Equal(t, []string{"wifi"}, filters.VenueFeatures(&e))
	})

	t.Run("no location", func(t *testing.T) {
		require.Empty(t, filters.VenueFeatures(&events.Event{}))
	})
}

func TestMatches_VenueFeatures(t *testing.T) {
	e := withFeatures(t, `{"step free": true, "amenities": ["bar", "outdoor seating"]}`)

	require.True(t, filters.Matches(&e, filters.DiscoverFilters{}))
	require.True(t, filters.Matches(&e, filters.DiscoverFilters{VenueFeatures: []string{"Bar", "Outdoor  Seating"}}))
	require.True(t, filters.Matches(&e, filters.DiscoverFilters{VenueFeatures: []string{"step free"}}))
	require.False(t, filters.Matches(&e, filters.DiscoverFilters{VenueFeatures: []string{"bar", "parking"}}))

	bare := events.Event{ID: "bare"}
	require.False(t, filters.Matches(&bare, filters.DiscoverFilters{VenueFeatures: []string{"bar"}}))
}

func TestMatches_Audience(t *testing.T) {
	tests := []struct {
		name     string
		event    events.Event
		audience filters.Audience
		want     bool
	}{
		{"no segment", events.Event{Title: "Quiet reading"}, filters.AudienceNone, true},
		{"family in title", events.Event{Title: "KIDS Science Day"}, filters.AudienceFamily, true},
		{"family in tags", events.Event{Title: "Picnic", Tags: []string{"All-Ages"}}, filters.AudienceFamily, true},
		{"nightlife in category", events.Event{Title: "Saturday", Category: "Club"}, filters.AudienceNightlife, true},
		{"nightlife in location", events.Event{Title: "Trivia", Location: &events.Location{Name: "Corner Bar"}}, filters.AudienceNightlife, true},
		{"professional in description", events.Event{Title: "Go", Description: "A hands-on workshop"}, filters.AudienceProfessional, true},
		{"no keyword", events.Event{Title: "Pottery", Description: "Clay"}, filters.AudienceProfessional, false},
		{"unknown segment", events.Event{Title: "Kids"}, filters.Audience("teens"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, filters.Matches(&tc.event, filters.DiscoverFilters{Audience: tc.audience}))
		})
	}

	t.Run("venue features are searched", func(t *testing.T) {
		e := withFeatures(t, `["DJ booth"]`)
		e.Title = "Open evening"
		require.True(t, filters.Matches(&e, filters.DiscoverFilters{Audience: filters.AudienceNightlife}))
	})
}

func TestMatches_AllChecksMustPass(t *testing.T) {
	e := withFeatures(t, `["bar"]`)
	e.Title = "Late party"
	e.Price = utils.Ptr(30.0)

	f := filters.DiscoverFilters{PriceBand: filters.Price25To50, VenueFeatures: []string{"bar"}, Audience: filters.AudienceNightlife}
	require.True(t, filters.Matches(&e, f))

	f.PriceBand = filters.PriceUnder25
	require.False(t, filters.Matches(&e, f))

	f.PriceBand = filters.Price25To50
	f.Audience = filters.AudienceFamily
	require.False(t, filters.Matches(&e, f))
}

func TestApply(t *testing.T) {
	list := []events.Event{priced(0), priced(10), priced(0), {ID: "unpriced"}}
	list[0].ID, list[1].ID, list[2].ID = "a", "b", "c"

	got := filters.Apply(list, filters.DiscoverFilters{PriceBand: filters.PriceFree})
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].ID)
	require.Equal(t, "c", got[1].ID)
	require.Len(t, filters.Apply(list, filters.DiscoverFilters{}), 4)
	require.Empty(t, filters.Apply(nil, filters.DiscoverFilters{}))
}

func TestDiscoverFilters_Query(t *testing.T) {
	f := filters.DiscoverFilters{
		Date:          "2026-10-14",
		CategoryID:    "music",
		SubcategoryID: "jazz",
		TagID:         "free",
		MinRating:     utils.Ptr(4.0),
		RadiusKm:      utils.Ptr(5.0),
		PriceBand:     filters.PriceFree,
		Audience:      filters.AudienceFamily,
	}
	q := f.Query()
	require.NoError(t, q.Validate())
	require.Equal(t, "category=music&date=2026-10-14&min_rating=4&radius_km=5&subcategory=jazz&tag=free", q.Values().Encode())
}
