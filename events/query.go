package events

import (
	"net/url"
	"strconv"
	"time"
)

// Sort orders the list endpoint.
type Sort string

const (
	SortSoonest  Sort = "soonest"
	SortTopRated Sort = "toprated"
	SortPrice    Sort = "price"
)

func (s Sort) valid() bool {
	switch s {
	case "", SortSoonest, SortTopRated, SortPrice:
		return true
	}
	return false
}

const dateLayout = "2006-01-02"

// Query holds the server-side filters of GET /api/events. Zero values are not sent.
type Query struct {
	Category    string
	Subcategory string
	Tag         string
	Date        string // YYYY-MM-DD
	MinRating   *float64
	RadiusKm    *float64
	Sort        Sort
}

// Validate rejects values the server would answer with 400.
func (q Query) Validate() error {
	if q.Date != "" {
		if _, err := time.Parse(dateLayout, q.Date); err != nil {
			return ErrInvalidDate
		}
	}
	if !q.Sort.valid() {
		return ErrInvalidSort
	}
	return nil
}

// Values encodes the query string.
func (q Query) Values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("category", q.Category)
	set("subcategory", q.Subcategory)
	set("tag", q.Tag)
	set("date", q.Date)
	if q.MinRating != nil {
		v.Set("min_rating", strconv.FormatFloat(*q.MinRating, 'f', -1, 64))
	}
	if q.RadiusKm != nil {
		v.Set("radius_km", strconv.FormatFloat(*q.RadiusKm, 'f', -1, 64))
	}
	set("sort", string(q.Sort))
	return v
}

// DateOf formats t as a Query date.
func DateOf(t time.Time) string {
	return t.Format(dateLayout)
}
