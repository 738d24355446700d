package events

import (
	"github.com/jrsteele09/go-events-client/internal/utils"
)

// Location is the venue an event takes place at.
type Location struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	Features      any      `json:"features,omitempty"` // free-form JSON: strings, lists or flag objects
	CoverImageURL string   `json:"cover_image_url,omitempty"`
	RatingAvg     *float64 `json:"rating_avg,omitempty"`
	RatingCount   int      `json:"rating_count,omitempty"`
}

// Event is the summary projection returned by list endpoints and stored in the saved collection.
type Event struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Category      string     `json:"category,omitempty"`
	StartTime     utils.Time `json:"start_time"`
	EndTime       utils.Time `json:"end_time"`
	Description   string     `json:"description,omitempty"`
	CoverImageURL string     `json:"cover_image_url,omitempty"`
	Price         *float64   `json:"price,omitempty"` // nil when the server has no price
	RatingAvg     *float64   `json:"rating_avg,omitempty"`
	RatingCount   int        `json:"rating_count,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	Location      *Location  `json:"location,omitempty"`

	// DistanceKm is filled on the client from the device position.
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// CategoryToken returns the normalized category, or "" if the event has none.
func (e *Event) CategoryToken() string {
	return NormalizeToken(e.Category)
}

// TagTokens returns the normalized tags in their original order, skipping blanks.
func (e *Event) TagTokens() []string {
	tokens := make([]string, 0, len(e.Tags))
	for _, tag := range e.Tags {
		if t := NormalizeToken(tag); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

type Artist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Bio         string `json:"bio,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	SocialLinks any    `json:"social_links,omitempty"`
}

type Review struct {
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment,omitempty"`
	Photos    []string   `json:"photos,omitempty"`
	CreatedAt utils.Time `json:"created_at"`
}

type ReviewSummary struct {
	Count     int     `json:"count"`
	RatingAvg float64 `json:"rating_avg"`
}

type Reviews struct {
	Summary ReviewSummary `json:"summary"`
	Latest  []Review      `json:"latest"`
}

// Detail is the full event returned by GET /api/events/:id.
type Detail struct {
	Event
	Artists []Artist `json:"artists,omitempty"`
	Photos  []string `json:"photos,omitempty"`
	Reviews Reviews  `json:"reviews"`
}

// NewReview is the body of POST /api/events/:id/reviews.
type NewReview struct {
	Rating  int      `json:"rating"`
	Comment string   `json:"comment,omitempty"`
	Photos  []string `json:"photos,omitempty"`
}

func (r NewReview) validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}
