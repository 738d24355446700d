package taste

import (
	"cmp"
	"slices"
	"time"

	"github.com/jrsteele09/go-events-client/events"
)

// Reason labels the signal that contributed most to a score.
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonVibe     Reason = "vibe"
	ReasonCategory Reason = "category"
	ReasonTag      Reason = "tag"
	ReasonNear     Reason = "near"
	ReasonTopRated Reason = "top_rated"
	ReasonSoon     Reason = "soon"
)

// reasonPriority breaks ties between equally weighted buckets.
var reasonPriority = []Reason{ReasonVibe, ReasonCategory, ReasonTag, ReasonNear, ReasonTopRated, ReasonSoon}

const (
	categoryPoints   = 3
	vibePoints       = 3
	tagPoints        = 2
	tagsConsidered   = 2
	topTagsCompared  = 2
	nearKm           = 5.0
	nearbyKm         = 10.0
	topRatedAvg      = 4.5
	topRatedMinCount = 10
	soonWindow       = 6 * time.Hour
)

// Score is an event's relevance for the profile. Reason is ReasonNone when Score is 0.
type Score struct {
	Score  int    `json:"score"`
	Reason Reason `json:"reason,omitempty"`
}

// Personalized reports whether any signal matched.
func (s Score) Personalized() bool { return s.Score > 0 }

// ScoreEventForYou scores e from independent buckets. The category and vibe
// buckets overlap, so only the larger of the two counts toward the total.
func ScoreEventForYou(e *events.Event, p Profile, now time.Time) Score {
	buckets := map[Reason]int{}

	category := e.CategoryToken()
	if category != "" {
		if category == p.TopCategory() {
			buckets[ReasonCategory] = categoryPoints
		}
		if p.SeededVibe != "" && category == p.SeededVibe {
			buckets[ReasonVibe] = vibePoints
		}
	}

	topTags := p.TopTags(topTagsCompared)
	for _, tag := range leadingTags(e, tagsConsidered) {
		if slices.Contains(topTags, tag) {
			buckets[ReasonTag] += tagPoints
		}
	}

	if e.DistanceKm != nil {
		switch d := *e.DistanceKm; {
		case d <= nearKm:
			buckets[ReasonNear] = 2
		case d <= nearbyKm:
			buckets[ReasonNear] = 1
		}
	}

	if e.RatingAvg != nil && *e.RatingAvg >= topRatedAvg && e.RatingCount >= topRatedMinCount {
		buckets[ReasonTopRated] = 2
	}

	if start := e.StartTime.Time; !start.IsZero() && start.After(now) && start.Sub(now) <= soonWindow {
		buckets[ReasonSoon] = 1
	}

	total := max(buckets[ReasonVibe], buckets[ReasonCategory]) +
		buckets[ReasonTag] + buckets[ReasonNear] + buckets[ReasonTopRated] + buckets[ReasonSoon]
	if total == 0 {
		return Score{}
	}

	reason, best := ReasonNone, 0
	for _, r := range reasonPriority {
		if buckets[r] > best {
			reason, best = r, buckets[r]
		}
	}
	return Score{Score: total, Reason: reason}
}

// Ranked pairs an event with its score.
type Ranked struct {
	Event events.Event
	Score Score
}

// RankForYou scores every event and orders them by descending score. Equal
// scores keep their input order.
func RankForYou(list []events.Event, p Profile, now time.Time) []Ranked {
	ranked := make([]Ranked, len(list))
	for i := range list {
		ranked[i] = Ranked{Event: list[i], Score: ScoreEventForYou(&list[i], p, now)}
	}
	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		return cmp.Compare(b.Score.Score, a.Score.Score)
	})
	return ranked
}
