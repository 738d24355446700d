package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/go-events-client/events"
	"github.com/jrsteele09/go-events-client/filters"
	"github.com/jrsteele09/go-events-client/internal/utils"
	"github.com/jrsteele09/go-events-client/taste"
)

const (
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m" // Bright black, often appears as gray

	ResetColor = "\033[0m" // Reset to default color
)

var reasonColors = map[taste.Reason]string{
	taste.ReasonVibe:     Magenta,
	taste.ReasonCategory: Blue,
	taste.ReasonTag:      Cyan,
	taste.ReasonNear:     Green,
	taste.ReasonTopRated: Yellow,
	taste.ReasonSoon:     Yellow,
}

func colour(c, s string) string { return c + s + ResetColor }

func savedMark(saved bool) string {
	if saved {
		return colour(Yellow, "★")
	}
	return " "
}

func price(e *events.Event) string {
	switch {
	case e.Price == nil:
		return "-"
	case utils.Value(e.Price) == 0:
		return "free"
	default:
		return fmt.Sprintf("£%.2f", utils.Value(e.Price))
	}
}

func when(e *events.Event) string {
	if e.StartTime.IsZero() {
		return "tba"
	}
	return e.StartTime.Format("Mon 2 Jan 15:04")
}

func eventLine(e *events.Event) string {
	parts := []string{when(e), e.Title}
	if e.Category != "" {
		parts = append(parts, colour(Gray, e.Category))
	}
	if e.Location != nil && e.Location.Name != "" {
		parts = append(parts, "@ "+e.Location.Name)
	}
	parts = append(parts, price(e))
	if e.RatingCount > 0 {
		parts = append(parts, fmt.Sprintf("%.1f/5 (%d)", utils.Value(e.RatingAvg), e.RatingCount))
	}
	if e.DistanceKm != nil {
		parts = append(parts, fmt.Sprintf("%.1f km", *e.DistanceKm))
	}
	return strings.Join(parts, "  ")
}

func printEvents(w io.Writer, list []events.Event, isSaved func(id string) bool) {
	if len(list) == 0 {
		fmt.Fprintln(w, "no events")
		return
	}
	for i := range list {
		e := &list[i]
		fmt.Fprintf(w, "%s %-10s %s\n", savedMark(isSaved(e.ID)), e.ID, eventLine(e))
	}
}

func printRanked(w io.Writer, ranked []taste.Ranked) {
	if len(ranked) == 0 {
		fmt.Fprintln(w, "nothing matches your taste yet; try: eventsctl vibe <vibe>")
		return
	}
	for i := range ranked {
		r := &ranked[i]
		reason := "-"
		if r.Score.Reason != taste.ReasonNone {
			reason = colour(reasonColors[r.Score.Reason], string(r.Score.Reason))
		}
		fmt.Fprintf(w, "%2d %-20s %-10s %s\n", r.Score.Score, reason, r.Event.ID, eventLine(&r.Event))
	}
}

func printDetail(w io.Writer, d *events.Detail, saved bool) {
	fmt.Fprintf(w, "%s %s\n", savedMark(saved), d.Title)
	fmt.Fprintf(w, "  %s\n", eventLine(&d.Event))
	if d.Description != "" {
		fmt.Fprintf(w, "  %s\n", d.Description)
	}
	if len(d.Tags) > 0 {
		fmt.Fprintf(w, "  tags: %s\n", strings.Join(d.Tags, ", "))
	}
	if features := filters.VenueFeatures(&d.Event); len(features) > 0 {
		fmt.Fprintf(w, "  venue: %s\n", strings.Join(features, ", "))
	}
	for _, a := range d.Artists {
		fmt.Fprintf(w, "  artist: %s\n", a.Name)
	}
	if d.Reviews.Summary.Count > 0 {
		fmt.Fprintf(w, "  rated %.1f from %d reviews\n", utils.Round(d.Reviews.Summary.RatingAvg, 1), d.Reviews.Summary.Count)
	}
	for _, r := range d.Reviews.Latest {
		fmt.Fprintf(w, "    %d/5 %s\n", r.Rating, r.Comment)
	}
}
