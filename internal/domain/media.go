package domain

import (
	"strings"

	"github.com/MrSnakeDoc/reel/internal/apperr"
)

// MediaType is the catalog kind of a title.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// Valid reports whether m is one of the recognized media types.
func (m MediaType) Valid() bool {
	return m == MediaMovie || m == MediaTV
}

// ParseMediaType accepts "movie" or "tv" (case-insensitive).
func ParseMediaType(s string) (MediaType, error) {
	m := MediaType(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", apperr.InvalidArgument("media type %q, must be %q or %q", s, MediaMovie, MediaTV)
	}
	return m, nil
}

// TimeWindow is the trending aggregation window.
type TimeWindow string

const (
	WindowDay  TimeWindow = "day"
	WindowWeek TimeWindow = "week"
)

func (w TimeWindow) Valid() bool {
	return w == WindowDay || w == WindowWeek
}

// ParseTimeWindow accepts "day" or "week" (case-insensitive).
func ParseTimeWindow(s string) (TimeWindow, error) {
	w := TimeWindow(strings.ToLower(strings.TrimSpace(s)))
	if !w.Valid() {
		return "", apperr.InvalidArgument("time window %q, must be %q or %q", s, WindowDay, WindowWeek)
	}
	return w, nil
}

// NormalizeMediaID returns the canonical string form of a media identifier.
// TMDB ids are numeric but bookmarks store them as text.
func NormalizeMediaID(id string) string {
	return strings.TrimSpace(id)
}
