package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Bookmark is a title saved by a user.
//
// At most one bookmark exists per (UserID, MediaID, MediaType).
// Bookmarks are never updated: they are created on add and
// destroyed on remove.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (assigned by the backing table)
	// ─────────────────────────────

	// ID is the row identifier returned by the table.
	// Supabase hands back a number, the sqlite table a ULID.
	ID FlexID `json:"id,omitempty"`

	// UserID is the owner (auth user id).
	UserID string `json:"user_id"`

	// MediaID is the TMDB id, always stored as text.
	// Example: "603"
	MediaID string `json:"media_id"`

	// MediaType is movie or tv.
	MediaType MediaType `json:"media_type"`

	// ─────────────────────────────
	// Display snapshot
	// ─────────────────────────────

	// Title as shown when the bookmark was created.
	Title string `json:"title"`

	// Image is the TMDB image path (e.g. "/abc.jpg"), not a full URL.
	Image string `json:"image"`

	// Rating defaults to 0.
	Rating float64 `json:"rating"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is set by the client on insert.
	CreatedAt time.Time `json:"created_at"`
}

// Key identifies a bookmark within one user's list.
func (b Bookmark) Key() string {
	return string(b.MediaType) + ":" + b.MediaID
}

// Matches reports whether b points at the given title.
func (b Bookmark) Matches(mediaID string, mediaType MediaType) bool {
	return b.MediaID == NormalizeMediaID(mediaID) && b.MediaType == mediaType
}

// FlexID is an identifier that may arrive as a JSON string or number.
type FlexID string

func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FlexID(n.String())
	return nil
}

func (id FlexID) String() string { return string(id) }
