package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reel/internal/apperr"
	"github.com/MrSnakeDoc/reel/internal/bookmarks"
	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/httpserver/mw"
)

type bookmarksResponse struct {
	Bookmarks   []domain.Bookmark `json:"bookmarks"`
	Loading     bool              `json:"loading"`
	Initialized bool              `json:"initialized"`
	Error       string            `json:"error,omitempty"`
}

type searchResponse struct {
	Query   string                     `json:"query"`
	Results []domain.BookmarkCandidate `json:"results"`
}

type addBookmarkRequest struct {
	MediaID   domain.FlexID `json:"media_id"`
	MediaType string        `json:"media_type"`
	Title     string        `json:"title"`
	Image     string        `json:"image"`
	Rating    float64       `json:"rating"`
}

type bookmarkedResponse struct {
	MediaID    string           `json:"media_id"`
	MediaType  domain.MediaType `json:"media_type"`
	Bookmarked bool             `json:"bookmarked"`
}

func listState(store *bookmarks.Store) bookmarksResponse {
	resp := bookmarksResponse{
		Bookmarks:   store.Bookmarks(),
		Loading:     store.Loading(),
		Initialized: store.Initialized(),
	}
	if err := store.Err(); err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// freshFailure returns the store error recorded since before, if any.
func freshFailure(store *bookmarks.Store, before error) error {
	if err := store.Err(); err != nil && err != before {
		return err
	}
	return nil
}

func mediaFromPath(r *http.Request) (string, domain.MediaType, error) {
	mediaType, err := domain.ParseMediaType(chi.URLParam(r, "mediaType"))
	if err != nil {
		return "", "", err
	}
	mediaID := domain.NormalizeMediaID(chi.URLParam(r, "mediaID"))
	if mediaID == "" {
		return "", "", apperr.InvalidArgument("media id is required")
	}
	return mediaID, mediaType, nil
}

// ListBookmarks serves GET /api/bookmarks. With ?q= the cache is searched
// by title and ranked; otherwise it is returned in insertion order.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := mw.SessionFrom(r.Context()).Bookmarks

		if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
			writeJSON(w, r, http.StatusOK, searchResponse{Query: q, Results: store.Search(q)})
			return
		}
		writeJSON(w, r, http.StatusOK, listState(store))
	}
}

// IsBookmarked serves GET /api/bookmarks/{mediaType}/{mediaID}.
func IsBookmarked(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaID, mediaType, err := mediaFromPath(r)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		store := mw.SessionFrom(r.Context()).Bookmarks
		writeJSON(w, r, http.StatusOK, bookmarkedResponse{
			MediaID:    mediaID,
			MediaType:  mediaType,
			Bookmarked: store.IsBookmarked(mediaID, mediaType),
		})
	}
}

// AddBookmark serves POST /api/bookmarks.
func AddBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addBookmarkRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		store := mw.SessionFrom(r.Context()).Bookmarks
		before := store.Err()

		mediaType := domain.MediaType(strings.ToLower(strings.TrimSpace(req.MediaType)))
		row, err := store.Add(r.Context(), req.MediaID.String(), mediaType, req.Title, req.Image, req.Rating)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		if row == nil {
			if failure := freshFailure(store, before); failure != nil {
				writeError(w, r, d.Logger, failure)
				return
			}
			writeError(w, r, d.Logger, apperr.ErrNotAuthenticated)
			return
		}

		writeJSON(w, r, http.StatusCreated, row)
	}
}

// RemoveBookmark serves DELETE /api/bookmarks/{mediaType}/{mediaID}.
func RemoveBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaID, mediaType, err := mediaFromPath(r)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		store := mw.SessionFrom(r.Context()).Bookmarks
		before := store.Err()

		if !store.Remove(r.Context(), mediaID, mediaType) {
			if failure := freshFailure(store, before); failure != nil {
				writeError(w, r, d.Logger, failure)
				return
			}
			writeError(w, r, d.Logger, apperr.ErrNotAuthenticated)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ReloadBookmarks serves POST /api/bookmarks/reload, re-reading the
// signed-in user's rows from the table.
func ReloadBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())

		uid, err := s.CurrentUser(r.Context())
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		if uid == "" {
			writeError(w, r, d.Logger, apperr.ErrNotAuthenticated)
			return
		}

		s.Bookmarks.LoadForUser(r.Context(), uid)
		if err := s.Bookmarks.Err(); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, r, http.StatusOK, listState(s.Bookmarks))
	}
}
