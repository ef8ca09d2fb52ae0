package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/MrSnakeDoc/reel/internal/apperr"
	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func TestBookmarkTable_SelectByUser(t *testing.T) {
	p := newTestBackend(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/bookmarks", r.URL.Path)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "eq.u-1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`[
			{"id": 7, "user_id": "u-1", "media_id": "603", "media_type": "movie",
			 "title": "The Matrix", "image": "/m.jpg", "rating": 8.2,
			 "created_at": "2024-05-01T10:00:00.123456+00:00"}
		]`))
	})

	rows, err := NewBookmarkTable(p, staticToken("user-token")).SelectByUser(context.Background(), "u-1")

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.FlexID("7"), rows[0].ID)
	assert.Equal(t, domain.MediaMovie, rows[0].MediaType)
	assert.Equal(t, 8.2, rows[0].Rating)
	assert.Equal(t, 2024, rows[0].CreatedAt.Year())
}

func TestBookmarkTable_SelectByUserEmpty(t *testing.T) {
	p := newTestBackend(t, "", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	rows, err := NewBookmarkTable(p, nil).SelectByUser(context.Background(), "u-1")

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestBookmarkTable_Insert(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p := newTestBackend(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body, 1)
		_, hasID := body[0]["id"]
		assert.False(t, hasID)
		assert.Equal(t, "603", body[0]["media_id"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id": 11, "user_id": "u-1", "media_id": "603", "media_type": "movie",
			"title": "The Matrix", "image": "", "rating": 0, "created_at": "2024-05-01T10:00:00Z"}]`))
	})

	row, err := NewBookmarkTable(p, staticToken("tok")).Insert(context.Background(), domain.Bookmark{
		ID:        "client-side",
		UserID:    "u-1",
		MediaID:   "603",
		MediaType: domain.MediaMovie,
		Title:     "The Matrix",
		CreatedAt: created,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.FlexID("11"), row.ID)
	assert.True(t, row.CreatedAt.Equal(created))
}

func TestBookmarkTable_InsertConflict(t *testing.T) {
	p := newTestBackend(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint","details":"Key exists.","hint":null}`))
	})

	row, err := NewBookmarkTable(p, nil).Insert(context.Background(), domain.Bookmark{UserID: "u-1", MediaID: "1", MediaType: domain.MediaTV})

	assert.Nil(t, row)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "23505", apiErr.Code)
	assert.Equal(t, "Key exists.", apiErr.Details)
	assert.Empty(t, apiErr.Hint)
}

func TestBookmarkTable_Delete(t *testing.T) {
	p := newTestBackend(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		q := r.URL.Query()
		assert.Equal(t, "eq.u-1", q.Get("user_id"))
		assert.Equal(t, "eq.603", q.Get("media_id"))
		assert.Equal(t, "eq.movie", q.Get("media_type"))
		w.WriteHeader(http.StatusNoContent)
	})

	err := NewBookmarkTable(p, nil).Delete(context.Background(), "u-1", "603", domain.MediaMovie)

	assert.NoError(t, err)
}

func TestBookmarkTable_UnconfiguredHandle(t *testing.T) {
	p := NewProvider(Options{}, logger.Nop())

	_, err := NewBookmarkTable(p, nil).SelectByUser(context.Background(), "u-1")

	assert.ErrorIs(t, err, apperr.ErrConfiguration)
}
