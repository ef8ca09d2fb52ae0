package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/MrSnakeDoc/reel/internal/apperr"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c := New(Options{BaseURL: srv.URL, Token: "secret-token"}, logger.Nop())
	return c, &calls
}

func TestNew_Defaults(t *testing.T) {
	c := New(Options{Token: "t"}, logger.Nop())

	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.NotNil(t, c.httpClient)
	assert.Nil(t, c.limiter)
}

func TestNew_RateLimit(t *testing.T) {
	c := New(Options{Token: "t", RateLimit: 20}, logger.Nop())

	require.NotNil(t, c.limiter)
	assert.Equal(t, 1, c.limiter.Burst())
}

func TestFetch_SendsBearerTokenAndParams(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/movie/603", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "en-US", r.URL.Query().Get("language"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))

		_ = json.NewEncoder(w).Encode(map[string]any{"id": 603, "title": "The Matrix"})
	})

	var out Media
	err := c.Fetch(context.Background(), "/movie/603", Params{"language": "en-US", "page": 2}, &out)

	require.NoError(t, err)
	assert.Equal(t, int64(603), out.ID)
	assert.Equal(t, "The Matrix", out.DisplayTitle())
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := c.Fetch(context.Background(), "trending/movie/day", nil, &struct{}{})

	require.Error(t, err)
	var reqErr *apperr.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Equal(t, "Unauthorized", reqErr.Status)
	assert.Equal(t, "trending/movie/day", reqErr.Endpoint)
	assert.ErrorIs(t, err, apperr.ErrRemoteRequest)
}

func TestFetch_UndecodableBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})

	err := c.Fetch(context.Background(), "movie/1", nil, &Media{})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrRemoteTransport)
}

func TestFetch_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(Options{BaseURL: url, Token: "t"}, logger.Nop())
	err := c.Fetch(context.Background(), "movie/1", nil, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrRemoteTransport)
}

func TestFetch_EmptyEndpoint(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	err := c.Fetch(context.Background(), "  ", nil, nil)

	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.Equal(t, int32(0), calls.Load())
}

func TestFetchRaw(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"genres":[{"id":28,"name":"Action"}]}`))
	})

	raw, err := c.FetchRaw(context.Background(), "genre/movie/list", nil)

	require.NoError(t, err)
	assert.JSONEq(t, `{"genres":[{"id":28,"name":"Action"}]}`, string(raw))
}

func TestFetchRaw_InvalidJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := c.FetchRaw(context.Background(), "genre/movie/list", nil)

	assert.ErrorIs(t, err, apperr.ErrRemoteTransport)
}
