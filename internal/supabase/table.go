package supabase

import (
	"context"
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/reel/internal/apperr"
	"github.com/MrSnakeDoc/reel/internal/domain"
)

// BookmarksTable is the relation holding user bookmarks.
const BookmarksTable = "bookmarks"

// TokenSource yields the bearer token for data requests.
// An empty token means requests go out with the anon key only.
type TokenSource interface {
	AccessToken() string
}

// BookmarkTable talks to the bookmarks relation through the data API.
// Row-level security on the server scopes rows to the token's user.
type BookmarkTable struct {
	provider *Provider
	tokens   TokenSource
}

// NewBookmarkTable binds the table to a token source, usually a session.
func NewBookmarkTable(provider *Provider, tokens TokenSource) *BookmarkTable {
	return &BookmarkTable{
		provider: provider,
		tokens:   tokens,
	}
}

func (t *BookmarkTable) client() (*Client, string, error) {
	c, err := t.provider.Handle()
	if err != nil {
		return nil, "", err
	}
	token := ""
	if t.tokens != nil {
		token = t.tokens.AccessToken()
	}
	return c, token, nil
}

// SelectByUser returns every bookmark row owned by userID.
func (t *BookmarkTable) SelectByUser(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	c, token, err := t.client()
	if err != nil {
		return nil, err
	}

	var rows []domain.Bookmark
	err = c.do(ctx, request{
		method: http.MethodGet,
		path:   "/rest/v1/" + BookmarksTable,
		query: url.Values{
			"select":  {"*"},
			"user_id": {"eq." + userID},
		},
		token: token,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Bookmark{}
	}
	return rows, nil
}

// Insert writes one row and returns it as stored.
func (t *BookmarkTable) Insert(ctx context.Context, b domain.Bookmark) (*domain.Bookmark, error) {
	c, token, err := t.client()
	if err != nil {
		return nil, err
	}

	// The server assigns the id.
	b.ID = ""

	var rows []domain.Bookmark
	err = c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/rest/v1/" + BookmarksTable,
		query:   url.Values{"select": {"*"}},
		token:   token,
		body:    []domain.Bookmark{b},
		headers: map[string]string{"Prefer": "return=representation"},
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &APIError{StatusCode: http.StatusNoContent, Message: "insert returned no row"}
	}
	return &rows[0], nil
}

// Delete removes the rows matching user, media id and media type.
// Deleting nothing is not an error.
func (t *BookmarkTable) Delete(ctx context.Context, userID, mediaID string, mediaType domain.MediaType) error {
	if !mediaType.Valid() {
		return apperr.InvalidArgument("media type %q", mediaType)
	}
	c, token, err := t.client()
	if err != nil {
		return err
	}

	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/rest/v1/" + BookmarksTable,
		query: url.Values{
			"user_id":    {"eq." + userID},
			"media_id":   {"eq." + mediaID},
			"media_type": {"eq." + string(mediaType)},
		},
		token: token,
	}, nil)
}
