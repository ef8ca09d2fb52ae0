package tmdb

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/reel/internal/apperr"
	"github.com/MrSnakeDoc/reel/internal/domain"
)

// Trending returns one page of trending titles for the given media type
// and time window. Arguments are validated before any request is made.
func (c *Client) Trending(ctx context.Context, mediaType domain.MediaType, window domain.TimeWindow, page int) (*Page, error) {
	if !mediaType.Valid() {
		return nil, apperr.InvalidArgument("media type %q, must be %q or %q", mediaType, domain.MediaMovie, domain.MediaTV)
	}
	if !window.Valid() {
		return nil, apperr.InvalidArgument("time window %q, must be %q or %q", window, domain.WindowDay, domain.WindowWeek)
	}
	if page < 1 {
		return nil, apperr.InvalidArgument("page must be >= 1, got %d", page)
	}

	endpoint := fmt.Sprintf("trending/%s/%s", mediaType, window)

	var raw rawPage
	if err := c.Fetch(ctx, endpoint, Params{"page": page}, &raw); err != nil {
		return nil, err
	}

	out := raw.normalize()
	for i := range out.Results {
		if out.Results[i].MediaType == "" {
			out.Results[i].MediaType = mediaType
		}
	}
	return out, nil
}
