package tmdb

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/MrSnakeDoc/reel/internal/domain"
)

// Params are query parameters forwarded verbatim to the API.
// Values are rendered with fmt.Sprint.
type Params map[string]any

// encode renders params as a query string with keys in sorted order.
func (p Params) encode() string {
	if len(p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		values.Add(k, fmt.Sprint(p[k]))
	}
	return values.Encode()
}

// Media is one catalog item as returned by list endpoints.
type Media struct {
	ID            int64            `json:"id"`
	MediaType     domain.MediaType `json:"media_type,omitempty"`
	Title         string           `json:"title,omitempty"`
	Name          string           `json:"name,omitempty"`
	OriginalTitle string           `json:"original_title,omitempty"`
	Overview      string           `json:"overview"`
	PosterPath    string           `json:"poster_path"`
	BackdropPath  string           `json:"backdrop_path"`
	VoteAverage   float64          `json:"vote_average"`
	VoteCount     int              `json:"vote_count"`
	Popularity    float64          `json:"popularity"`
	ReleaseDate   string           `json:"release_date,omitempty"`
	FirstAirDate  string           `json:"first_air_date,omitempty"`
	GenreIDs      []int            `json:"genre_ids"`
	Adult         bool             `json:"adult"`
}

// DisplayTitle returns the movie title, or the show name for tv.
func (m Media) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

// Page is a normalized paginated list.
type Page struct {
	Results      []Media `json:"results"`
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// rawPage mirrors the wire shape, where every field may be absent.
type rawPage struct {
	Results      []Media `json:"results"`
	Page         *int    `json:"page"`
	TotalPages   *int    `json:"total_pages"`
	TotalResults *int    `json:"total_results"`
}

func (r rawPage) normalize() *Page {
	p := &Page{
		Results: r.Results,
		Page:    1,
	}
	if p.Results == nil {
		p.Results = []Media{}
	}
	if r.Page != nil {
		p.Page = *r.Page
	}
	if r.TotalPages != nil {
		p.TotalPages = *r.TotalPages
	}
	if r.TotalResults != nil {
		p.TotalResults = *r.TotalResults
	}
	return p
}
