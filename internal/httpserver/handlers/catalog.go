package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/reel/internal/apperr"
	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/sources/sections"
	"github.com/MrSnakeDoc/reel/internal/tmdb"
)

// browseConcurrency caps parallel trending fetches for /api/browse.
const browseConcurrency = 4

// mediaItem is a catalog item with ready-to-use image URLs.
type mediaItem struct {
	tmdb.Media
	Label       string `json:"display_title"`
	PosterURL   string `json:"poster_url,omitempty"`
	BackdropURL string `json:"backdrop_url,omitempty"`
}

type pageResponse struct {
	Results      []mediaItem `json:"results"`
	Page         int         `json:"page"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

func toPageResponse(p *tmdb.Page, size string) pageResponse {
	items := make([]mediaItem, 0, len(p.Results))
	for _, m := range p.Results {
		items = append(items, mediaItem{
			Media:       m,
			Label:       m.DisplayTitle(),
			PosterURL:   tmdb.ImageURL(m.PosterPath, size),
			BackdropURL: tmdb.ImageURL(m.BackdropPath, "original"),
		})
	}
	return pageResponse{
		Results:      items,
		Page:         p.Page,
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
	}
}

func parsePage(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("page"))
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.InvalidArgument("page %q is not a number", raw)
	}
	return page, nil
}

// Trending serves GET /api/trending/{mediaType}/{timeWindow}?page=&size=.
// Path values are passed through unchanged; the client rejects bad ones.
func Trending(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := parsePage(r)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		mediaType := domain.MediaType(chi.URLParam(r, "mediaType"))
		window := domain.TimeWindow(chi.URLParam(r, "timeWindow"))

		result, err := d.TMDB.Trending(r.Context(), mediaType, window, page)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		writeJSON(w, r, http.StatusOK, toPageResponse(result, r.URL.Query().Get("size")))
	}
}

// CatalogProxy serves GET /api/catalog/*, forwarding the remaining path and
// the query string to the metadata API and returning its JSON unchanged.
func CatalogProxy(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpoint := strings.Trim(chi.URLParam(r, "*"), "/")
		if endpoint == "" || strings.Contains(endpoint, "..") {
			writeError(w, r, d.Logger, apperr.InvalidArgument("catalog endpoint %q", endpoint))
			return
		}

		params := tmdb.Params{}
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}

		raw, err := d.TMDB.FetchRaw(r.Context(), endpoint, params)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		writeJSON(w, r, http.StatusOK, raw)
	}
}

type browseSection struct {
	sections.Section
	Items []mediaItem `json:"items"`
	Error string      `json:"error,omitempty"`
}

type browseResponse struct {
	Sections []browseSection `json:"sections"`
}

// Browse serves GET /api/browse: every configured row with its first page
// of titles. A failing row carries its error; the others still render.
func Browse(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows := d.Catalog.All()
		out := make([]browseSection, len(rows))
		size := r.URL.Query().Get("size")

		var g errgroup.Group
		g.SetLimit(browseConcurrency)
		for i, row := range rows {
			g.Go(func() error {
				out[i] = browseSection{Section: row, Items: []mediaItem{}}
				result, err := d.TMDB.Trending(r.Context(), row.MediaType, row.TimeWindow, row.Page)
				if err != nil {
					d.Logger.Warn("browse section failed",
						logger.String("section", row.ID),
						logger.Error(err))
					out[i].Error = err.Error()
					return nil
				}
				out[i].Items = toPageResponse(result, size).Results
				return nil
			})
		}
		_ = g.Wait()

		writeJSON(w, r, http.StatusOK, browseResponse{Sections: out})
	}
}

type imageResponse struct {
	URL string `json:"url"`
}

// Image serves GET /api/image?path=&size=.
func Image(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		writeJSON(w, r, http.StatusOK, imageResponse{URL: tmdb.ImageURL(q.Get("path"), q.Get("size"))})
	}
}

// ReloadSections triggers a reload of the browse rows file.
func ReloadSections(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.SectionsTrigger <- struct{}{}:
			d.Logger.Info("manual sections reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "reload triggered"})
		default:
			d.Logger.Warn("sections reload already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			writeMessage(w, r, http.StatusTooManyRequests, "reload already in progress, please wait")
		}
	}
}
