package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/httpserver/handlers"
)

func init() { Register("catalog", registerCatalog) }

func registerCatalog(r chi.Router, d deps.Deps) {
	r.Get("/api/trending/{mediaType}/{timeWindow}", handlers.Trending(d))
	r.Get("/api/catalog/*", handlers.CatalogProxy(d))
	r.Get("/api/browse", handlers.Browse(d))
	r.Get("/api/image", handlers.Image(d))
}
