package routes

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type group struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var groups []group

// Register adds a named route group with optional group-wide middlewares.
// Names must be unique.
func Register(name string, reg Registrar, mws ...Middleware) {
	if slices.ContainsFunc(groups, func(g group) bool { return g.name == name }) {
		panic("routes: duplicate group " + name)
	}
	groups = append(groups, group{name: name, reg: reg, mws: mws})
}

// RegisterAll mounts every group in name order, so the router does not
// depend on file init order. Called once from NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	sorted := slices.SortedFunc(slices.Values(groups), func(a, b group) int {
		return strings.Compare(a.name, b.name)
	})

	for _, g := range sorted {
		if len(g.mws) == 0 {
			g.reg(r, d)
		} else {
			g.reg(r.With(g.mws...), d)
		}
		d.Logger.Debug("route group registered", logger.String("group", g.name))
	}
}
