package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/reel/internal/httpserver/mw"
)

func init() { Register("session", registerSession) }

// registerSession mounts everything that needs the browser session.
func registerSession(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.Session(d.Sessions, mw.SessionOptions{
			Secure: d.CookieSecure,
			MaxAge: d.SessionTTL,
		}, d.Logger))

		r.Route("/api/ui/auth-modal", func(r chi.Router) {
			r.Get("/", handlers.ModalState(d))
			r.Post("/open", handlers.ModalOpen(d))
			r.Post("/close", handlers.ModalClose(d))
			r.Post("/toggle", handlers.ModalToggle(d))
			r.Post("/mode", handlers.ModalSetMode(d))
		})

		r.Route("/api/auth", func(r chi.Router) {
			r.With(mw.RateLimit(mw.RateLimitConfig{
				Burst:             d.AuthBurst,
				RefillPerIPPerMin: d.AuthRefillPerMin,
				MaxEntries:        10000,
				TrustProxy:        d.TrustProxy,
			})).Group(func(r chi.Router) {
				r.Post("/login", handlers.Login(d))
				r.Post("/register", handlers.Register(d))
			})
			r.Post("/logout", handlers.Logout(d))
			r.Get("/me", handlers.Me(d))
		})

		r.Delete("/api/session", handlers.ForgetSession(d))

		r.Route("/api/bookmarks", func(r chi.Router) {
			r.Use(mw.RequireUser)
			r.Get("/", handlers.ListBookmarks(d))
			r.Post("/", handlers.AddBookmark(d))
			r.Post("/reload", handlers.ReloadBookmarks(d))
			r.Get("/{mediaType}/{mediaID}", handlers.IsBookmarked(d))
			r.Delete("/{mediaType}/{mediaID}", handlers.RemoveBookmark(d))
		})
	})
}
