package mw

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/session"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "reel_session"

type contextKey string

const sessionContextKey = contextKey("session")

// SessionOptions configures the session cookie.
type SessionOptions struct {
	Secure bool
	MaxAge time.Duration
}

// Session attaches the caller's session to the request context, creating
// one (and setting the cookie) when the cookie is missing or stale.
func Session(m *session.Manager, opts SessionOptions, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var s *session.Session
			if c, err := r.Cookie(SessionCookie); err == nil {
				s, _ = m.Get(ctx, c.Value)
			}
			if s == nil {
				s = m.Create(ctx)
				log.Debug("new browser session", logger.String("session_id", s.ID))
			}

			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    s.ID,
				Path:     "/",
				MaxAge:   int(opts.MaxAge.Seconds()),
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			next.ServeHTTP(w, r.WithContext(WithSession(ctx, s)))
		})
	}
}

// ExpireSessionCookie tells the browser to drop the session cookie.
func ExpireSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFrom returns the session set by the Session middleware, or nil.
func SessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionContextKey).(*session.Session)
	return s
}

// RequireUser rejects requests whose session is not signed in.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFrom(r.Context())
		if s == nil || s.UserID() == "" {
			writeError(w, r, http.StatusUnauthorized, "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
