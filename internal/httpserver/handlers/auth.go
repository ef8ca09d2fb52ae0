package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/reel/internal/authmodal"
	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/httpserver/mw"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/session"
	"github.com/MrSnakeDoc/reel/internal/supabase"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse never carries tokens; they stay server-side in the session.
type authResponse struct {
	SignedIn            bool            `json:"signed_in"`
	User                *supabase.User  `json:"user,omitempty"`
	PendingConfirmation bool            `json:"pending_confirmation,omitempty"`
	Modal               authmodal.State `json:"modal"`
	Bookmarks           int             `json:"bookmarks"`
}

func authState(s *session.Session) authResponse {
	u := s.User()
	return authResponse{
		SignedIn:  u != nil,
		User:      u,
		Modal:     s.Modal.Snapshot(),
		Bookmarks: s.Bookmarks.Len(),
	}
}

// Login serves POST /api/auth/login.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		s := mw.SessionFrom(r.Context())
		if _, err := d.Sessions.SignIn(r.Context(), s, req.Email, req.Password); err != nil {
			d.Logger.Info("sign in rejected",
				logger.String("session_id", s.ID),
				logger.Error(err))
			writeError(w, r, d.Logger, err)
			return
		}

		d.Logger.Info("user signed in",
			logger.String("session_id", s.ID),
			logger.String("user_id", s.UserID()))
		writeJSON(w, r, http.StatusOK, authState(s))
	}
}

// Register serves POST /api/auth/register. When the account needs email
// confirmation the session stays anonymous and the response says so.
func Register(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		s := mw.SessionFrom(r.Context())
		auth, err := d.Sessions.SignUp(r.Context(), s, req.Email, req.Password)
		if err != nil {
			d.Logger.Info("sign up rejected",
				logger.String("session_id", s.ID),
				logger.Error(err))
			writeError(w, r, d.Logger, err)
			return
		}

		resp := authState(s)
		if !auth.Confirmed() {
			resp.PendingConfirmation = true
			writeJSON(w, r, http.StatusAccepted, resp)
			return
		}
		writeJSON(w, r, http.StatusCreated, resp)
	}
}

// Logout serves POST /api/auth/logout. It always succeeds locally.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		d.Sessions.SignOut(r.Context(), s)
		writeJSON(w, r, http.StatusOK, authState(s))
	}
}

// Me serves GET /api/auth/me. The access token is checked, so an expired
// one reports signed_in=false and signs the session out.
func Me(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		if s.UserID() != "" {
			if _, err := s.CurrentUser(r.Context()); err != nil {
				writeError(w, r, d.Logger, err)
				return
			}
		}
		writeJSON(w, r, http.StatusOK, authState(s))
	}
}

// ForgetSession serves DELETE /api/session. It signs out, drops the
// session record and expires the cookie.
func ForgetSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		if err := d.Sessions.Destroy(r.Context(), s); err != nil {
			d.Logger.Warn("failed to drop session record",
				logger.String("session_id", s.ID),
				logger.Error(err))
		}
		mw.ExpireSessionCookie(w, d.CookieSecure)
		w.WriteHeader(http.StatusNoContent)
	}
}
