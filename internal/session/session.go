package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/reel/internal/apperr"
	"github.com/MrSnakeDoc/reel/internal/authmodal"
	"github.com/MrSnakeDoc/reel/internal/bookmarks"
	"github.com/MrSnakeDoc/reel/internal/supabase"
)

// Session is the state owned by one browser: its auth modal, its bookmark
// cache and the signed-in user, if any.
type Session struct {
	ID        string
	Modal     *authmodal.Modal
	Bookmarks *bookmarks.Store

	auth    AuthProvider
	persist func(ctx context.Context)

	mu           sync.RWMutex
	user         *supabase.User
	accessToken  string
	refreshToken string
	createdAt    time.Time
	lastSeen     time.Time
	savedAt      time.Time
}

// User returns the signed-in user, or nil.
func (s *Session) User() *supabase.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// UserID returns the signed-in user id, or "".
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

// AccessToken returns the bearer token for data requests, or "".
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// CurrentUser checks the access token and returns its user id.
// It returns "" when nobody is signed in. An expired or revoked token
// signs the session out locally: the bookmark cache is cleared and the
// record is saved without the token.
func (s *Session) CurrentUser(ctx context.Context) (string, error) {
	s.mu.RLock()
	token := s.accessToken
	userID := ""
	if s.user != nil {
		userID = s.user.ID
	}
	s.mu.RUnlock()

	if token == "" || userID == "" {
		return "", nil
	}
	if s.auth == nil {
		return userID, nil
	}

	backend, err := s.auth()
	if err != nil {
		return "", err
	}
	user, err := backend.ResolveUser(ctx, token)
	if err != nil {
		if errors.Is(err, apperr.ErrNotAuthenticated) {
			if s.clearAuthIf(token) {
				s.Bookmarks.OnSessionChange(ctx, nil)
				if s.persist != nil {
					s.persist(ctx)
				}
			}
			return "", nil
		}
		return "", err
	}
	return user.ID, nil
}

// CreatedAt returns when the session was first created.
func (s *Session) CreatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.createdAt
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Touch marks the session as used at t.
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	s.lastSeen = t
	s.mu.Unlock()
}

func (s *Session) setAuth(user *supabase.User, access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.accessToken = access
	s.refreshToken = refresh
}

func (s *Session) clearAuth() {
	s.setAuth(nil, "", "")
}

// clearAuthIf signs out only if token is still the current one, so a
// concurrent sign-in is left alone.
func (s *Session) clearAuthIf(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accessToken != token {
		return false
	}
	s.user = nil
	s.accessToken = ""
	s.refreshToken = ""
	return true
}

func (s *Session) markSaved(t time.Time) {
	s.mu.Lock()
	s.savedAt = t
	s.mu.Unlock()
}

func (s *Session) lastSaved() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.savedAt
}

// Record returns the persisted form of the session.
func (s *Session) Record() *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := &Record{
		ID:           s.ID,
		AccessToken:  s.accessToken,
		RefreshToken: s.refreshToken,
		Modal:        s.Modal.Snapshot(),
		CreatedAt:    s.createdAt,
		LastSeenAt:   s.lastSeen,
	}
	if s.user != nil {
		r.UserID = s.user.ID
		r.Email = s.user.Email
	}
	return r
}

// Record is what survives a restart.
type Record struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id,omitempty"`
	Email        string          `json:"email,omitempty"`
	AccessToken  string          `json:"access_token,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	Modal        authmodal.State `json:"modal"`
	CreatedAt    time.Time       `json:"created_at"`
	LastSeenAt   time.Time       `json:"last_seen_at"`
}
