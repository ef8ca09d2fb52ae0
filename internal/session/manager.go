package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/reel/internal/apperr"
	"github.com/MrSnakeDoc/reel/internal/authmodal"
	"github.com/MrSnakeDoc/reel/internal/bookmarks"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/supabase"
	"github.com/google/uuid"
)

// ErrNotFound is returned by a Persister for an unknown or expired id.
var ErrNotFound = errors.New("session not found")

const persistTimeout = 2 * time.Second

// DefaultRefreshInterval is how often an active session's record is
// rewritten to push its expiry forward.
const DefaultRefreshInterval = time.Hour

// AuthBackend is the subset of the auth API sessions need.
type AuthBackend interface {
	SignIn(ctx context.Context, email, password string) (*supabase.AuthSession, error)
	SignUp(ctx context.Context, email, password string) (*supabase.AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
	ResolveUser(ctx context.Context, accessToken string) (*supabase.User, error)
}

// AuthProvider returns the auth backend, building it on first use.
type AuthProvider func() (AuthBackend, error)

// FromSupabase adapts a handle provider.
func FromSupabase(p *supabase.Provider) AuthProvider {
	return func() (AuthBackend, error) {
		c, err := p.Handle()
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// TableFactory returns the bookmark table a session should use.
type TableFactory func(s *Session) bookmarks.Table

// Index keeps live sessions in memory.
type Index interface {
	Get(id string) (*Session, bool)
	Add(s *Session)
	Delete(id string)
}

// Persister stores session records. GetSession returns ErrNotFound
// for unknown ids.
type Persister interface {
	SaveSession(ctx context.Context, r *Record) error
	GetSession(ctx context.Context, id string) (*Record, error)
	DeleteSession(ctx context.Context, id string) error
}

// Manager creates, finds and authenticates sessions.
type Manager struct {
	index        Index
	store        Persister
	auth         AuthProvider
	tables       TableFactory
	logger       logger.Logger
	now          func() time.Time
	refreshEvery time.Duration
}

// ManagerOptions wires a Manager. Store may be nil.
type ManagerOptions struct {
	Index  Index
	Store  Persister
	Auth   AuthProvider
	Tables TableFactory
	Now    func() time.Time

	// RefreshInterval bounds how often Get rewrites a stored session.
	// Zero means DefaultRefreshInterval.
	RefreshInterval time.Duration
}

// NewManager creates a session manager.
func NewManager(opts ManagerOptions, log logger.Logger) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	refresh := opts.RefreshInterval
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}
	return &Manager{
		index:        opts.Index,
		store:        opts.Store,
		auth:         opts.Auth,
		tables:       opts.Tables,
		logger:       log,
		now:          now,
		refreshEvery: refresh,
	}
}

// Create starts a new anonymous session. It lives in memory only until its
// first modal change or sign-in.
func (m *Manager) Create(ctx context.Context) *Session {
	now := m.now()
	s := m.build(uuid.NewString(), now)
	s.lastSeen = now

	m.index.Add(s)

	m.logger.Debug("session created", logger.String("session_id", s.ID))
	return s
}

// Get returns the session for id, rehydrating it from the store when it is
// no longer in memory. A rehydrated signed-in session reloads its bookmarks.
func (m *Manager) Get(ctx context.Context, id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	if s, ok := m.index.Get(id); ok {
		now := m.now()
		s.Touch(now)
		m.refresh(ctx, s, now)
		return s, true
	}
	if m.store == nil {
		return nil, false
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}

	rec, err := m.store.GetSession(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Warn("failed to load session",
				logger.String("session_id", id),
				logger.Error(err))
		}
		return nil, false
	}

	s := m.restore(rec)
	m.index.Add(s)
	s.persist(ctx)

	if uid := s.UserID(); uid != "" {
		s.Bookmarks.LoadForUser(ctx, uid)
	}

	m.logger.Info("session rehydrated",
		logger.String("session_id", id),
		logger.Bool("signed_in", s.UserID() != ""))
	return s, true
}

// SignIn authenticates the session with email and password. On success the
// modal closes and the user's bookmarks are loaded.
func (m *Manager) SignIn(ctx context.Context, s *Session, email, password string) (*supabase.AuthSession, error) {
	backend, err := m.backend()
	if err != nil {
		return nil, err
	}
	auth, err := backend.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	m.signedIn(ctx, s, auth)
	return auth, nil
}

// SignUp registers a new account. When the backend asks for email
// confirmation the session stays anonymous and the modal switches to login.
func (m *Manager) SignUp(ctx context.Context, s *Session, email, password string) (*supabase.AuthSession, error) {
	backend, err := m.backend()
	if err != nil {
		return nil, err
	}
	auth, err := backend.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !auth.Confirmed() {
		s.Modal.SetMode(authmodal.ModeLogin)
		return auth, nil
	}
	m.signedIn(ctx, s, auth)
	return auth, nil
}

// SignOut forgets the user and clears the bookmark cache. Revoking the
// token remotely is best effort.
func (m *Manager) SignOut(ctx context.Context, s *Session) {
	token := s.AccessToken()
	s.clearAuth()
	s.Bookmarks.OnSessionChange(ctx, nil)
	if token != "" || !s.lastSaved().IsZero() {
		s.persist(ctx)
	}

	if token == "" {
		return
	}
	backend, err := m.backend()
	if err != nil {
		return
	}
	if err := backend.SignOut(ctx, token); err != nil {
		m.logger.Warn("remote sign out failed",
			logger.String("session_id", s.ID),
			logger.Error(err))
	}
}

// Persist writes the session record, if a store is configured.
func (m *Manager) Persist(ctx context.Context, s *Session) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.SaveSession(ctx, s.Record()); err != nil {
		return fmt.Errorf("persist session %s: %w", s.ID, err)
	}
	s.markSaved(m.now())
	return nil
}

// refresh rewrites a stored session once per refresh interval so its
// expiry follows activity. Sessions that were never saved stay in memory.
func (m *Manager) refresh(ctx context.Context, s *Session, now time.Time) {
	saved := s.lastSaved()
	if saved.IsZero() || now.Sub(saved) < m.refreshEvery {
		return
	}
	s.persist(ctx)
}

// Destroy signs the session out and drops it from memory and storage.
func (m *Manager) Destroy(ctx context.Context, s *Session) error {
	m.SignOut(ctx, s)
	m.index.Delete(s.ID)
	if m.store == nil {
		return nil
	}
	if err := m.store.DeleteSession(ctx, s.ID); err != nil {
		return fmt.Errorf("destroy session %s: %w", s.ID, err)
	}
	m.logger.Debug("session destroyed", logger.String("session_id", s.ID))
	return nil
}

func (m *Manager) signedIn(ctx context.Context, s *Session, auth *supabase.AuthSession) {
	s.setAuth(auth.User, auth.AccessToken, auth.RefreshToken)
	s.Modal.Close()
	s.persist(ctx)

	uid := s.UserID()
	s.Bookmarks.OnSessionChange(ctx, &uid)
}

func (m *Manager) backend() (AuthBackend, error) {
	if m.auth == nil {
		return nil, &apperr.ConfigurationError{Field: "auth backend", Reason: "not configured"}
	}
	return m.auth()
}

// build wires a blank session. The modal persists itself on every change.
func (m *Manager) build(id string, createdAt time.Time) *Session {
	s := &Session{
		ID:        id,
		Modal:     authmodal.New(),
		auth:      m.auth,
		createdAt: createdAt,
	}

	var table bookmarks.Table
	if m.tables != nil {
		table = m.tables(s)
	}
	s.Bookmarks = bookmarks.New(table, s, m.logger.With(logger.String("session_id", id)), bookmarks.WithClock(m.now))

	s.persist = func(ctx context.Context) {
		if err := m.Persist(ctx, s); err != nil {
			m.logger.Warn("failed to persist session",
				logger.String("session_id", s.ID),
				logger.Error(err))
		}
	}

	s.Modal.OnChange(func(authmodal.State) {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		s.persist(ctx)
	})

	return s
}

func (m *Manager) restore(r *Record) *Session {
	s := m.build(r.ID, r.CreatedAt)
	s.lastSeen = m.now()
	s.Modal.Restore(r.Modal)
	if r.UserID != "" && r.AccessToken != "" {
		s.setAuth(&supabase.User{ID: r.UserID, Email: r.Email}, r.AccessToken, r.RefreshToken)
	}
	return s
}
