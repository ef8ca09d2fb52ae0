package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/reel/internal/apperr"
	"github.com/MrSnakeDoc/reel/internal/authmodal"
	"github.com/MrSnakeDoc/reel/internal/bookmarks"
	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/supabase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapIndex struct {
	mu sync.Mutex
	m  map[string]*Session
}

func newMapIndex() *mapIndex { return &mapIndex{m: map[string]*Session{}} }

func (i *mapIndex) Get(id string) (*Session, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	s, ok := i.m[id]
	return s, ok
}

func (i *mapIndex) Add(s *Session) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.m[s.ID] = s
}

func (i *mapIndex) Delete(id string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.m, id)
}

type mapStore struct {
	mu sync.Mutex
	m  map[string]Record
}

func newMapStore() *mapStore { return &mapStore{m: map[string]Record{}} }

func (s *mapStore) SaveSession(ctx context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[r.ID] = *r
	return nil
}

func (s *mapStore) GetSession(ctx context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *mapStore) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

type fakeAuth struct {
	session   *supabase.AuthSession
	err       error
	resolve   error
	signedOut []string
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (*supabase.AuthSession, error) {
	return f.session, f.err
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (*supabase.AuthSession, error) {
	return f.session, f.err
}

func (f *fakeAuth) SignOut(ctx context.Context, token string) error {
	f.signedOut = append(f.signedOut, token)
	return nil
}

func (f *fakeAuth) ResolveUser(ctx context.Context, token string) (*supabase.User, error) {
	if f.resolve != nil {
		return nil, f.resolve
	}
	return &supabase.User{ID: "u-1"}, nil
}

type rowsTable struct {
	rows []domain.Bookmark
}

func (t *rowsTable) SelectByUser(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	return t.rows, nil
}

func (t *rowsTable) Insert(ctx context.Context, b domain.Bookmark) (*domain.Bookmark, error) {
	b.ID = "1"
	t.rows = append(t.rows, b)
	return &b, nil
}

func (t *rowsTable) Delete(ctx context.Context, userID, mediaID string, mediaType domain.MediaType) error {
	return nil
}

type harness struct {
	manager *Manager
	index   *mapIndex
	store   *mapStore
	auth    *fakeAuth
	table   *rowsTable
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		index: newMapIndex(),
		store: newMapStore(),
		auth: &fakeAuth{session: &supabase.AuthSession{
			AccessToken:  "at",
			RefreshToken: "rt",
			User:         &supabase.User{ID: "u-1", Email: "neo@example.com"},
		}},
		table: &rowsTable{rows: []domain.Bookmark{{UserID: "u-1", MediaID: "603", MediaType: domain.MediaMovie}}},
	}
	h.manager = NewManager(ManagerOptions{
		Index:  h.index,
		Store:  h.store,
		Auth:   func() (AuthBackend, error) { return h.auth, nil },
		Tables: func(*Session) bookmarks.Table { return h.table },
	}, logger.Nop())
	return h
}

func TestCreate(t *testing.T) {
	h := newHarness(t)

	s := h.manager.Create(context.Background())

	require.NotEmpty(t, s.ID)
	got, ok := h.index.Get(s.ID)
	assert.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, authmodal.ModeLogin, s.Modal.Mode())
	assert.Empty(t, s.UserID())

	_, err := h.store.GetSession(context.Background(), s.ID)
	assert.ErrorIs(t, err, ErrNotFound, "anonymous sessions are not stored until they change")
}

func TestAnonymousSessionIsNotStoredByUse(t *testing.T) {
	h := newHarness(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h.manager.now = func() time.Time { return now }
	s := h.manager.Create(context.Background())

	now = now.Add(48 * time.Hour)
	_, ok := h.manager.Get(context.Background(), s.ID)
	require.True(t, ok)
	h.manager.SignOut(context.Background(), s)

	assert.Empty(t, h.store.m)
}

func TestGet_EmptyAndUnknown(t *testing.T) {
	h := newHarness(t)

	_, ok := h.manager.Get(context.Background(), "")
	assert.False(t, ok)

	_, ok = h.manager.Get(context.Background(), "not-a-uuid")
	assert.False(t, ok)

	_, ok = h.manager.Get(context.Background(), "9b2c1f7e-6a3d-4e0b-9c1a-2f3e4d5c6b7a")
	assert.False(t, ok)
}

func TestSignInLoadsBookmarksAndClosesModal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	s := h.manager.Create(ctx)
	s.Modal.Open(authmodal.ModeLogin)

	auth, err := h.manager.SignIn(ctx, s, "neo@example.com", "pw")

	require.NoError(t, err)
	assert.True(t, auth.Confirmed())
	assert.Equal(t, "u-1", s.UserID())
	assert.Equal(t, "at", s.AccessToken())
	assert.False(t, s.Modal.Visible())
	assert.True(t, s.Bookmarks.IsBookmarked("603", domain.MediaMovie))

	rec, err := h.store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "u-1", rec.UserID)
	assert.False(t, rec.Modal.Visible)
}

func TestSignInFailureKeepsSessionAnonymous(t *testing.T) {
	h := newHarness(t)
	h.auth.err = &supabase.APIError{StatusCode: 400, Message: "Invalid login credentials"}
	s := h.manager.Create(context.Background())

	_, err := h.manager.SignIn(context.Background(), s, "neo@example.com", "bad")

	assert.ErrorIs(t, err, apperr.ErrRemoteRequest)
	assert.Empty(t, s.UserID())
}

func TestSignUpPendingConfirmation(t *testing.T) {
	h := newHarness(t)
	h.auth.session = &supabase.AuthSession{User: &supabase.User{ID: "u-9"}}
	s := h.manager.Create(context.Background())
	s.Modal.Open(authmodal.ModeRegister)

	auth, err := h.manager.SignUp(context.Background(), s, "new@example.com", "pw")

	require.NoError(t, err)
	assert.False(t, auth.Confirmed())
	assert.Empty(t, s.UserID())
	assert.Equal(t, authmodal.ModeLogin, s.Modal.Mode())
	assert.True(t, s.Modal.Visible())
}

func TestSignOutClearsCache(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	s := h.manager.Create(ctx)
	_, err := h.manager.SignIn(ctx, s, "neo@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, 1, s.Bookmarks.Len())

	h.manager.SignOut(ctx, s)

	assert.Empty(t, s.UserID())
	assert.Empty(t, s.AccessToken())
	assert.Equal(t, 0, s.Bookmarks.Len())
	assert.Equal(t, []string{"at"}, h.auth.signedOut)
	// Backing rows are untouched
	assert.Len(t, h.table.rows, 1)
}

func TestGetRehydratesFromStore(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	s := h.manager.Create(ctx)
	_, err := h.manager.SignIn(ctx, s, "neo@example.com", "pw")
	require.NoError(t, err)
	s.Modal.Open(authmodal.ModeRegister)

	// Simulate a restart: memory is gone, Redis remains
	h.index.Delete(s.ID)

	got, ok := h.manager.Get(ctx, s.ID)

	require.True(t, ok)
	assert.NotSame(t, s, got)
	assert.Equal(t, "u-1", got.UserID())
	assert.Equal(t, authmodal.State{Visible: true, Mode: authmodal.ModeRegister}, got.Modal.Snapshot())
	assert.True(t, got.Bookmarks.IsBookmarked("603", domain.MediaMovie))
}

func TestCurrentUserExpiredTokenSignsOut(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	s := h.manager.Create(ctx)
	_, err := h.manager.SignIn(ctx, s, "neo@example.com", "pw")
	require.NoError(t, err)

	require.Equal(t, 1, s.Bookmarks.Len())

	h.auth.resolve = apperr.ErrNotAuthenticated
	uid, err := s.CurrentUser(ctx)

	assert.NoError(t, err)
	assert.Empty(t, uid)
	assert.Empty(t, s.AccessToken())
	assert.Equal(t, 0, s.Bookmarks.Len())
	assert.False(t, s.Bookmarks.IsBookmarked("603", domain.MediaMovie))

	rec, err := h.store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, rec.UserID)
	assert.Empty(t, rec.AccessToken)
	assert.Empty(t, rec.RefreshToken)
}

func TestCurrentUserBackendFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	s := h.manager.Create(ctx)
	_, err := h.manager.SignIn(ctx, s, "neo@example.com", "pw")
	require.NoError(t, err)

	h.auth.resolve = errors.New("connection refused")
	_, err = s.CurrentUser(ctx)

	assert.Error(t, err)
	assert.Equal(t, "u-1", s.UserID())
}

func TestModalChangesArePersisted(t *testing.T) {
	h := newHarness(t)
	s := h.manager.Create(context.Background())

	s.Modal.Open(authmodal.ModeRegister)

	rec, err := h.store.GetSession(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, authmodal.State{Visible: true, Mode: authmodal.ModeRegister}, rec.Modal)
}

func TestDestroy(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	s := h.manager.Create(ctx)
	_, err := h.manager.SignIn(ctx, s, "neo@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, h.manager.Destroy(ctx, s))

	assert.Equal(t, []string{"at"}, h.auth.signedOut)
	assert.Empty(t, h.store.m)
	_, ok := h.manager.Get(ctx, s.ID)
	assert.False(t, ok)
}

func TestTouchOnGet(t *testing.T) {
	h := newHarness(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h.manager.now = func() time.Time { return now }
	s := h.manager.Create(context.Background())

	now = now.Add(time.Hour)
	_, ok := h.manager.Get(context.Background(), s.ID)

	require.True(t, ok)
	assert.True(t, s.LastSeen().Equal(now))
	assert.True(t, s.CreatedAt().Before(s.LastSeen()))
}

func TestGetRefreshesStoredSessionOncePerInterval(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	h.manager.now = func() time.Time { return now }
	h.manager.refreshEvery = time.Hour

	s := h.manager.Create(ctx)
	_, err := h.manager.SignIn(ctx, s, "neo@example.com", "pw")
	require.NoError(t, err)

	lastSeenStored := func() time.Time {
		rec, err := h.store.GetSession(ctx, s.ID)
		require.NoError(t, err)
		return rec.LastSeenAt
	}
	require.True(t, lastSeenStored().Equal(start))

	now = start.Add(30 * time.Minute)
	_, ok := h.manager.Get(ctx, s.ID)
	require.True(t, ok)
	assert.True(t, lastSeenStored().Equal(start), "within the interval the record is left alone")

	now = start.Add(2 * time.Hour)
	_, ok = h.manager.Get(ctx, s.ID)
	require.True(t, ok)
	assert.True(t, lastSeenStored().Equal(now), "record rewritten after the interval")

	now = now.Add(time.Minute)
	_, ok = h.manager.Get(ctx, s.ID)
	require.True(t, ok)
	assert.True(t, lastSeenStored().Equal(start.Add(2*time.Hour)))
}

func TestNewManagerDefaultRefreshInterval(t *testing.T) {
	m := NewManager(ManagerOptions{Index: newMapIndex()}, logger.Nop())
	assert.Equal(t, DefaultRefreshInterval, m.refreshEvery)
}
