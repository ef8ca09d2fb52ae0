package bookmarks

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/MrSnakeDoc/reel/internal/apperr"
	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/logger"
)

// Table is the remote relation holding bookmarks.
type Table interface {
	SelectByUser(ctx context.Context, userID string) ([]domain.Bookmark, error)
	Insert(ctx context.Context, b domain.Bookmark) (*domain.Bookmark, error)
	Delete(ctx context.Context, userID, mediaID string, mediaType domain.MediaType) error
}

// SessionResolver returns the id of the signed-in user, or "" when nobody is.
type SessionResolver interface {
	CurrentUser(ctx context.Context) (string, error)
}

// Store caches one session's bookmarks and keeps the cache in step with
// the remote table.
//
// Remote failures never escape an operation: they are logged, kept in the
// error slot (see Err) and reported as a nil or false result.
//
// Mutations are single-writer: writeMu is held across each remote call and
// the cache update that follows it. Readers only take mu and never wait on
// the network. Clearing does not wait for writeMu; it bumps gen instead, and
// a remote call that started under an older gen leaves the cache alone.
type Store struct {
	table   Table
	session SessionResolver
	logger  logger.Logger
	now     func() time.Time

	writeMu sync.Mutex

	mu          sync.RWMutex
	cache       []domain.Bookmark
	gen         uint64
	loading     bool
	loadGen     uint64
	initialized bool
	lastErr     error
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store.
func New(table Table, session SessionResolver, log logger.Logger, opts ...Option) *Store {
	s := &Store{
		table:   table,
		session: session,
		logger:  log,
		now:     time.Now,
		cache:   []domain.Bookmark{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadForUser replaces the cache with the rows owned by userID.
//
// An empty userID clears the cache without touching the table. A call made
// while another load is in flight returns immediately, unless the cache was
// cleared since that load started. Rows that arrive after a clear are dropped.
func (s *Store) LoadForUser(ctx context.Context, userID string) {
	if userID == "" {
		s.clear()
		return
	}

	s.mu.Lock()
	if s.loading && s.loadGen == s.gen {
		s.mu.Unlock()
		s.logger.Debug("bookmark load already in flight", logger.String("user_id", userID))
		return
	}
	gen := s.gen
	s.loading = true
	s.loadGen = gen
	s.lastErr = nil
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.loadGen == gen {
			s.loading = false
		}
		s.mu.Unlock()
	}()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	start := time.Now()
	rows, err := s.table.SelectByUser(ctx, userID)
	if err != nil {
		s.fail("load bookmarks", err, logger.String("user_id", userID))
		return
	}
	if rows == nil {
		rows = []domain.Bookmark{}
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.logger.Debug("session changed during load, rows dropped",
			logger.String("user_id", userID),
			logger.Int("count", len(rows)))
		return
	}
	s.cache = rows
	s.initialized = true
	s.mu.Unlock()

	s.logger.Info("bookmarks loaded",
		logger.String("user_id", userID),
		logger.Int("count", len(rows)),
		logger.Duration("took", time.Since(start)))
}

// IsBookmarked reports whether the cache holds the given title.
func (s *Store) IsBookmarked(mediaID string, mediaType domain.MediaType) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.cache {
		if b.Matches(mediaID, mediaType) {
			return true
		}
	}
	return false
}

// Add saves a title for the signed-in user and returns the stored row.
//
// It returns nil, nil when nobody is signed in or the remote insert fails
// (see Err). An unknown media type or empty media id is rejected before
// any I/O.
func (s *Store) Add(ctx context.Context, mediaID string, mediaType domain.MediaType, title, image string, rating float64) (*domain.Bookmark, error) {
	mediaID = domain.NormalizeMediaID(mediaID)
	if mediaID == "" {
		return nil, apperr.InvalidArgument("media id is required")
	}
	if !mediaType.Valid() {
		return nil, apperr.InvalidArgument("media type %q, must be %q or %q", mediaType, domain.MediaMovie, domain.MediaTV)
	}

	gen := s.generation()
	userID, ok := s.currentUser(ctx, "add bookmark")
	if !ok {
		return nil, nil
	}

	if rating < 0 || math.IsNaN(rating) || math.IsInf(rating, 0) {
		rating = 0
	}

	record := domain.Bookmark{
		UserID:    userID,
		MediaID:   mediaID,
		MediaType: mediaType,
		Title:     title,
		Image:     image,
		Rating:    rating,
		CreatedAt: s.now().UTC(),
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	row, err := s.table.Insert(ctx, record)
	if err == nil && row == nil {
		err = errors.New("insert returned no row")
	}
	if err != nil {
		s.fail("add bookmark", err,
			logger.String("user_id", userID),
			logger.String("media", record.Key()))
		return nil, nil
	}

	s.mu.Lock()
	if s.gen == gen {
		s.cache = append(s.cache, *row)
	}
	s.mu.Unlock()

	s.logger.Debug("bookmark added",
		logger.String("user_id", userID),
		logger.String("media", row.Key()))

	out := *row
	return &out, nil
}

// Remove deletes a title for the signed-in user. It reports false when
// nobody is signed in or the remote delete fails (see Err).
func (s *Store) Remove(ctx context.Context, mediaID string, mediaType domain.MediaType) bool {
	mediaID = domain.NormalizeMediaID(mediaID)

	userID, ok := s.currentUser(ctx, "remove bookmark")
	if !ok {
		return false
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.table.Delete(ctx, userID, mediaID, mediaType); err != nil {
		s.fail("remove bookmark", err,
			logger.String("user_id", userID),
			logger.String("media", string(mediaType)+":"+mediaID))
		return false
	}

	s.mu.Lock()
	kept := make([]domain.Bookmark, 0, len(s.cache))
	for _, b := range s.cache {
		if !b.Matches(mediaID, mediaType) {
			kept = append(kept, b)
		}
	}
	s.cache = kept
	s.mu.Unlock()

	s.logger.Debug("bookmark removed",
		logger.String("user_id", userID),
		logger.String("media", string(mediaType)+":"+mediaID))

	return true
}

// OnSessionChange follows sign-in and sign-out. A nil or empty user
// clears the cache synchronously; otherwise the user's rows are loaded.
func (s *Store) OnSessionChange(ctx context.Context, userID *string) {
	if userID == nil || *userID == "" {
		s.clear()
		return
	}
	s.LoadForUser(ctx, *userID)
}

// Bookmarks returns a copy of the cache.
func (s *Store) Bookmarks() []domain.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Bookmark, len(s.cache))
	copy(out, s.cache)
	return out
}

// Search ranks cached bookmarks by title match.
func (s *Store) Search(query string) []domain.BookmarkCandidate {
	return domain.RankBookmarks(query, s.Bookmarks())
}

// Len returns the number of cached bookmarks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// Loading reports whether a load is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Initialized reports whether a load has ever succeeded.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Err returns the last remote failure, or nil.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Store) clear() {
	s.mu.Lock()
	s.cache = []domain.Bookmark{}
	s.gen++
	s.mu.Unlock()
}

func (s *Store) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// currentUser resolves the session. A resolver failure counts as a remote
// failure and, like a missing session, stops the operation.
func (s *Store) currentUser(ctx context.Context, op string) (string, bool) {
	if s.session == nil {
		return "", false
	}
	userID, err := s.session.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrNotAuthenticated) {
			s.logger.Debug("no session", logger.String("op", op))
			return "", false
		}
		s.fail(op, err)
		return "", false
	}
	if userID == "" {
		s.logger.Debug("no session", logger.String("op", op))
		return "", false
	}
	return userID, true
}

func (s *Store) fail(op string, err error, fields ...logger.Field) {
	wrapped := &apperr.RemoteOperationError{Op: op, Err: err}

	s.mu.Lock()
	s.lastErr = wrapped
	s.mu.Unlock()

	s.logger.Error(op+" failed", append(fields, logger.Error(err))...)
}
