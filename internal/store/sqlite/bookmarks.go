package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

// ErrDuplicate is returned when a user already bookmarked the title.
var ErrDuplicate = errors.New("bookmark already exists")

const schema = `
CREATE TABLE IF NOT EXISTS bookmarks (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	media_id TEXT NOT NULL,
	media_type TEXT NOT NULL CHECK (media_type IN ('movie', 'tv')),
	title TEXT NOT NULL DEFAULT '',
	image TEXT NOT NULL DEFAULT '',
	rating REAL NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	UNIQUE (user_id, media_id, media_type)
);

CREATE INDEX IF NOT EXISTS idx_bookmarks_user ON bookmarks(user_id);
`

// BookmarkTable is a local bookmarks relation. Unlike the hosted table,
// the (user, media id, media type) uniqueness is enforced by the schema.
type BookmarkTable struct {
	db *sql.DB
}

// Open opens (and migrates) the database at path. ":memory:" works too.
func Open(path string) (*BookmarkTable, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: sqlite has a single writer and ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bookmarks table: %w", err)
	}

	return &BookmarkTable{db: db}, nil
}

// Close closes the database.
func (t *BookmarkTable) Close() error {
	return t.db.Close()
}

// Ping checks the database connection.
func (t *BookmarkTable) Ping(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// SelectByUser returns every bookmark owned by userID, oldest first.
func (t *BookmarkTable) SelectByUser(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT id, user_id, media_id, media_type, title, image, rating, created_at
		FROM bookmarks WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	out := []domain.Bookmark{}
	for rows.Next() {
		var (
			b         domain.Bookmark
			id        string
			mediaType string
			createdAt string
		)
		if err := rows.Scan(&id, &b.UserID, &b.MediaID, &mediaType, &b.Title, &b.Image, &b.Rating, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		b.ID = domain.FlexID(id)
		b.MediaType = domain.MediaType(mediaType)
		if b.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("bookmark %s: bad created_at: %w", id, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookmarks: %w", err)
	}
	return out, nil
}

// Insert stores b under a fresh ULID and returns the stored row.
func (t *BookmarkTable) Insert(ctx context.Context, b domain.Bookmark) (*domain.Bookmark, error) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.ID = domain.FlexID(ulid.Make().String())

	_, err := t.db.ExecContext(ctx, `
		INSERT INTO bookmarks (id, user_id, media_id, media_type, title, image, rating, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID.String(), b.UserID, b.MediaID, string(b.MediaType), b.Title, b.Image, b.Rating,
		b.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, fmt.Errorf("%w: %s for user %s", ErrDuplicate, b.Key(), b.UserID)
		}
		return nil, fmt.Errorf("failed to insert bookmark: %w", err)
	}

	return &b, nil
}

// Delete removes the rows matching user, media id and media type.
func (t *BookmarkTable) Delete(ctx context.Context, userID, mediaID string, mediaType domain.MediaType) error {
	_, err := t.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE user_id = ? AND media_id = ? AND media_type = ?`,
		userID, mediaID, string(mediaType))
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return nil
}
