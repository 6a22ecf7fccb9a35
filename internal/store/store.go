package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Like is one journaled like.
type Like struct {
	PostID  string
	Author  string
	Mode    string
	RunID   string
	LikedAt time.Time
}

// Journal remembers which posts the bot has already liked, so a post is never
// liked twice across runs.
type Journal interface {
	HasLiked(ctx context.Context, postID string) (bool, error)
	RecordLike(ctx context.Context, like Like) error
}

// ErrEmptyPostID is returned when a like has no post id to key it by.
var ErrEmptyPostID = errors.New("like has an empty post id")

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	sqlCreateLikes = `
        CREATE TABLE IF NOT EXISTS likes (
            post_id  TEXT PRIMARY KEY,
            author   TEXT NOT NULL DEFAULT '',
            mode     TEXT NOT NULL,
            run_id   TEXT NOT NULL,
            liked_at TIMESTAMPTZ NOT NULL
        );
    `
	sqlHasLiked   = `SELECT EXISTS (SELECT 1 FROM likes WHERE post_id = $1);`
	sqlInsertLike = `
        INSERT INTO likes (post_id, author, mode, run_id, liked_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (post_id) DO NOTHING;
    `
	sqlCountLikesSince = `SELECT COUNT(*) FROM likes WHERE liked_at >= $1;`
)

// Store provides a PostgreSQL implementation of the Journal interface.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

var _ Journal = (*Store)(nil)

// New creates a new store instance, verifies the connection and makes sure the
// likes table exists.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, sqlCreateLikes); err != nil {
		return nil, fmt.Errorf("failed to create likes table: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// HasLiked reports whether postID is already in the journal.
func (s *Store) HasLiked(ctx context.Context, postID string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, sqlHasLiked, postID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to look up post %s: %w", postID, err)
	}
	return exists, nil
}

// RecordLike adds like to the journal. Recording a post twice is a no-op.
func (s *Store) RecordLike(ctx context.Context, like Like) error {
	if like.PostID == "" {
		return ErrEmptyPostID
	}
	likedAt := like.LikedAt
	if likedAt.IsZero() {
		likedAt = time.Now()
	}

	tag, err := s.pool.Exec(ctx, sqlInsertLike,
		like.PostID, like.Author, like.Mode, like.RunID, likedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record like for post %s: %w", like.PostID, err)
	}
	if tag.RowsAffected() == 0 {
		s.log.Debug("Like already journaled.", zap.String("post_id", like.PostID))
	}
	return nil
}

// LikesSince counts the likes journaled at or after since.
func (s *Store) LikesSince(ctx context.Context, since time.Time) (int, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, sqlCountLikesSince, since.UTC()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return int(n), nil
}

// MemoryJournal is a process-local Journal used when no database is configured.
type MemoryJournal struct {
	mu    sync.RWMutex
	likes map[string]Like
}

var _ Journal = (*MemoryJournal)(nil)

// NewMemoryJournal returns an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{likes: make(map[string]Like)}
}

func (m *MemoryJournal) HasLiked(_ context.Context, postID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.likes[postID]
	return ok, nil
}

func (m *MemoryJournal) RecordLike(_ context.Context, like Like) error {
	if like.PostID == "" {
		return ErrEmptyPostID
	}
	if like.LikedAt.IsZero() {
		like.LikedAt = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.likes[like.PostID]; !ok {
		m.likes[like.PostID] = like
	}
	return nil
}

// LikesSince counts the likes recorded at or after since.
func (m *MemoryJournal) LikesSince(_ context.Context, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, l := range m.likes {
		if !l.LikedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
