package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// flexibleSQLMatcher creates a regex that is insensitive to whitespace for more robust SQL mock testing.
func flexibleSQLMatcher(sql string) string {
	trimmed := strings.TrimSpace(sql)
	return regexp.MustCompile(`\s+`).ReplaceAllString(regexp.QuoteMeta(trimmed), `\s+`)
}

func newMockStore(t *testing.T, logger *zap.Logger) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	mockPool.ExpectPing()
	mockPool.ExpectExec(flexibleSQLMatcher(sqlCreateLikes)).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	store, err := New(context.Background(), mockPool, logger)
	require.NoError(t, err)
	return store, mockPool
}

// -- Test Cases --

func TestNewStore(t *testing.T) {
	t.Run("should return error if ping fails", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		pingErr := errors.New("database unavailable")
		mockPool.ExpectPing().WillReturnError(pingErr)

		_, err = New(context.Background(), mockPool, zap.NewNop())
		require.Error(t, err)
		assert.ErrorIs(t, err, pingErr, "Error from ping should be propagated")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should return error if the schema cannot be created", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		ddlErr := errors.New("permission denied")
		mockPool.ExpectPing()
		mockPool.ExpectExec(flexibleSQLMatcher(sqlCreateLikes)).WillReturnError(ddlErr)

		_, err = New(context.Background(), mockPool, zap.NewNop())
		assert.ErrorIs(t, err, ddlErr)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestStore_HasLiked(t *testing.T) {
	ctx := context.Background()

	t.Run("known post", func(t *testing.T) {
		store, mockPool := newMockStore(t, zap.NewNop())
		mockPool.ExpectQuery(flexibleSQLMatcher(sqlHasLiked)).
			WithArgs("post-1").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		liked, err := store.HasLiked(ctx, "post-1")
		require.NoError(t, err)
		assert.True(t, liked)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("unknown post", func(t *testing.T) {
		store, mockPool := newMockStore(t, zap.NewNop())
		mockPool.ExpectQuery(flexibleSQLMatcher(sqlHasLiked)).
			WithArgs("post-2").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		liked, err := store.HasLiked(ctx, "post-2")
		require.NoError(t, err)
		assert.False(t, liked)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("query failure is wrapped", func(t *testing.T) {
		store, mockPool := newMockStore(t, zap.NewNop())
		queryErr := errors.New("connection reset")
		mockPool.ExpectQuery(flexibleSQLMatcher(sqlHasLiked)).
			WithArgs("post-3").
			WillReturnError(queryErr)

		_, err := store.HasLiked(ctx, "post-3")
		assert.ErrorIs(t, err, queryErr)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestStore_RecordLike(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts the like in UTC", func(t *testing.T) {
		store, mockPool := newMockStore(t, zap.NewNop())
		runID := uuid.NewString()
		likedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertLike)).
			WithArgs("post-1", "Jane", "Likemode_friendsfeed_realistic", runID, likedAt.UTC()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := store.RecordLike(ctx, Like{
			PostID:  "post-1",
			Author:  "Jane",
			Mode:    "Likemode_friendsfeed_realistic",
			RunID:   runID,
			LikedAt: likedAt,
		})
		require.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("duplicate like is logged, not failed", func(t *testing.T) {
		observedCore, observedLogs := observer.New(zapcore.DebugLevel)
		store, mockPool := newMockStore(t, zap.New(observedCore))

		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertLike)).
			WithArgs("post-1", "", "m", "r", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		require.NoError(t, store.RecordLike(ctx, Like{PostID: "post-1", Mode: "m", RunID: "r"}))
		assert.Equal(t, 1, observedLogs.FilterMessage("Like already journaled.").Len())
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("empty post id is rejected before the database", func(t *testing.T) {
		store, mockPool := newMockStore(t, zap.NewNop())
		assert.ErrorIs(t, store.RecordLike(ctx, Like{}), ErrEmptyPostID)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("exec failure is wrapped", func(t *testing.T) {
		store, mockPool := newMockStore(t, zap.NewNop())
		execErr := errors.New("disk full")
		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertLike)).
			WithArgs("post-9", "", "m", "r", pgxmock.AnyArg()).
			WillReturnError(execErr)

		err := store.RecordLike(ctx, Like{PostID: "post-9", Mode: "m", RunID: "r"})
		assert.ErrorIs(t, err, execErr)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestStore_LikesSince(t *testing.T) {
	store, mockPool := newMockStore(t, zap.NewNop())
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery(flexibleSQLMatcher(sqlCountLikesSince)).
		WithArgs(since).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))

	n, err := store.LikesSince(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestMemoryJournal(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal()

	liked, err := j.HasLiked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, liked)

	now := time.Now()
	require.NoError(t, j.RecordLike(ctx, Like{PostID: "a", Author: "first", LikedAt: now}))
	require.NoError(t, j.RecordLike(ctx, Like{PostID: "a", Author: "second", LikedAt: now}))
	require.NoError(t, j.RecordLike(ctx, Like{PostID: "b", LikedAt: now.Add(-2 * time.Hour)}))

	liked, err = j.HasLiked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, "first", j.likes["a"].Author, "the first record of a post wins")

	n, err := j.LikesSince(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, j.RecordLike(ctx, Like{}), ErrEmptyPostID)
}
