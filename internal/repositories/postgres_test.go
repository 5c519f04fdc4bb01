package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"microblog/internal/schemas"
)

func setupPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, poolMock.ExpectationsWereMet())
		poolMock.Close()
	})
	return poolMock
}

var postRowColumns = []string{"post_id", "author_id", "body", "language", "created_at",
	"user_id", "username", "email", "about_me", "last_seen", "created_at"}

func TestPostgresFollow(t *testing.T) {
	ctx := context.Background()
	poolMock := setupPool(t)
	store := NewPostgresStore(poolMock)
	a, b := uuid.New(), uuid.New()

	poolMock.ExpectExec("INSERT INTO followers").
		WithArgs(a, b, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	poolMock.ExpectExec("INSERT INTO followers").
		WithArgs(a, b, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	require.NoError(t, store.Followers().Follow(ctx, a, b))
	require.NoError(t, store.Followers().Follow(ctx, a, b))

	// Following oneself never reaches the database.
	require.NoError(t, store.Followers().Follow(ctx, a, a))
}

func TestPostgresFollowQueries(t *testing.T) {
	ctx := context.Background()
	poolMock := setupPool(t)
	store := NewPostgresStore(poolMock)
	a, b := uuid.New(), uuid.New()

	poolMock.ExpectQuery("SELECT EXISTS \\(SELECT 1 FROM followers").
		WithArgs(a, b).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	poolMock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM followers WHERE followed_id").
		WithArgs(b).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	poolMock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM followers WHERE follower_id").
		WithArgs(a).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	poolMock.ExpectExec("DELETE FROM followers").
		WithArgs(a, b).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	following, err := store.Followers().IsFollowing(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, following)

	followers, err := store.Followers().FollowerCount(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 3, followers)

	followed, err := store.Followers().FollowingCount(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 2, followed)

	require.NoError(t, store.Followers().Unfollow(ctx, a, b))
}

func TestPostgresListFollowed(t *testing.T) {
	ctx := context.Background()
	poolMock := setupPool(t)
	store := NewPostgresStore(poolMock)

	userID, henryID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	poolMock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM posts p WHERE p.author_id = \\$1\\s+OR p.author_id IN").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	poolMock.ExpectQuery("FROM posts p INNER JOIN users u ON p.author_id = u.user_id WHERE (.+) ORDER BY p.created_at DESC, p.post_id DESC OFFSET \\$2 LIMIT \\$3").
		WithArgs(userID, 0, 25).
		WillReturnRows(pgxmock.NewRows(postRowColumns).
			AddRow(uuid.New(), henryID, "p2", "en", now, henryID, "henry", "henry@example.com", "", now, now).
			AddRow(uuid.New(), userID, "p1", "", now.Add(-time.Minute), userID, "mark", "mark@example.com", "", now, now))

	posts, total, err := store.Posts().ListFollowed(ctx, userID, 0, 25)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, posts, 2)
	assert.Equal(t, "p2", posts[0].Body)
	assert.Equal(t, "henry", posts[0].Author.Username)
	assert.Equal(t, "en", posts[0].Language)
	assert.Equal(t, userID, posts[1].AuthorID)
}

func TestPostgresListAllWithoutFilter(t *testing.T) {
	ctx := context.Background()
	poolMock := setupPool(t)
	store := NewPostgresStore(poolMock)

	poolMock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM posts p$").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	poolMock.ExpectQuery("ORDER BY p.created_at DESC, p.post_id DESC OFFSET \\$1 LIMIT \\$2").
		WithArgs(50, 25).
		WillReturnRows(pgxmock.NewRows(postRowColumns))

	posts, total, err := store.Posts().ListAll(ctx, 50, 25)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, posts)
}

func TestPostgresCreateUserConflict(t *testing.T) {
	ctx := context.Background()
	poolMock := setupPool(t)
	store := NewPostgresStore(poolMock)

	user := &schemas.User{ID: uuid.New(), Username: "susan", Email: "susan@example.com"}
	poolMock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, "susan", "susan@example.com", pgxmock.AnyArg(), "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	err := store.Users().Create(ctx, user)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPostgresGetUserNotFound(t *testing.T) {
	ctx := context.Background()
	poolMock := setupPool(t)
	store := NewPostgresStore(poolMock)

	poolMock.ExpectQuery("SELECT user_id, username, email, password_hash, about_me, last_seen, created_at FROM users WHERE email = \\$1").
		WithArgs("susan@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "username", "email", "password_hash", "about_me", "last_seen", "created_at"}))

	_, err := store.Users().GetByEmail(ctx, " SUSAN@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresUpdateMissingUser(t *testing.T) {
	ctx := context.Background()
	poolMock := setupPool(t)
	store := NewPostgresStore(poolMock)
	id := uuid.New()

	poolMock.ExpectExec("UPDATE users SET password_hash").
		WithArgs(id, "new", "old").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, store.Users().UpdatePassword(ctx, id, "old", "new"), ErrNotFound)
}

func TestPostgresUpdatePasswordChecksOldHash(t *testing.T) {
	ctx := context.Background()
	poolMock := setupPool(t)
	store := NewPostgresStore(poolMock)
	id := uuid.New()

	poolMock.ExpectExec("UPDATE users SET password_hash = \\$2 WHERE user_id = \\$1 AND password_hash = \\$3").
		WithArgs(id, "new", "old").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, store.Users().UpdatePassword(ctx, id, "old", "new"))
}

func TestPostgresWithTx(t *testing.T) {
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	t.Run("Commit", func(t *testing.T) {
		poolMock := setupPool(t)
		store := NewPostgresStore(poolMock)

		poolMock.ExpectBegin()
		poolMock.ExpectExec("INSERT INTO followers").
			WithArgs(a, b, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		poolMock.ExpectCommit()

		err := store.WithTx(ctx, func(tx Store) error {
			return tx.Followers().Follow(ctx, a, b)
		})
		require.NoError(t, err)
	})

	t.Run("RollbackOnError", func(t *testing.T) {
		poolMock := setupPool(t)
		store := NewPostgresStore(poolMock)
		failure := errors.New("database unavailable")

		poolMock.ExpectBegin()
		poolMock.ExpectExec("INSERT INTO posts").
			WithArgs(pgxmock.AnyArg(), a, "hello", "", pgxmock.AnyArg()).
			WillReturnError(failure)
		poolMock.ExpectRollback()

		err := store.WithTx(ctx, func(tx Store) error {
			return tx.Posts().Create(ctx, &schemas.Post{ID: uuid.New(), AuthorID: a, Body: "hello"})
		})
		assert.ErrorIs(t, err, failure)
	})

	t.Run("NestedJoinsOuter", func(t *testing.T) {
		poolMock := setupPool(t)
		store := NewPostgresStore(poolMock)

		poolMock.ExpectBegin()
		poolMock.ExpectExec("DELETE FROM followers").
			WithArgs(a, b).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		poolMock.ExpectCommit()

		err := store.WithTx(ctx, func(tx Store) error {
			return tx.WithTx(ctx, func(inner Store) error {
				return inner.Followers().Unfollow(ctx, a, b)
			})
		})
		require.NoError(t, err)
	})

	t.Run("BeginFails", func(t *testing.T) {
		poolMock := setupPool(t)
		store := NewPostgresStore(poolMock)

		poolMock.ExpectBegin().WillReturnError(errors.New("no connection"))

		called := false
		err := store.WithTx(ctx, func(Store) error {
			called = true
			return nil
		})
		assert.Error(t, err)
		assert.False(t, called)
	})
}
