// Package repositories persists users, posts and follow edges. Every backend implements Store, and
// Store.WithTx runs a unit of work atomically against it.
package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"microblog/internal/schemas"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with an existing one")
)

// DBTX is satisfied by both the pool and a transaction, so repositories run unchanged inside WithTx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Store vends the repositories of one backend.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Followers() FollowRepository
	// WithTx runs fn in a transaction. A returned error or a panic rolls every write of fn back.
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

type UserRepository interface {
	Create(ctx context.Context, user *schemas.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*schemas.User, error)
	GetByUsername(ctx context.Context, username string) (*schemas.User, error)
	GetByEmail(ctx context.Context, email string) (*schemas.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, username, aboutMe string) error
	// UpdatePassword only replaces oldHash. ErrNotFound means the password changed in the meantime.
	UpdatePassword(ctx context.Context, id uuid.UUID, oldHash, newHash string) error
	TouchLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error
}

// PostRepository lists posts newest first. List methods return one page and the total across all pages.
type PostRepository interface {
	Create(ctx context.Context, post *schemas.Post) error
	ListAll(ctx context.Context, offset, limit int) ([]*schemas.Post, int, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*schemas.Post, int, error)
	// ListFollowed returns the feed of userID: its own posts and the posts of every user it follows.
	ListFollowed(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*schemas.Post, int, error)
}

// FollowRepository manages the directed follower graph. Follow and Unfollow are idempotent
// and following oneself is a no-op.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followedID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error
	IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error)
	FollowerCount(ctx context.Context, userID uuid.UUID) (int, error)
	FollowingCount(ctx context.Context, userID uuid.UUID) (int, error)
}
