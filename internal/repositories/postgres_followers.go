package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type postgresFollowers struct {
	db DBTX
}

// Follow inserts the edge unless it exists. The composite primary key makes the insert idempotent.
func (r *postgresFollowers) Follow(ctx context.Context, followerID, followedID uuid.UUID) error {
	if followerID == followedID {
		return nil
	}
	queryString := `INSERT INTO followers (follower_id, followed_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, followed_id) DO NOTHING`
	_, err := r.db.Exec(ctx, queryString, followerID, followedID, time.Now().UTC())
	return translateError(err, "insert follower")
}

func (r *postgresFollowers) Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	queryString := "DELETE FROM followers WHERE follower_id = $1 AND followed_id = $2"
	_, err := r.db.Exec(ctx, queryString, followerID, followedID)
	return translateError(err, "delete follower")
}

func (r *postgresFollowers) IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error) {
	queryString := "SELECT EXISTS (SELECT 1 FROM followers WHERE follower_id = $1 AND followed_id = $2)"
	var following bool
	if err := r.db.QueryRow(ctx, queryString, followerID, followedID).Scan(&following); err != nil {
		return false, translateError(err, "check follower")
	}
	return following, nil
}

func (r *postgresFollowers) count(ctx context.Context, column string, userID uuid.UUID) (int, error) {
	var total int
	queryString := "SELECT COUNT(*) FROM followers WHERE " + column + " = $1"
	if err := r.db.QueryRow(ctx, queryString, userID).Scan(&total); err != nil {
		return 0, translateError(err, "count by "+column)
	}
	return total, nil
}

// FollowerCount counts the users following userID.
func (r *postgresFollowers) FollowerCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.count(ctx, "followed_id", userID)
}

// FollowingCount counts the users userID follows.
func (r *postgresFollowers) FollowingCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.count(ctx, "follower_id", userID)
}
