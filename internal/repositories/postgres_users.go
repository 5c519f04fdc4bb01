package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"microblog/internal/schemas"
)

const userColumns = "user_id, username, email, password_hash, about_me, last_seen, created_at"

type postgresUsers struct {
	db DBTX
}

func scanUser(row pgx.Row) (*schemas.User, error) {
	user := &schemas.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.AboutMe, &user.LastSeen, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *postgresUsers) Create(ctx context.Context, user *schemas.User) error {
	queryString := `INSERT INTO users (user_id, username, email, password_hash, about_me, last_seen, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, queryString, user.ID, user.Username, user.Email, user.PasswordHash, user.AboutMe,
		user.LastSeen, user.CreatedAt)
	return translateError(err, "insert user")
}

func (r *postgresUsers) getBy(ctx context.Context, column string, value interface{}) (*schemas.User, error) {
	queryString := "SELECT " + userColumns + " FROM users WHERE " + column + " = $1"
	user, err := scanUser(r.db.QueryRow(ctx, queryString, value))
	if err != nil {
		return nil, translateError(err, "select user by "+column)
	}
	return user, nil
}

func (r *postgresUsers) GetByID(ctx context.Context, id uuid.UUID) (*schemas.User, error) {
	return r.getBy(ctx, "user_id", id)
}

func (r *postgresUsers) GetByUsername(ctx context.Context, username string) (*schemas.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *postgresUsers) GetByEmail(ctx context.Context, email string) (*schemas.User, error) {
	return r.getBy(ctx, "email", schemas.NormalizeEmail(email))
}

func (r *postgresUsers) exists(ctx context.Context, column string, value interface{}) (bool, error) {
	queryString := "SELECT EXISTS (SELECT 1 FROM users WHERE " + column + " = $1)"
	var exists bool
	if err := r.db.QueryRow(ctx, queryString, value).Scan(&exists); err != nil {
		return false, translateError(err, "check "+column)
	}
	return exists, nil
}

func (r *postgresUsers) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

func (r *postgresUsers) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", schemas.NormalizeEmail(email))
}

func (r *postgresUsers) update(ctx context.Context, action, queryString string, args ...interface{}) error {
	tag, err := r.db.Exec(ctx, queryString, args...)
	if err != nil {
		return translateError(err, action)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresUsers) UpdateProfile(ctx context.Context, id uuid.UUID, username, aboutMe string) error {
	return r.update(ctx, "update profile",
		"UPDATE users SET username = $2, about_me = $3 WHERE user_id = $1", id, username, aboutMe)
}

func (r *postgresUsers) UpdatePassword(ctx context.Context, id uuid.UUID, oldHash, newHash string) error {
	return r.update(ctx, "update password",
		"UPDATE users SET password_hash = $2 WHERE user_id = $1 AND password_hash = $3", id, newHash, oldHash)
}

func (r *postgresUsers) TouchLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.update(ctx, "touch last seen",
		"UPDATE users SET last_seen = $2 WHERE user_id = $1", id, at)
}
