package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"microblog/internal/schemas"
)

const postColumns = `p.post_id, p.author_id, p.body, p.language, p.created_at,
	u.user_id, u.username, u.email, u.about_me, u.last_seen, u.created_at`

// followedCondition selects the posts of $1 and of every user $1 follows.
const followedCondition = `p.author_id = $1
	OR p.author_id IN (SELECT f.followed_id FROM followers f WHERE f.follower_id = $1)`

type postgresPosts struct {
	db DBTX
}

func scanPosts(rows pgx.Rows) ([]*schemas.Post, error) {
	defer rows.Close()

	posts := make([]*schemas.Post, 0)
	for rows.Next() {
		post := &schemas.Post{Author: &schemas.User{}}
		author := post.Author
		if err := rows.Scan(&post.ID, &post.AuthorID, &post.Body, &post.Language, &post.CreatedAt,
			&author.ID, &author.Username, &author.Email, &author.AboutMe, &author.LastSeen, &author.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postgresPosts) Create(ctx context.Context, post *schemas.Post) error {
	queryString := "INSERT INTO posts (post_id, author_id, body, language, created_at) VALUES ($1, $2, $3, $4, $5)"
	_, err := r.db.Exec(ctx, queryString, post.ID, post.AuthorID, post.Body, post.Language, post.CreatedAt)
	return translateError(err, "insert post")
}

// list counts the matching posts, then fetches one page of them. where may reference $1 through args.
func (r *postgresPosts) list(ctx context.Context, action, where string, offset, limit int, args ...interface{}) ([]*schemas.Post, int, error) {
	countQuery := "SELECT COUNT(*) FROM posts p"
	pageQuery := "SELECT " + postColumns + " FROM posts p INNER JOIN users u ON p.author_id = u.user_id"
	if where != "" {
		countQuery += " WHERE " + where
		pageQuery += " WHERE " + where
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, translateError(err, "count "+action)
	}

	n := len(args)
	pageQuery += " ORDER BY p.created_at DESC, p.post_id DESC OFFSET $" + itoa(n+1) + " LIMIT $" + itoa(n+2)
	rows, err := r.db.Query(ctx, pageQuery, append(args, offset, limit)...)
	if err != nil {
		return nil, 0, translateError(err, "select "+action)
	}

	posts, err := scanPosts(rows)
	if err != nil {
		return nil, 0, translateError(err, "scan "+action)
	}
	return posts, total, nil
}

func (r *postgresPosts) ListAll(ctx context.Context, offset, limit int) ([]*schemas.Post, int, error) {
	return r.list(ctx, "all posts", "", offset, limit)
}

func (r *postgresPosts) ListByAuthor(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*schemas.Post, int, error) {
	return r.list(ctx, "posts by author", "p.author_id = $1", offset, limit, authorID)
}

func (r *postgresPosts) ListFollowed(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*schemas.Post, int, error) {
	return r.list(ctx, "followed posts", followedCondition, offset, limit, userID)
}
