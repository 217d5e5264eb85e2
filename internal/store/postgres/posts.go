package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/GuideNet/GuideNet/internal/domain"
)

/*
	CREATE TABLE posts (
		id         UUID PRIMARY KEY,
		author_id  UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE post_comments (
		id         UUID PRIMARY KEY,
		post_id    UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		author_id  UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE post_likes (
		post_id UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (post_id, user_id)
	);
*/

type PostRepo struct {
	db *sql.DB
}

func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{db: db}
}

func (r *PostRepo) Create(ctx context.Context, authorID domain.UserID, content string) (*domain.Post, error) {
	p := &domain.Post{
		ID:       domain.PostID(uuid.NewString()),
		AuthorID: authorID,
		Content:  content,
	}
	query := `INSERT INTO posts (id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING created_at, (SELECT username FROM users WHERE id = $2)`
	if err := r.db.QueryRowContext(ctx, query, p.ID, authorID, content).
		Scan(&p.CreatedAt, &p.AuthorUsername); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns the feed, newest first, with comments and likes attached.
func (r *PostRepo) List(ctx context.Context) ([]domain.Post, error) {
	query := `SELECT p.id, p.author_id, u.username, p.content, p.created_at
		FROM posts p JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.AuthorUsername, &p.Content, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].Comments, err = r.comments(ctx, posts[i].ID); err != nil {
			return nil, err
		}
		if posts[i].Likes, err = r.likes(ctx, posts[i].ID); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// Delete removes a post if the requester authored it.
func (r *PostRepo) Delete(ctx context.Context, id domain.PostID, authorID domain.UserID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM posts WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostRepo) AddComment(ctx context.Context, id domain.PostID, authorID domain.UserID, content string) (*domain.Comment, error) {
	c := &domain.Comment{
		ID:       uuid.NewString(),
		AuthorID: authorID,
		Content:  content,
	}
	query := `INSERT INTO post_comments (id, post_id, author_id, content)
		SELECT $1, $2, $3, $4
		WHERE EXISTS (SELECT 1 FROM posts WHERE id = $2)
		RETURNING created_at, (SELECT username FROM users WHERE id = $3)`
	err := r.db.QueryRowContext(ctx, query, c.ID, id, authorID, content).
		Scan(&c.CreatedAt, &c.AuthorUsername)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostRepo) Like(ctx context.Context, id domain.PostID, uid domain.UserID) error {
	query := `INSERT INTO post_likes (post_id, user_id)
		SELECT $1, $2 WHERE EXISTS (SELECT 1 FROM posts WHERE id = $1)
		ON CONFLICT DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, id, uid)
	if err != nil {
		return err
	}
	// Zero rows means either a duplicate like (fine) or a missing post.
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM posts WHERE id = $1`, id).Scan(&one); errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

func (r *PostRepo) Unlike(ctx context.Context, id domain.PostID, uid domain.UserID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, id, uid)
	return err
}

func (r *PostRepo) comments(ctx context.Context, id domain.PostID) ([]domain.Comment, error) {
	query := `SELECT c.id, c.author_id, u.username, c.content, c.created_at
		FROM post_comments c JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1 ORDER BY c.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.AuthorID, &c.AuthorUsername, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostRepo) likes(ctx context.Context, id domain.PostID) ([]domain.UserID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM post_likes WHERE post_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UserID
	for rows.Next() {
		var uid domain.UserID
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		out = append(out, uid)
	}
	return out, rows.Err()
}
