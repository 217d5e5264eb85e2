package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/GuideNet/GuideNet/internal/domain"
)

/*
	CREATE TABLE users (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		verified      BOOLEAN NOT NULL DEFAULT FALSE,
		bio           TEXT NOT NULL DEFAULT '',
		avatar        BYTEA,
		avatar_type   TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	);
*/

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (id, username, email, password_hash, verified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash, u.Verified).Scan(&u.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	query := `SELECT id, username, email, password_hash, verified, bio,
			CASE WHEN avatar IS NULL THEN '' ELSE id::text END,
			created_at
		FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, username, email, password_hash, verified, bio,
			CASE WHEN avatar IS NULL THEN '' ELSE id::text END,
			created_at
		FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id domain.UserID, username, bio string) error {
	query := `UPDATE users SET username = $2, bio = $3 WHERE id = $1`
	return r.exec(ctx, query, id, username, bio)
}

func (r *UserRepo) MarkVerified(ctx context.Context, id domain.UserID) error {
	return r.exec(ctx, `UPDATE users SET verified = TRUE WHERE id = $1`, id)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id domain.UserID, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
}

func (r *UserRepo) SetAvatar(ctx context.Context, id domain.UserID, content []byte, contentType string) error {
	return r.exec(ctx, `UPDATE users SET avatar = $2, avatar_type = $3 WHERE id = $1`, id, content, contentType)
}

func (r *UserRepo) GetAvatar(ctx context.Context, id domain.UserID) ([]byte, string, error) {
	var content []byte
	var contentType string
	query := `SELECT avatar, avatar_type FROM users WHERE id = $1 AND avatar IS NOT NULL`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&content, &contentType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", domain.ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return content, contentType, nil
}

func (r *UserRepo) scanUser(row *sql.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Verified, &u.Bio, &u.AvatarID, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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

// isUniqueViolation matches the postgres unique_violation error code.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	type coder interface{ SQLState() string }
	var c coder
	if errors.As(err, &c) {
		return c.SQLState() == "23505"
	}
	return false
}
