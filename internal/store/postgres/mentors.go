package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/GuideNet/GuideNet/internal/domain"
)

/*
	CREATE TABLE mentors (
		id         UUID PRIMARY KEY,
		user_id    UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		expertise  JSONB NOT NULL DEFAULT '[]',
		company    TEXT NOT NULL DEFAULT '',
		title      TEXT NOT NULL DEFAULT '',
		available  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
*/

type MentorRepo struct {
	db *sql.DB
}

func NewMentorRepo(db *sql.DB) *MentorRepo {
	return &MentorRepo{db: db}
}

// Upsert registers the user as a mentor, or refreshes the existing profile.
func (r *MentorRepo) Upsert(ctx context.Context, m *domain.Mentor) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	expertise, err := json.Marshal(m.Expertise)
	if err != nil {
		return err
	}
	query := `INSERT INTO mentors (id, user_id, expertise, company, title, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
			SET expertise = EXCLUDED.expertise,
			    company = EXCLUDED.company,
			    title = EXCLUDED.title,
			    available = EXCLUDED.available
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, m.ID, m.UserID, expertise, m.Company, m.Title, m.Available).
		Scan(&m.ID, &m.CreatedAt)
}

// List returns mentors, optionally filtered by an expertise tag.
func (r *MentorRepo) List(ctx context.Context, expertise string) ([]domain.Mentor, error) {
	query := `SELECT id, user_id, expertise, company, title, available, created_at
		FROM mentors
		WHERE $1 = '' OR expertise ? $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, expertise)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Mentor
	for rows.Next() {
		m, err := scanMentor(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *MentorRepo) GetByUser(ctx context.Context, uid domain.UserID) (*domain.Mentor, error) {
	query := `SELECT id, user_id, expertise, company, title, available, created_at
		FROM mentors WHERE user_id = $1`
	m, err := scanMentor(r.db.QueryRowContext(ctx, query, uid).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func scanMentor(scan func(...any) error) (*domain.Mentor, error) {
	m := &domain.Mentor{}
	var expertise []byte
	if err := scan(&m.ID, &m.UserID, &expertise, &m.Company, &m.Title, &m.Available, &m.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(expertise, &m.Expertise); err != nil {
		return nil, err
	}
	return m, nil
}
