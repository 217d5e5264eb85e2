package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/GuideNet/GuideNet/internal/domain"
)

/*
	CREATE TABLE chats (
		id         UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE chat_participants (
		chat_id  UUID NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		user_id  UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (chat_id, user_id)
	);

	CREATE TABLE chat_messages (
		id        UUID PRIMARY KEY,
		chat_id   UUID NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		sender_id UUID NOT NULL REFERENCES users(id),
		content   TEXT NOT NULL,
		sent_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX chat_messages_chat_idx ON chat_messages (chat_id, sent_at);
*/

type ChatRepo struct {
	db *sql.DB
}

func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// CreateBetween returns the existing 1:1 chat for the pair or creates one.
func (r *ChatRepo) CreateBetween(ctx context.Context, a, b domain.UserID) (*domain.Chat, error) {
	findQuery := `SELECT p1.chat_id FROM chat_participants p1
		JOIN chat_participants p2 ON p1.chat_id = p2.chat_id
		WHERE p1.user_id = $1 AND p2.user_id = $2`
	var existing domain.ChatID
	err := r.db.QueryRowContext(ctx, findQuery, a, b).Scan(&existing)
	if err == nil {
		return r.GetByID(ctx, existing)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	chat := &domain.Chat{ID: domain.ChatID(uuid.NewString())}
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO chats (id) VALUES ($1) RETURNING created_at, updated_at`,
		chat.ID).Scan(&chat.CreatedAt, &chat.UpdatedAt); err != nil {
		return nil, err
	}
	for _, uid := range []domain.UserID{a, b} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2)`,
			chat.ID, uid); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, chat.ID)
}

func (r *ChatRepo) GetByID(ctx context.Context, id domain.ChatID) (*domain.Chat, error) {
	chat := &domain.Chat{ID: id}
	err := r.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM chats WHERE id = $1`, id).
		Scan(&chat.CreatedAt, &chat.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if chat.Participants, err = r.participants(ctx, id); err != nil {
		return nil, err
	}
	return chat, nil
}

func (r *ChatRepo) ListForUser(ctx context.Context, uid domain.UserID) ([]domain.Chat, error) {
	query := `SELECT c.id, c.created_at, c.updated_at FROM chats c
		JOIN chat_participants p ON p.chat_id = c.id
		WHERE p.user_id = $1
		ORDER BY c.updated_at DESC`
	rows, err := r.db.QueryContext(ctx, query, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []domain.Chat
	for rows.Next() {
		var c domain.Chat
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range chats {
		if chats[i].Participants, err = r.participants(ctx, chats[i].ID); err != nil {
			return nil, err
		}
	}
	return chats, nil
}

func (r *ChatRepo) IsParticipant(ctx context.Context, id domain.ChatID, uid domain.UserID) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM chat_participants WHERE chat_id = $1 AND user_id = $2`,
		id, uid).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AppendMessage persists the message with a server-side timestamp and returns
// the stored record. The relay only ever forwards what this returns.
func (r *ChatRepo) AppendMessage(ctx context.Context, id domain.ChatID, sender domain.UserID, content string) (*domain.ChatMessage, error) {
	msg := &domain.ChatMessage{
		ID:       uuid.NewString(),
		ChatID:   id,
		SenderID: sender,
		Content:  content,
	}
	query := `INSERT INTO chat_messages (id, chat_id, sender_id, content)
		SELECT $1, $2, $3, $4
		WHERE EXISTS (SELECT 1 FROM chats WHERE id = $2)
		RETURNING sent_at, (SELECT username FROM users WHERE id = $3)`
	err := r.db.QueryRowContext(ctx, query, msg.ID, id, sender, content).
		Scan(&msg.Timestamp, &msg.SenderUsername)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE chats SET updated_at = now() WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *ChatRepo) ListMessages(ctx context.Context, id domain.ChatID) ([]domain.ChatMessage, error) {
	query := `SELECT m.id, m.sender_id, u.username, m.content, m.sent_at
		FROM chat_messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.chat_id = $1
		ORDER BY m.sent_at ASC`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.ChatMessage
	for rows.Next() {
		m := domain.ChatMessage{ChatID: id}
		if err := rows.Scan(&m.ID, &m.SenderID, &m.SenderUsername, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *ChatRepo) participants(ctx context.Context, id domain.ChatID) ([]domain.Participant, error) {
	query := `SELECT p.user_id, u.username FROM chat_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.chat_id = $1`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.UserID, &p.Username); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
