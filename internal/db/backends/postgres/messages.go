package postgres

import (
	"context"

	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const messageColumns = `id::text, name, email, subject, message, is_read, created_at`

// MessageStore implements interfaces.MessageStore on contact_messages.
type MessageStore struct {
	pool *pgxpool.Pool
}

func scanMessage(row rowScanner) (*domain.Message, error) {
	var m domain.Message
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.IsRead, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MessageStore) Insert(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	out, err := scanMessage(s.pool.QueryRow(ctx, `
		INSERT INTO contact_messages (name, email, subject, message, is_read)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+messageColumns,
		msg.Name, msg.Email, msg.Subject, msg.Message, msg.IsRead))
	if err != nil {
		return nil, mapError("insert message", err)
	}
	return out, nil
}

func (s *MessageStore) List(ctx context.Context) ([]*domain.Message, error) {
	const op = "list messages"
	rows, err := s.pool.Query(ctx, `SELECT `+messageColumns+` FROM contact_messages ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	var out []*domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return out, nil
}

func (s *MessageStore) ToggleRead(ctx context.Context, id string) (*domain.Message, error) {
	const op = "toggle message"
	if _, err := uuid.Parse(id); err != nil {
		return nil, interfaces.NewError(interfaces.KindNotFound, op)
	}
	out, err := scanMessage(s.pool.QueryRow(ctx, `
		UPDATE contact_messages SET is_read = NOT is_read
		WHERE id = $1::uuid
		RETURNING `+messageColumns, id))
	if err != nil {
		return nil, mapError(op, err)
	}
	return out, nil
}

func (s *MessageStore) Count(ctx context.Context, unreadOnly bool) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM contact_messages WHERE ($1::bool = false OR NOT is_read)`, unreadOnly).Scan(&n)
	if err != nil {
		return 0, mapError("count messages", err)
	}
	return n, nil
}
