package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmadden/clubhouse/internal/domain"
)

type MessagesStore struct {
	db *sql.DB
}

func (s *MessagesStore) Post(ctx context.Context, msg *domain.Message) error {
	query := `
	INSERT INTO messages (author, title, content)
	VALUES ($1, $2, $3)
	RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		msg.AuthorID,
		msg.Title,
		msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("postMessage: %w", err)
	}

	return nil
}

// ListWithAuthor returns every message joined with its author's full
// name. The join is a LEFT JOIN so a message whose author row is gone
// still appears, with a nil author.
func (s *MessagesStore) ListWithAuthor(ctx context.Context) ([]domain.MessageWithAuthor, error) {
	query := `
	SELECT messages.id, messages.title, messages.content, messages.created_at, members.fullname
	FROM messages
	LEFT JOIN members ON messages.author = members.id
	ORDER BY messages.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listMessagesWithAuthor: %w", err)
	}
	defer rows.Close()

	var out []domain.MessageWithAuthor
	for rows.Next() {
		var m domain.MessageWithAuthor
		var author sql.NullString
		if err := rows.Scan(&m.ID, &m.Title, &m.Content, &m.CreatedAt, &author); err != nil {
			return nil, fmt.Errorf("listMessagesWithAuthor: %w", err)
		}
		if author.Valid {
			m.Author = &author.String
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listMessagesWithAuthor: %w", err)
	}
	return out, nil
}

// DeleteByID removes one message. Deleting an id that does not exist is
// a no-op, not an error.
func (s *MessagesStore) DeleteByID(ctx context.Context, id int64) error {
	query := `DELETE FROM messages WHERE id = $1`

	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("deleteMessageById: %w", err)
	}
	return nil
}
