// Package store persists members and messages in PostgreSQL. Every
// statement uses bound parameters; failures are wrapped with the
// operation name and propagate to the caller, never to the end user.
package store

import (
	"context"
	"database/sql"

	"github.com/jmadden/clubhouse/internal/domain"
)

type Storage struct {
	Users interface {
		Add(ctx context.Context, user *domain.User) error
		GetByUsername(ctx context.Context, username string) (*domain.User, error)
		GetByID(ctx context.Context, id int64) (*domain.User, error)
	}
	Messages interface {
		Post(ctx context.Context, msg *domain.Message) error
		ListWithAuthor(ctx context.Context) ([]domain.MessageWithAuthor, error)
		DeleteByID(ctx context.Context, id int64) error
	}
}

func NewStorage(db *sql.DB) Storage {
	return Storage{
		Users:    &UsersStore{db: db},
		Messages: &MessagesStore{db: db},
	}
}
