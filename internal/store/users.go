package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmadden/clubhouse/internal/domain"
)

type UsersStore struct {
	db *sql.DB
}

// Add inserts a new member and assigns its id. The password field must
// already be a hash; this layer never sees plaintext.
func (s *UsersStore) Add(ctx context.Context, user *domain.User) error {
	query := `
	INSERT INTO members (fullname, username, password, membership, admin)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		user.FullName,
		user.Username,
		user.PasswordHash,
		user.IsMember,
		user.IsAdmin,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("addUser: %w", err)
	}

	return nil
}

func (s *UsersStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT id, fullname, username, password, membership, admin
	FROM members WHERE username = $1`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.FullName,
		&user.Username,
		&user.PasswordHash,
		&user.IsMember,
		&user.IsAdmin,
	)
	if err != nil {
		return nil, fmt.Errorf("getUserByUsername: %w", err)
	}
	return &user, nil
}

func (s *UsersStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT id, fullname, username, password, membership, admin
	FROM members WHERE id = $1`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.FullName,
		&user.Username,
		&user.PasswordHash,
		&user.IsMember,
		&user.IsAdmin,
	)
	if err != nil {
		return nil, fmt.Errorf("getUserById: %w", err)
	}
	return &user, nil
}
