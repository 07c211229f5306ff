package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS members (
	id INTEGER PRIMARY KEY GENERATED ALWAYS AS IDENTITY,
	fullname VARCHAR ( 255 ),
	username VARCHAR ( 255 ),
	password VARCHAR ( 255 ),
	membership BOOLEAN,
	admin BOOLEAN
);

CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY GENERATED ALWAYS AS IDENTITY,
	author INTEGER REFERENCES members(id),
	title VARCHAR ( 60 ),
	content VARCHAR ( 5000 ),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureSchema creates the members and messages tables if they do not
// exist. Username deliberately carries no unique constraint; duplicate
// registrations are rejected one layer up.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
