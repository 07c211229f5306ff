// Package session maps opaque tokens to authenticated user ids. Only the
// user id is serialised into a session; the full user record is
// re-fetched from the credential store on every request.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/jmadden/clubhouse/internal/domain"
)

// Store is the pluggable session backing: an in-memory map for a single
// process (and tests), redis for a shared cache.
type Store interface {
	// Create binds a fresh opaque token to userID for ttl.
	Create(ctx context.Context, userID int64, ttl time.Duration) (string, error)

	// Get resolves a token to a user id. An unknown or expired token
	// yields a domain error with code "session_invalid".
	Get(ctx context.Context, token string) (int64, error)

	// Destroy invalidates a token. Destroying an unknown token is a
	// no-op; an infrastructure failure is returned so logout can fail
	// loudly instead of silently leaving the session live.
	Destroy(ctx context.Context, token string) error
}

const tokenBytes = 32 // 256-bit

func newOpaqueToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", domain.ErrRandomFailed(err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
