// Package security holds the one-way password hashing used for login
// passwords and the shared membership unlock secret.
package security

import (
	"github.com/jmadden/clubhouse/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt hash of plaintext. The plaintext is never
// logged here or anywhere downstream.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", domain.ErrHashFailed(err)
	}
	return string(b), nil
}

// Compare reports whether plaintext matches hash.
// bcrypt.ErrMismatchedHashAndPassword is returned on mismatch.
func (h *BcryptHasher) Compare(hash string, plaintext string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
}
