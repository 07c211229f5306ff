// Package service holds the business logic between the HTTP layer and
// the stores: registration, the login state machine, session-bound
// identity, and message posting.
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jmadden/clubhouse/internal/domain"
	"github.com/jmadden/clubhouse/internal/logger"
	"github.com/jmadden/clubhouse/internal/security"
	"github.com/jmadden/clubhouse/internal/session"
	"github.com/jmadden/clubhouse/internal/store"
)

// AuthService verifies credentials against the credential store and
// binds authenticated identities to sessions.
type AuthService struct {
	store    store.Storage
	sessions session.Store
	hasher   *security.BcryptHasher

	// bcrypt hash of the shared membership unlock secret, from
	// configuration. Empty disables the unlock flow.
	membershipHash string

	sessionTTL time.Duration
}

func NewAuthService(st store.Storage, sessions session.Store, hasher *security.BcryptHasher, membershipHash string, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		store:          st,
		sessions:       sessions,
		hasher:         hasher,
		membershipHash: membershipHash,
		sessionTTL:     sessionTTL,
	}
}

// RegisterInput carries validated, trimmed registration fields.
type RegisterInput struct {
	FullName         string
	Username         string
	Password         string
	Member           bool
	Admin            bool
	MembershipSecret string
}

// Register creates a new member. Input format validation has already
// happened in the transport layer; this layer handles the duplicate
// check, the membership secret, and hashing.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	existing, err := s.store.Users.GetByUsername(ctx, in.Username)
	if err == nil && existing != nil {
		return nil, domain.ErrDuplicateUsername()
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrStore("getUserByUsername", err)
	}

	isMember := in.Member
	if in.MembershipSecret != "" {
		if s.membershipHash == "" {
			// No secret provisioned; nothing can match.
			return nil, domain.ErrInvalidMembershipSecret()
		}
		if err := s.hasher.Compare(s.membershipHash, in.MembershipSecret); err != nil {
			return nil, domain.ErrInvalidMembershipSecret()
		}
		isMember = true
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FullName:     in.FullName,
		Username:     in.Username,
		PasswordHash: passwordHash,
		IsMember:     isMember,
		IsAdmin:      in.Admin,
	}
	if err := s.store.Users.Add(ctx, user); err != nil {
		return nil, domain.ErrStore("addUser", err)
	}

	logger.WithCtx(ctx).Info().
		Int64("user_id", user.ID).
		Bool("member", user.IsMember).
		Bool("admin", user.IsAdmin).
		Msg("user registered")

	return user, nil
}

// Login verifies a username/password pair and, on success, binds a fresh
// session to the user. The two failure reasons stay distinct internally
// but share one user-facing message.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.store.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.WithCtx(ctx).Warn().Str("reason", "incorrect_username").Msg("login failed")
			return "", nil, domain.ErrIncorrectUsername()
		}
		return "", nil, domain.ErrStore("getUserByUsername", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			logger.WithCtx(ctx).Warn().
				Int64("user_id", user.ID).
				Str("reason", "incorrect_password").
				Msg("login failed")
			return "", nil, domain.ErrIncorrectPassword()
		}
		return "", nil, domain.ErrInternal(err)
	}

	token, err := s.sessions.Create(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return "", nil, err
	}

	logger.WithCtx(ctx).Info().Int64("user_id", user.ID).Msg("user logged in")
	return token, user, nil
}

// Logout invalidates the session server-side. The invalidation must
// complete before the caller redirects; a failure here is surfaced, not
// swallowed.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// CurrentUser rehydrates the identity for a session token by re-fetching
// the user record. A token whose user id no longer resolves is treated
// as unauthenticated, not as an error.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	id, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// User removed since the session was created.
			_ = s.sessions.Destroy(ctx, token)
			return nil, domain.ErrSessionInvalid()
		}
		return nil, domain.ErrStore("getUserById", err)
	}
	return user, nil
}
