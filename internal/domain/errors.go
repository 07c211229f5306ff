package domain

import (
	"errors"
	"fmt"
)

// ErrKind is used to map domain errors to HTTP outcomes consistently.
type ErrKind string

const (
	KindValidation ErrKind = "validation" // 400, re-render form with field errors
	KindAuth       ErrKind = "auth"       // flash message + redirect back to login
	KindForbidden  ErrKind = "forbidden"  // 403, no redirect
	KindNotFound   ErrKind = "not_found"  // 404
	KindStore      ErrKind = "store"      // 500, opaque to the client
	KindInternal   ErrKind = "internal"   // 500
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code (do not change casually)
// - Message: safe summary for clients (avoid leaking internals)
// - Meta: optional details (field, operation, etc.)
// - Cause: wrapped underlying error for logging/diagnostics
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

// Is reports whether err carries the given stable code.
func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// KindOf returns the kind of a domain error, or KindInternal for any
// other error.
func KindOf(err error) ErrKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", "invalid field"), map[string]string{
		"field":  field,
		"reason": reason,
	})
}

func ErrDuplicateUsername() *Error {
	return New(KindValidation, "duplicate_username", "A user with that username already exists.")
}

func ErrInvalidMembershipSecret() *Error {
	return New(KindValidation, "invalid_membership_secret", "Invalid membership password.")
}

// ----------------------
// Authentication errors
// ----------------------

// Login failures keep a distinct internal code for the two causes but
// share one user-facing message, so the response never reveals whether
// the username exists.
const loginFailedMessage = "Incorrect username or password."

func ErrIncorrectUsername() *Error {
	return New(KindAuth, "incorrect_username", loginFailedMessage)
}

func ErrIncorrectPassword() *Error {
	return New(KindAuth, "incorrect_password", loginFailedMessage)
}

func ErrSessionInvalid() *Error {
	return New(KindAuth, "session_invalid", "invalid or expired session")
}

// ----------------------
// Forbidden (403)
// ----------------------

func ErrForbidden() *Error {
	return New(KindForbidden, "forbidden", "Forbidden")
}

// ----------------------
// Not found (404)
// ----------------------

func ErrUserNotFound() *Error {
	return New(KindNotFound, "user_not_found", "user not found")
}

// ----------------------
// Store / internal (5xx)
// ----------------------

// ErrStore wraps a persistence failure. The operation name travels in
// Meta so the transport layer can log it without exposing query text.
func ErrStore(op string, cause error) *Error {
	return WithMeta(Wrap(KindStore, "store_failure", "storage failure", cause), map[string]string{
		"operation": op,
	})
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "password hashing failed", cause)
}

func ErrRandomFailed(cause error) *Error {
	return Wrap(KindInternal, "random_failed", "random generation failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}
