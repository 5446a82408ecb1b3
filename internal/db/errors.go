// Package db provides error types for database operations.
package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// Sentinel errors for database operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUserExists indicates a signup collided with an existing email.
	// Surfaces as a unique index violation on user_email.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials indicates a signin was rejected. SurrealDB
	// reports a wrong email and a wrong password identically, so callers
	// cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidEmail indicates the email failed the schema assertion.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrNotFound indicates the requested session does not exist or is
	// not visible to the authenticated user.
	ErrNotFound = errors.New("session not found")

	// ErrNotAuthenticated indicates an operation that requires a signed-in
	// user was attempted without one.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// wrapQueryError inspects a SurrealDB error and wraps it with the
// appropriate sentinel if it matches a known failure. Returns the
// original error otherwise.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		msg = queryErr.Message
	}

	switch {
	case strings.Contains(msg, "already contains") || strings.Contains(msg, "already exists"):
		// Unique index violation on user_email.
		return fmt.Errorf("%w: %s", ErrUserExists, msg)
	case strings.Contains(msg, "string::is::email"):
		// Schema assertion on user.email failed.
		return fmt.Errorf("%w: %s", ErrInvalidEmail, msg)
	case strings.Contains(msg, "No record was returned") || strings.Contains(msg, "problem with authentication"):
		// SIGNIN selected no user: unknown email or wrong password.
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, msg)
	}

	return err
}
