package auth

import (
	"errors"

	"github.com/roamchat/roam/internal/db"
)

// User-facing authentication errors. Provider failures collapse into
// this fixed vocabulary; anything unrecognized becomes ErrAuthFailed.
// The underlying cause is logged, never shown.
var (
	ErrEmailInUse    = errors.New("email is already registered")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrWeakPassword  = errors.New("password is too weak")
	ErrInvalidLogin  = errors.New("invalid email or password")
	ErrNotSignedIn   = errors.New("not signed in")
	ErrSignOutFailed = errors.New("failed to sign out")
	ErrAuthFailed    = errors.New("an error occurred during authentication")
)

// minPasswordLen is enforced client-side before the provider is called.
const minPasswordLen = 8

// mapProviderError translates a provider failure into the fixed
// user-facing vocabulary.
func mapProviderError(err error) error {
	switch {
	case errors.Is(err, db.ErrUserExists):
		return ErrEmailInUse
	case errors.Is(err, db.ErrInvalidEmail):
		return ErrInvalidEmail
	case errors.Is(err, db.ErrInvalidCredentials):
		// Unknown user and wrong password are deliberately identical.
		return ErrInvalidLogin
	default:
		return ErrAuthFailed
	}
}
