package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicate is returned when trying to create a user with an email that already exists
	ErrDuplicate = errors.New("user with this email already exists")
	// ErrUserNotFound is returned by repositories when no user matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRegistrationFailed masks duplicate-email details from callers.
	ErrRegistrationFailed = errors.New("registration failed")
	// ErrGenAccessToken is returned when we cannot create a JWT.
	ErrGenAccessToken = errors.New("failed to generate access token")
	// ErrInvalidTokenMissingUserID is returned for tokens without a user_id claim.
	ErrInvalidTokenMissingUserID = errors.New("invalid token: missing user_id")
	// ErrInvalidTokenMissingEmail is returned for tokens without an email claim.
	ErrInvalidTokenMissingEmail = errors.New("invalid token: missing email")
)

// ErrUnauthorized wraps a token verification failure.
func ErrUnauthorized(err error) error {
	return fmt.Errorf("unauthorized: %w", err)
}
