package users

import "errors"

var (
	// ErrInvalidInput indicates a malformed registration or login request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates no user exists for the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrBadCredentials indicates the email/password pair does not match.
	ErrBadCredentials = errors.New("invalid email or password")
)
