package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is the parent of every failure to turn a bearer token
// into an identity.
var ErrUnauthenticated = errors.New("could not validate credentials")

var (
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	ErrNoSubject    = fmt.Errorf("%w: token has no subject", ErrUnauthenticated)

	// ErrRefreshTokenRejected is returned when a refresh token is presented
	// where an access token is required.
	ErrRefreshTokenRejected = fmt.Errorf("%w: refresh token cannot authenticate requests", ErrInvalidToken)
)

var (
	ErrInvalidCredentials    = errors.New("incorrect username or password")
	ErrInactiveAccount       = errors.New("inactive user")
	ErrAccountNotFound       = errors.New("user not found")
	ErrInsufficientPrivilege = errors.New("not enough privileges")
	ErrSelfActionForbidden   = errors.New("users cannot perform this action on themselves")
	ErrNotRefreshToken       = errors.New("invalid refresh token")
	ErrIncorrectPassword     = errors.New("incorrect password")
	ErrInvalidRole           = errors.New("invalid role")
)

// ErrConflict reports a username or email already held by another account.
var ErrConflict = errors.New("username or email already taken")

// ErrAccountExists is the conflict raised when creating an account. It
// matches ErrConflict but renders its own message.
var ErrAccountExists error = accountExistsError{}

type accountExistsError struct{}

func (accountExistsError) Error() string {
	return "The user with this user name or email already exists in the system"
}

func (accountExistsError) Unwrap() error { return ErrConflict }

// ErrPasswordTooLong is returned when a password exceeds bcrypt's 72 byte
// input limit.
var ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
