// Package apperrors defines the expected, user-facing error outcomes of the
// service and their HTTP mapping. Anything not in this taxonomy is treated
// as an internal error and reported as a 500 without detail.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrDuplicateUsername is returned when a registration or update would
	// violate username uniqueness.
	ErrDuplicateUsername = errors.New("username already registered")

	// ErrDuplicateEmail is returned when a registration or update would
	// violate email uniqueness.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrUserNotFound is returned when an explicitly named user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is the uniform login failure. It deliberately does
	// not distinguish an unknown username from a wrong password.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrInvalidSession is the uniform authentication failure for requests
	// carrying a missing, unknown, expired, deactivated, or
	// fingerprint-mismatched access token.
	ErrInvalidSession = errors.New("could not validate credentials")

	// ErrNotAuthorized means the caller is authenticated but its role is
	// outside the allowed set for the operation.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInactiveUser means the account status blocks the action even though
	// role-based authorization would permit it.
	ErrInactiveUser = errors.New("inactive user")

	// ErrUserCreation wraps failures to persist a user with its profile.
	ErrUserCreation = errors.New("failed to create user")

	// ErrUserUpdate wraps failures to persist a user/profile update.
	ErrUserUpdate = errors.New("failed to update user")
)

// HTTPStatus maps an expected error to its response status code.
// Unknown errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrDuplicateUsername),
		errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrInactiveUser),
		errors.Is(err, ErrUserCreation),
		errors.Is(err, ErrUserUpdate):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidSession):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Expected reports whether err belongs to the taxonomy above, i.e. it is a
// user-facing outcome rather than an internal failure.
func Expected(err error) bool {
	return HTTPStatus(err) != http.StatusInternalServerError
}
