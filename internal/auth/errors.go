package auth

import "errors"

var (
	// ErrUserNameOrEmailExists is returned by CreateUser for a taken username or email.
	ErrUserNameOrEmailExists = errors.New("user with username or email already exists")

	// ErrUserAccountDisabled is returned for accounts an administrator has not approved.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidPassword is returned by Authenticate for a wrong password.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound is returned by Authenticate for unknown usernames.
	ErrUserNotFound = errors.New("user not found")
)
