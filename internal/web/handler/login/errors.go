// Package login provides HTTP handlers and helpers for user authentication.
//
// This file defines exported error values used throughout the login flow.
package login

import "errors"

var (
	// ErrInvalidFormData is returned when the submitted login form cannot be parsed.
	ErrInvalidFormData = errors.New("invalid form data")

	// ErrInvalidCredentials is returned when the provided username and/or password
	// are not valid. Unknown users get the same error.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAccountNotApproved is returned for accounts an administrator has not approved yet.
	ErrAccountNotApproved = errors.New("this account has not been approved")

	// ErrInternalServerError is returned for unexpected failures during the login
	// process.
	ErrInternalServerError = errors.New("internal server error")
)
