package services

import "errors"

var (
	// ErrValidation marks user-correctable input problems; controllers map
	// it to 400 before any persistence or external call happens.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers both a missing record and a record owned by
	// someone else. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	ErrEmailTaken     = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid email or password")

	// ErrUpstream marks a failed call to the hosted estimation service
	// that could not be masked by the fallback path.
	ErrUpstream = errors.New("estimation service failed")
)
