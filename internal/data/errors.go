package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameExists is returned when attempting to create/update a user with a duplicate username.
	ErrUsernameExists = errors.New("username already exists")

	// ErrAssignmentNotFound is returned when an assignment is not found.
	ErrAssignmentNotFound = errors.New("assignment not found")
)
