package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateAccount is returned when a provider identity is already linked to a user
	ErrDuplicateAccount = errors.New("oauth account already linked")
)

const uniqueViolation = "23505"
