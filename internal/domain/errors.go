package domain

import "errors"

// Store implementations return these so callers can tell absence and
// uniqueness violations apart from backend failures.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)
