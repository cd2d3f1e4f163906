package store

import "errors"

var (
	// ErrNotFound is returned when a referenced id is absent from its collection.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned on duplicate-email user creation.
	ErrAlreadyExists = errors.New("already exists")
	// ErrAlreadyEnrolled is returned when enrolling a student twice in one course.
	ErrAlreadyEnrolled = errors.New("already enrolled")
)

// ValidationError carries a user-facing message for malformed or disallowed
// input. Handlers map it to a 400.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }
