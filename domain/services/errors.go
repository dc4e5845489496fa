package services

import "errors"

// Error kinds returned by services. Callers wrap them with context using
// fmt.Errorf("%w: ...") and the HTTP layer maps them with errors.Is.
var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)
