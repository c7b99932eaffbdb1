package services

import "errors"

// Sentinel errors returned by services. Handlers map these onto HTTP status
// codes; anything else is treated as an unexpected storage error.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)
