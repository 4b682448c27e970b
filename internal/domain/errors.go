package domain

import "errors"

// Error kinds shared by every layer. Lower layers wrap them with context;
// the HTTP layer maps them with errors.Is.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateIdentity  = errors.New("identity already exists")
	ErrValidation         = errors.New("validation failed")
	ErrSeatConflict       = errors.New("seat is already booked")
	ErrNotFound           = errors.New("not found")
)
