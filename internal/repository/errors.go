package repository

import "errors"

// ErrNotFound is returned when a query matches no rows. Implementations
// wrap it so callers can test with errors.Is.
var ErrNotFound = errors.New("record not found")
