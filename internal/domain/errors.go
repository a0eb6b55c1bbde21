package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned by service functions when the resource exists but
// belongs to a different user.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write would give a user a second running
// timer. Handlers should map this to HTTP 409 so clients can tell
// "stop your current timer first" apart from "nothing to stop".
var ErrConflict = errors.New("conflict")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing project, end time before start time).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")
