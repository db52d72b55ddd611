package workout

import "errors"

// Sentinel errors for the three failure classes every operation can hit.
// Callers match with errors.Is; the HTTP layer maps them to status codes.
var (
	// ErrNotFound marks an unknown template, session, exercise or set ID.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks a rejected input (empty title, empty exercise
	// list, out-of-range numeric field).
	ErrValidation = errors.New("invalid input")

	// ErrSessionLocked marks a mutation attempted on a completed session.
	// Completion is terminal; there is no reopen operation.
	ErrSessionLocked = errors.New("session is completed")
)
