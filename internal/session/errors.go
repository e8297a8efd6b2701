package session

import "errors"

// Sentinel errors for session operations, checked with errors.Is().
var (
	// ErrNotFound indicates the requested session does not exist or does
	// not belong to the caller. The two cases are deliberately not
	// distinguished so a session id cannot be probed across owners.
	ErrNotFound = errors.New("session not found")
)
