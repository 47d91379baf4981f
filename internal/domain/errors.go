package domain

import "errors"

// Domain errors surfaced by the reconciliation engine and its collaborators.
var (
	// ErrAuthenticationRequired is returned when an operation needs a valid
	// session identity and none is available. Surfaced to the caller.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrTaskNotFound is returned when a task id is not present in the local
	// store for an update or delete. Surfaced to the caller.
	ErrTaskNotFound = errors.New("task not found")

	// ErrRemoteUnavailable covers network failures, non-success HTTP statuses
	// and malformed response bodies from the gateway. The engine never
	// surfaces it for the four task operations; it triggers the offline
	// fallback path instead.
	ErrRemoteUnavailable = errors.New("remote service unavailable")
)

// IsRemoteUnavailable checks if an error is a remote-unavailable error.
func IsRemoteUnavailable(err error) bool {
	return errors.Is(err, ErrRemoteUnavailable)
}
