package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrForbidden means an authenticated actor lacks the right for the call.
	ErrForbidden = errors.New("forbidden")

	// ErrConcurrentModification means an atomic conditional write lost a race.
	// Callers retry the whole operation.
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrFeedDataUnavailable    = errors.New("feed data unavailable")
)
