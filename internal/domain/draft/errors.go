package draft

import "errors"

var (
	ErrNotInProgress     = errors.New("draft is not in progress")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrQuotaExceeded     = errors.New("squad quota exceeded")
	ErrPlayerUnavailable = errors.New("player unavailable")
	ErrAlreadyStarted    = errors.New("draft already started")
	ErrAlreadyConfigured = errors.New("draft already configured")
	ErrInvalidConfig     = errors.New("invalid draft configuration")

	// ErrVersionConflict is returned by stores when the state version moved
	// between read and write.
	ErrVersionConflict = errors.New("draft state version conflict")
)
