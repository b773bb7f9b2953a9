package chip

import "errors"

var (
	ErrAlreadyUsed    = errors.New("chip already used")
	ErrOutOfWindow    = errors.New("chip out of window")
	ErrTargetRequired = errors.New("chip target required")
	ErrInvalidTarget  = errors.New("invalid chip target")
)
