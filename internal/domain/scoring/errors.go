package scoring

import "errors"

var (
	ErrStatMissing      = errors.New("player stat missing from feed")
	ErrInvalidSelection = errors.New("invalid selection")
)
