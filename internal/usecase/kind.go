package usecase

import (
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/fantasy-draft/internal/domain/chip"
	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/domain/scoring"
)

// Kind is the stable, caller-facing classification of an error.
type Kind string

const (
	KindNotYourTurn            Kind = "not_your_turn"
	KindPlayerUnavailable      Kind = "player_unavailable"
	KindQuotaExceeded          Kind = "quota_exceeded"
	KindDraftNotInProgress     Kind = "draft_not_in_progress"
	KindChipAlreadyUsed        Kind = "chip_already_used"
	KindChipOutOfWindow        Kind = "chip_out_of_window"
	KindTargetRequired         Kind = "target_required"
	KindInvalidTarget          Kind = "invalid_target"
	KindFeedDataUnavailable    Kind = "feed_data_unavailable"
	KindConcurrentModification Kind = "concurrent_modification"
	KindInvalidInput           Kind = "invalid_input"
	KindNotFound               Kind = "not_found"
	KindUnauthorized           Kind = "unauthorized"
	KindForbidden              Kind = "forbidden"
	KindDependencyUnavailable  Kind = "dependency_unavailable"
	KindInternal               Kind = "internal"
)

var kindTable = []struct {
	target error
	kind   Kind
}{
	{draft.ErrNotInProgress, KindDraftNotInProgress},
	{draft.ErrNotYourTurn, KindNotYourTurn},
	{draft.ErrQuotaExceeded, KindQuotaExceeded},
	{draft.ErrPlayerUnavailable, KindPlayerUnavailable},
	{chip.ErrAlreadyUsed, KindChipAlreadyUsed},
	{chip.ErrOutOfWindow, KindChipOutOfWindow},
	{chip.ErrTargetRequired, KindTargetRequired},
	{chip.ErrInvalidTarget, KindInvalidTarget},
	{ErrFeedDataUnavailable, KindFeedDataUnavailable},
	{ErrConcurrentModification, KindConcurrentModification},
	{ErrNotFound, KindNotFound},
	{ErrUnauthorized, KindUnauthorized},
	{ErrForbidden, KindForbidden},
	{ErrDependencyUnavailable, KindDependencyUnavailable},
	{ErrInvalidInput, KindInvalidInput},
	{draft.ErrAlreadyStarted, KindInvalidInput},
	{draft.ErrAlreadyConfigured, KindInvalidInput},
	{draft.ErrInvalidConfig, KindInvalidInput},
	{scoring.ErrInvalidSelection, KindInvalidInput},
}

// KindOf classifies err. Unknown errors are internal; nil has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, row := range kindTable {
		if crerr.Is(err, row.target) {
			return row.kind
		}
	}
	return KindInternal
}

// IsRetryable reports whether repeating the same call may succeed.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindConcurrentModification, KindFeedDataUnavailable, KindDependencyUnavailable:
		return true
	default:
		return false
	}
}
