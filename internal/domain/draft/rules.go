package draft

import (
	"fmt"
	"strings"
	"time"
)

// NewState builds the pending draft for the given order.
func NewState(id string, order []string, mode OrderMode, quota int, now time.Time) (State, error) {
	if strings.TrimSpace(id) == "" {
		return State{}, fmt.Errorf("%w: draft id is required", ErrInvalidConfig)
	}
	if len(order) == 0 {
		return State{}, fmt.Errorf("%w: turn order is required", ErrInvalidConfig)
	}
	if mode == "" {
		mode = OrderModeFixed
	}
	if !mode.Valid() {
		return State{}, fmt.Errorf("%w: unknown order mode %q", ErrInvalidConfig, mode)
	}
	if quota < 1 {
		return State{}, fmt.Errorf("%w: quota must be at least 1", ErrInvalidConfig)
	}

	seen := make(map[string]struct{}, len(order))
	counts := make(map[string]int, len(order))
	cleaned := make([]string, 0, len(order))
	for _, participantID := range order {
		participantID = strings.TrimSpace(participantID)
		if participantID == "" {
			return State{}, fmt.Errorf("%w: empty participant id in order", ErrInvalidConfig)
		}
		if _, ok := seen[participantID]; ok {
			return State{}, fmt.Errorf("%w: duplicate participant %s in order", ErrInvalidConfig, participantID)
		}
		seen[participantID] = struct{}{}
		counts[participantID] = 0
		cleaned = append(cleaned, participantID)
	}

	return State{
		ID:          id,
		Phase:       PhasePending,
		Order:       cleaned,
		OrderMode:   mode,
		Round:       1,
		TurnIndex:   0,
		Quota:       quota,
		SquadCounts: counts,
		Version:     1,
		UpdatedAt:   now,
	}, nil
}

// RoundOrder returns the participant sequence for a round. Snake mode walks
// even rounds backwards.
func (s State) RoundOrder(round int) []string {
	out := append([]string(nil), s.Order...)
	if s.OrderMode == OrderModeSnake && round%2 == 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// CurrentParticipant is the participant holding the turn pointer.
func (s State) CurrentParticipant() (string, bool) {
	if s.Phase != PhaseInProgress || len(s.Order) == 0 {
		return "", false
	}
	order := s.RoundOrder(s.Round)
	if s.TurnIndex < 0 || s.TurnIndex >= len(order) {
		return "", false
	}
	return order[s.TurnIndex], true
}

func (s State) InOrder(participantID string) bool {
	_, ok := s.SquadCounts[participantID]
	return ok
}

// NextPick returns the round, pick within round and overall pick number the
// next accepted allocation receives.
func (s State) NextPick() (round, pick, overall int) {
	return s.Round, s.TurnIndex + 1, s.PickCount + 1
}

// Start opens the draft. With nothing left to pick the draft completes at once.
func (s State) Start(availablePlayers int, now time.Time) (State, error) {
	if s.Phase != PhasePending {
		return State{}, ErrAlreadyStarted
	}
	next := s.Clone()
	next.Phase = PhaseInProgress
	next.Round = 1
	next.TurnIndex = 0
	next.Version++
	next.UpdatedAt = now
	if next.complete(availablePlayers) {
		next.Phase = PhaseComplete
	}
	return next, nil
}

// CheckTurn validates that participantID may allocate right now.
func (s State) CheckTurn(participantID string) error {
	if s.Phase != PhaseInProgress {
		return ErrNotInProgress
	}
	current, ok := s.CurrentParticipant()
	if !ok || current != participantID {
		return ErrNotYourTurn
	}
	if s.SquadCounts[participantID] >= s.Quota {
		return ErrQuotaExceeded
	}
	return nil
}

// AfterAllocation returns the state following an accepted allocation by the
// current participant. remainingAvailable counts players still available
// after this allocation.
func (s State) AfterAllocation(participantID string, remainingAvailable int, now time.Time) State {
	next := s.Clone()
	next.SquadCounts[participantID]++
	next.PickCount++
	next.Version++
	next.UpdatedAt = now

	if next.complete(remainingAvailable) {
		next.Phase = PhaseComplete
		return next
	}
	next.advance()
	return next
}

// AfterRelease returns the state following a deallocation. The turn pointer
// and phase are left untouched.
func (s State) AfterRelease(participantID string, now time.Time) State {
	next := s.Clone()
	if next.SquadCounts[participantID] > 0 {
		next.SquadCounts[participantID]--
	}
	next.Version++
	next.UpdatedAt = now
	return next
}

func (s State) complete(remainingAvailable int) bool {
	if remainingAvailable <= 0 {
		return true
	}
	for _, participantID := range s.Order {
		if s.SquadCounts[participantID] < s.Quota {
			return false
		}
	}
	return true
}

// advance moves the pointer to the next participant below quota. Callers
// guarantee at least one such participant exists.
func (s *State) advance() {
	steps := 2 * len(s.Order)
	for i := 0; i < steps; i++ {
		s.TurnIndex++
		if s.TurnIndex >= len(s.Order) {
			s.TurnIndex = 0
			s.Round++
		}
		current, _ := s.CurrentParticipant()
		if s.SquadCounts[current] < s.Quota {
			return
		}
	}
}
