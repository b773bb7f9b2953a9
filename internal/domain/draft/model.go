package draft

import "time"

// DefaultQuota is the squad size every participant drafts up to.
const DefaultQuota = 5

type Phase string

const (
	PhasePending    Phase = "pending"
	PhaseInProgress Phase = "in_progress"
	PhaseComplete   Phase = "complete"
)

// OrderMode decides how the configured order is walked across rounds.
type OrderMode string

const (
	OrderModeFixed OrderMode = "fixed"
	OrderModeSnake OrderMode = "snake"
)

func (m OrderMode) Valid() bool {
	return m == OrderModeFixed || m == OrderModeSnake
}

// State is the single draft's turn bookkeeping. Every accepted change bumps
// Version, and stores only accept a write carrying the version they last saw.
type State struct {
	ID          string
	Phase       Phase
	Order       []string
	OrderMode   OrderMode
	Round       int
	TurnIndex   int
	Quota       int
	PickCount   int
	SquadCounts map[string]int
	Version     int64
	UpdatedAt   time.Time
}

// Allocation assigns one player to one participant. A released allocation
// stays on record so historic squads can still be resolved.
type Allocation struct {
	ID            string
	DraftID       string
	PlayerID      string
	ParticipantID string
	Round         int
	Pick          int
	OverallPick   int
	AllocatedAt   time.Time
	ReleasedAt    *time.Time
}

func (a Allocation) Live() bool {
	return a.ReleasedAt == nil
}

// HeldAt reports whether the allocation was in force at t.
func (a Allocation) HeldAt(t time.Time) bool {
	if a.AllocatedAt.After(t) {
		return false
	}
	return a.ReleasedAt == nil || a.ReleasedAt.After(t)
}

func (s State) Clone() State {
	out := s
	out.Order = append([]string(nil), s.Order...)
	out.SquadCounts = make(map[string]int, len(s.SquadCounts))
	for k, v := range s.SquadCounts {
		out.SquadCounts[k] = v
	}
	return out
}
