package chip

import (
	"sort"
	"time"
)

type Role string

const (
	RoleBeneficiary Role = "beneficiary"
	RoleVictim      Role = "victim"
)

// Effect is one participant's share of a consumed chip for one gameweek.
type Effect struct {
	ChipID              string
	ChipKind            Kind
	Gameweek            int
	ParticipantID       string
	SourceParticipantID string
	TargetParticipantID string
	TargetPlayerID      string
	Role                Role
	ConsumedAt          time.Time
}

// Materialize expands a consumed chip into its effect rows. targetHolderID is
// the participant holding the loaned player and is ignored for other kinds.
func Materialize(c Chip, targetHolderID string) []Effect {
	if !c.Used || c.ConsumedAt == nil {
		return nil
	}

	base := Effect{
		ChipID:              c.ID,
		ChipKind:            c.Kind,
		Gameweek:            c.ConsumedGameweek,
		SourceParticipantID: c.OwnerID,
		ConsumedAt:          *c.ConsumedAt,
	}

	switch c.Kind {
	case KindTripleCaptain, KindBenchBoost:
		owner := base
		owner.ParticipantID = c.OwnerID
		owner.Role = RoleBeneficiary
		return []Effect{owner}
	case KindPointRedirect:
		base.TargetParticipantID = c.Target.ID()
		owner := base
		owner.ParticipantID = c.OwnerID
		owner.Role = RoleBeneficiary
		victim := base
		victim.ParticipantID = c.Target.ID()
		victim.Role = RoleVictim
		return []Effect{owner, victim}
	case KindPlayerLoan:
		base.TargetPlayerID = c.Target.ID()
		base.TargetParticipantID = targetHolderID
		owner := base
		owner.ParticipantID = c.OwnerID
		owner.Role = RoleBeneficiary
		if targetHolderID == "" {
			return []Effect{owner}
		}
		victim := base
		victim.ParticipantID = targetHolderID
		victim.Role = RoleVictim
		return []Effect{owner, victim}
	default:
		return nil
	}
}

// SortEffects orders effects by consumption time, chip id on ties.
func SortEffects(effects []Effect) {
	sort.SliceStable(effects, func(i, j int) bool {
		if !effects[i].ConsumedAt.Equal(effects[j].ConsumedAt) {
			return effects[i].ConsumedAt.Before(effects[j].ConsumedAt)
		}
		if effects[i].ChipID != effects[j].ChipID {
			return effects[i].ChipID < effects[j].ChipID
		}
		return effects[i].Role < effects[j].Role
	})
}

// Ledger is the base gameweek scoring an effect resolves against.
type Ledger interface {
	// CaptainBonusPoints is the points of the player credited with the captain bonus.
	CaptainBonusPoints(participantID string) int
	// ExcludedPoints is the summed points of squad players left out of the raw sum.
	ExcludedPoints(participantID string) int
	// TopScorer is the counted player with the most points, lowest overall pick on ties.
	TopScorer(participantID string) (playerID string, points int, ok bool)
	PlayerPoints(playerID string) (int, bool)
	Counted(participantID, playerID string) bool
}

// Resolve returns the point adjustment an effect applies to its participant.
func Resolve(e Effect, ledger Ledger) int {
	switch e.ChipKind {
	case KindTripleCaptain:
		if e.Role != RoleBeneficiary {
			return 0
		}
		return ledger.CaptainBonusPoints(e.ParticipantID)
	case KindBenchBoost:
		if e.Role != RoleBeneficiary {
			return 0
		}
		return ledger.ExcludedPoints(e.ParticipantID)
	case KindPointRedirect:
		_, points, ok := ledger.TopScorer(e.TargetParticipantID)
		if !ok {
			return 0
		}
		if e.Role == RoleVictim {
			return -points
		}
		return points
	case KindPlayerLoan:
		points, ok := ledger.PlayerPoints(e.TargetPlayerID)
		if !ok {
			return 0
		}
		if e.Role == RoleVictim {
			if !ledger.Counted(e.ParticipantID, e.TargetPlayerID) {
				return 0
			}
			return -points
		}
		return points
	default:
		return 0
	}
}
