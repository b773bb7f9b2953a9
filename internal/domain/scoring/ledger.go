package scoring

import (
	"github.com/riskibarqy/fantasy-draft/internal/domain/chip"
	"github.com/riskibarqy/fantasy-draft/internal/domain/playerstats"
)

var _ chip.Ledger = Ledger{}

// Ledger answers chip resolution queries from one gameweek's base breakdowns.
type Ledger struct {
	breakdowns map[string]Breakdown
	stats      map[string]playerstats.StatLine
}

func NewLedger(breakdowns []Breakdown, stats map[string]playerstats.StatLine) Ledger {
	byParticipant := make(map[string]Breakdown, len(breakdowns))
	for _, b := range breakdowns {
		byParticipant[b.ParticipantID] = b
	}
	return Ledger{breakdowns: byParticipant, stats: stats}
}

func (l Ledger) CaptainBonusPoints(participantID string) int {
	return l.breakdowns[participantID].Score.CaptainBonus
}

func (l Ledger) ExcludedPoints(participantID string) int {
	total := 0
	for _, p := range l.breakdowns[participantID].Players {
		if !p.Counted {
			total += p.Points
		}
	}
	return total
}

func (l Ledger) TopScorer(participantID string) (string, int, bool) {
	var (
		best  PlayerLine
		found bool
	)
	for _, p := range l.breakdowns[participantID].Players {
		if !p.Counted {
			continue
		}
		if !found || p.Points > best.Points || (p.Points == best.Points && p.OverallPick < best.OverallPick) {
			best = p
			found = true
		}
	}
	return best.PlayerID, best.Points, found
}

func (l Ledger) PlayerPoints(playerID string) (int, bool) {
	line, ok := l.stats[playerID]
	return line.Points, ok
}

func (l Ledger) Counted(participantID, playerID string) bool {
	for _, p := range l.breakdowns[participantID].Players {
		if p.PlayerID == playerID {
			return p.Counted
		}
	}
	return false
}
