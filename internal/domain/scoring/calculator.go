package scoring

import (
	"fmt"
	"sort"

	"github.com/riskibarqy/fantasy-draft/internal/domain/chip"
	"github.com/riskibarqy/fantasy-draft/internal/domain/playerstats"
)

// SortSquad orders members by overall pick.
func SortSquad(squad []SquadMember) []SquadMember {
	out := append([]SquadMember(nil), squad...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OverallPick < out[j].OverallPick
	})
	return out
}

// DefaultSelection derives a selection from draft order: first pick captains,
// second pick vice-captains, and the last pick sits on the bench once the
// squad is full.
func DefaultSelection(participantID string, gameweek int, squad []SquadMember, quota int) Selection {
	squad = SortSquad(squad)
	sel := Selection{ParticipantID: participantID, Gameweek: gameweek}
	if len(squad) > 0 {
		sel.CaptainID = squad[0].PlayerID
	}
	if len(squad) > 1 {
		sel.ViceCaptainID = squad[1].PlayerID
	}
	if quota > 1 && len(squad) == quota && len(squad) > 2 {
		sel.BenchID = squad[len(squad)-1].PlayerID
	}
	return sel
}

// ValidateSelection checks a selection against the squad it will apply to.
func ValidateSelection(sel Selection, squad []SquadMember) error {
	inSquad := make(map[string]struct{}, len(squad))
	for _, m := range squad {
		inSquad[m.PlayerID] = struct{}{}
	}

	if sel.CaptainID == "" {
		return fmt.Errorf("%w: captain is required", ErrInvalidSelection)
	}
	if _, ok := inSquad[sel.CaptainID]; !ok {
		return fmt.Errorf("%w: captain %s is not in squad", ErrInvalidSelection, sel.CaptainID)
	}
	if sel.ViceCaptainID != "" {
		if _, ok := inSquad[sel.ViceCaptainID]; !ok {
			return fmt.Errorf("%w: vice captain %s is not in squad", ErrInvalidSelection, sel.ViceCaptainID)
		}
		if sel.ViceCaptainID == sel.CaptainID {
			return fmt.Errorf("%w: captain and vice captain must differ", ErrInvalidSelection)
		}
	}
	if sel.BenchID != "" {
		if _, ok := inSquad[sel.BenchID]; !ok {
			return fmt.Errorf("%w: bench player %s is not in squad", ErrInvalidSelection, sel.BenchID)
		}
		if sel.BenchID == sel.CaptainID || sel.BenchID == sel.ViceCaptainID {
			return fmt.Errorf("%w: bench player cannot be captain or vice captain", ErrInvalidSelection)
		}
	}
	return nil
}

// EffectiveSelection returns stored when it still fits the squad, otherwise
// the derived default. The second result reports whether the default was used.
func EffectiveSelection(participantID string, gameweek int, stored Selection, found bool, squad []SquadMember, quota int) (Selection, bool) {
	if found && ValidateSelection(stored, squad) == nil {
		return stored, false
	}
	return DefaultSelection(participantID, gameweek, squad, quota), true
}

// Calculate computes the base breakdown of one participant's gameweek: raw
// points and captain bonus. Chip adjustments are applied later by ApplyEffects.
func Calculate(participantID string, gameweek int, squad []SquadMember, sel Selection, stats map[string]playerstats.StatLine, cfg Config) (Breakdown, error) {
	squad = SortSquad(squad)
	out := Breakdown{
		ParticipantID: participantID,
		Gameweek:      gameweek,
		Selection:     sel,
		Players:       make([]PlayerLine, 0, len(squad)),
		Score:         GameweekScore{ParticipantID: participantID, Gameweek: gameweek},
	}
	if len(squad) == 0 {
		return out, nil
	}

	benchIdx := -1
	for i, m := range squad {
		line, ok := stats[m.PlayerID]
		if !ok {
			return Breakdown{}, fmt.Errorf("%w: player=%s gameweek=%d", ErrStatMissing, m.PlayerID, gameweek)
		}
		benched := m.PlayerID == sel.BenchID
		if benched {
			benchIdx = i
		}
		out.Players = append(out.Players, PlayerLine{
			PlayerID:    m.PlayerID,
			OverallPick: m.OverallPick,
			Minutes:     line.Minutes,
			Points:      line.Points,
			Counted:     !benched,
			Benched:     benched,
			Captain:     m.PlayerID == sel.CaptainID,
			ViceCaptain: m.PlayerID == sel.ViceCaptainID,
		})
	}

	if cfg.AutoSubstitute && benchIdx >= 0 && out.Players[benchIdx].Minutes > 0 {
		for i := range out.Players {
			if !out.Players[i].Counted || out.Players[i].Minutes > 0 {
				continue
			}
			out.Players[i].Counted = false
			out.Players[i].SubstitutedOut = true
			out.Players[benchIdx].Counted = true
			out.Players[benchIdx].SubstitutedIn = true
			break
		}
	}

	for _, p := range out.Players {
		if p.Counted {
			out.Score.RawPoints += p.Points
		}
	}

	if idx := bonusIndex(out.Players); idx >= 0 {
		out.Players[idx].BonusApplied = true
		out.Score.CaptainBonus = out.Players[idx].Points
	}
	out.Score.FinalTotal = out.Score.RawPoints + out.Score.CaptainBonus
	return out, nil
}

// bonusIndex picks the captain when they played, else the vice-captain when
// they played. The bonus player must be counted.
func bonusIndex(players []PlayerLine) int {
	captain, vice := -1, -1
	for i, p := range players {
		if p.Captain {
			captain = i
		}
		if p.ViceCaptain {
			vice = i
		}
	}
	if captain >= 0 && players[captain].Counted && players[captain].Minutes > 0 {
		return captain
	}
	if vice >= 0 && players[vice].Counted && players[vice].Minutes > 0 {
		return vice
	}
	return -1
}

// ApplyEffects resolves effects in consumption order and returns the final row.
func ApplyEffects(b Breakdown, effects []chip.Effect, ledger chip.Ledger) GameweekScore {
	ordered := append([]chip.Effect(nil), effects...)
	chip.SortEffects(ordered)

	score := b.Score
	score.ChipAdjustment = 0
	for _, e := range ordered {
		if e.ParticipantID != b.ParticipantID || e.Gameweek != b.Gameweek {
			continue
		}
		score.ChipAdjustment += chip.Resolve(e, ledger)
	}
	score.FinalTotal = score.RawPoints + score.CaptainBonus + score.ChipAdjustment
	return score
}
