package leaderboard

import (
	"math"
	"sort"

	"github.com/riskibarqy/fantasy-draft/internal/domain/participant"
	"github.com/riskibarqy/fantasy-draft/internal/domain/scoring"
)

// Entry is one participant's standing. Derived on demand, never stored.
type Entry struct {
	ParticipantID   string
	Name            string
	TotalPoints     int
	GameweeksPlayed int
	AveragePoints   float64
	BestGameweek    int
	WorstGameweek   int
	Rank            int
}

// Build ranks every participant in order by total points, best gameweek and
// then participant id. Participants without rows get a zero entry.
func Build(order []string, participants []participant.Participant, scores []scoring.GameweekScore) []Entry {
	names := make(map[string]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.Name
	}

	byParticipant := make(map[string][]scoring.GameweekScore, len(order))
	for _, s := range scores {
		byParticipant[s.ParticipantID] = append(byParticipant[s.ParticipantID], s)
	}

	entries := make([]Entry, 0, len(order))
	seen := make(map[string]struct{}, len(order))
	for _, participantID := range order {
		if _, ok := seen[participantID]; ok {
			continue
		}
		seen[participantID] = struct{}{}
		entries = append(entries, summarize(participantID, names[participantID], byParticipant[participantID]))
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.BestGameweek != b.BestGameweek {
			return a.BestGameweek > b.BestGameweek
		}
		return a.ParticipantID < b.ParticipantID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func summarize(participantID, name string, rows []scoring.GameweekScore) Entry {
	entry := Entry{ParticipantID: participantID, Name: name}
	if len(rows) == 0 {
		return entry
	}

	entry.BestGameweek = rows[0].FinalTotal
	entry.WorstGameweek = rows[0].FinalTotal
	for _, row := range rows {
		entry.TotalPoints += row.FinalTotal
		if row.FinalTotal > entry.BestGameweek {
			entry.BestGameweek = row.FinalTotal
		}
		if row.FinalTotal < entry.WorstGameweek {
			entry.WorstGameweek = row.FinalTotal
		}
	}
	entry.GameweeksPlayed = len(rows)
	entry.AveragePoints = roundOneDecimal(float64(entry.TotalPoints) / float64(len(rows)))
	return entry
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
