package memory

import (
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/domain/participant"
	"github.com/riskibarqy/fantasy-draft/internal/domain/player"
	"github.com/riskibarqy/fantasy-draft/internal/domain/scoring"
)

const (
	ParticipantIDAdmin = "mgr-admin"
	ParticipantIDRina  = "mgr-rina"
	ParticipantIDBayu  = "mgr-bayu"
	ParticipantIDSari  = "mgr-sari"
)

func SeedParticipants() []participant.Participant {
	return []participant.Participant{
		{ID: ParticipantIDAdmin, Name: "League Admin", IsActive: true, IsAdmin: true},
		{ID: ParticipantIDRina, Name: "Rina", IsActive: true},
		{ID: ParticipantIDBayu, Name: "Bayu", IsActive: true},
		{ID: ParticipantIDSari, Name: "Sari", IsActive: true},
	}
}

// SeedDraftOrder is the turn order used by local runs.
func SeedDraftOrder() []string {
	return []string{ParticipantIDRina, ParticipantIDBayu, ParticipantIDSari}
}

func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: "idn-gk-01", Name: "Andritany Ardhiyasa", Position: player.PositionGoalkeeper, Price: 90, Available: true},
		{ID: "idn-gk-02", Name: "Teja Paku Alam", Position: player.PositionGoalkeeper, Price: 85, Available: true},
		{ID: "idn-gk-03", Name: "Ernando Ari", Position: player.PositionGoalkeeper, Price: 82, Available: true},
		{ID: "idn-def-01", Name: "Hansamu Yama", Position: player.PositionDefender, Price: 88, Available: true},
		{ID: "idn-def-02", Name: "Nick Kuipers", Position: player.PositionDefender, Price: 92, Available: true},
		{ID: "idn-def-03", Name: "Dusan Stevanovic", Position: player.PositionDefender, Price: 84, Available: true},
		{ID: "idn-def-04", Name: "Ricky Fajrin", Position: player.PositionDefender, Price: 80, Available: true},
		{ID: "idn-mid-01", Name: "Maciej Gajos", Position: player.PositionMidfielder, Price: 98, Available: true},
		{ID: "idn-mid-02", Name: "Marc Klok", Position: player.PositionMidfielder, Price: 99, Available: true},
		{ID: "idn-mid-03", Name: "Bruno Moreira", Position: player.PositionMidfielder, Price: 95, Available: true},
		{ID: "idn-mid-04", Name: "Eber Bessa", Position: player.PositionMidfielder, Price: 97, Available: true},
		{ID: "idn-fwd-01", Name: "Gustavo Almeida", Position: player.PositionForward, Price: 105, Available: true},
		{ID: "idn-fwd-02", Name: "David da Silva", Position: player.PositionForward, Price: 108, Available: true},
		{ID: "idn-fwd-03", Name: "Ciro Alves", Position: player.PositionForward, Price: 101, Available: true},
		{ID: "idn-fwd-04", Name: "Flavio Silva", Position: player.PositionForward, Price: 103, Available: true},
		{ID: "idn-fwd-05", Name: "Ramiro Fergonzi", Position: player.PositionForward, Price: 96, Available: true},
	}
}

// SeedCalendar returns weekly deadlines starting at start.
func SeedCalendar(start time.Time, weeks int) []scoring.Gameweek {
	out := make([]scoring.Gameweek, 0, weeks)
	for i := 0; i < weeks; i++ {
		out = append(out, scoring.Gameweek{
			Number:     i + 1,
			DeadlineAt: start.Add(time.Duration(i) * 7 * 24 * time.Hour),
		})
	}
	return out
}
