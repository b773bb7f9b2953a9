package postgres

import (
	"github.com/riskibarqy/fantasy-draft/internal/domain/chip"
	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/domain/participant"
	"github.com/riskibarqy/fantasy-draft/internal/domain/player"
	"github.com/riskibarqy/fantasy-draft/internal/domain/scoring"
)

var (
	_ player.Repository           = (*PlayerRepository)(nil)
	_ participant.Repository      = (*ParticipantRepository)(nil)
	_ draft.Repository            = (*DraftRepository)(nil)
	_ chip.Repository             = (*ChipRepository)(nil)
	_ scoring.ScoreRepository     = (*ScoreRepository)(nil)
	_ scoring.SelectionRepository = (*SelectionRepository)(nil)
	_ scoring.CalendarRepository  = (*CalendarRepository)(nil)
)
