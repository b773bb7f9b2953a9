package httpapi

import (
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/domain/chip"
	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/domain/leaderboard"
	"github.com/riskibarqy/fantasy-draft/internal/domain/player"
	"github.com/riskibarqy/fantasy-draft/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

type allocateRequest struct {
	PlayerID string `json:"playerId" validate:"required"`
}

type deallocateRequest struct {
	PlayerID      string `validate:"required"`
	ParticipantID string `validate:"required"`
}

type consumeChipRequest struct {
	Gameweek   int    `json:"gameweek" validate:"required,min=1"`
	TargetKind string `json:"targetKind" validate:"omitempty,oneof=none participant player"`
	TargetID   string `json:"targetId"`
}

type issueChipRequest struct {
	OwnerID       string `json:"ownerId" validate:"required"`
	Kind          string `json:"kind" validate:"required"`
	StartGameweek int    `json:"startGameweek" validate:"required,min=1"`
	EndGameweek   int    `json:"endGameweek" validate:"required,gtefield=StartGameweek"`
}

type setSelectionRequest struct {
	CaptainID     string `json:"captainId" validate:"required"`
	ViceCaptainID string `json:"viceCaptainId" validate:"required,nefield=CaptainID"`
	BenchID       string `json:"benchId"`
}

type playerDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Position  string `json:"position"`
	Price     int64  `json:"price"`
	Available bool   `json:"available"`
}

type draftStateDTO struct {
	ID          string         `json:"id"`
	Phase       string         `json:"phase"`
	Order       []string       `json:"order"`
	OrderMode   string         `json:"orderMode"`
	Round       int            `json:"round"`
	TurnIndex   int            `json:"turnIndex"`
	OnTheClock  string         `json:"onTheClock,omitempty"`
	Quota       int            `json:"quota"`
	PickCount   int            `json:"pickCount"`
	SquadCounts map[string]int `json:"squadCounts"`
	Version     int64          `json:"version"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type allocationDTO struct {
	ID            string     `json:"id"`
	PlayerID      string     `json:"playerId"`
	ParticipantID string     `json:"participantId"`
	Round         int        `json:"round"`
	Pick          int        `json:"pick"`
	OverallPick   int        `json:"overallPick"`
	AllocatedAt   time.Time  `json:"allocatedAt"`
	ReleasedAt    *time.Time `json:"releasedAt,omitempty"`
}

type chipDTO struct {
	ID               string     `json:"id"`
	OwnerID          string     `json:"ownerId"`
	Kind             string     `json:"kind"`
	StartGameweek    int        `json:"startGameweek"`
	EndGameweek      int        `json:"endGameweek"`
	Used             bool       `json:"used"`
	TargetKind       string     `json:"targetKind"`
	TargetID         string     `json:"targetId,omitempty"`
	ConsumedAt       *time.Time `json:"consumedAt,omitempty"`
	ConsumedGameweek int        `json:"consumedGameweek,omitempty"`
}

type selectionDTO struct {
	ParticipantID string `json:"participantId"`
	Gameweek      int    `json:"gameweek"`
	CaptainID     string `json:"captainId"`
	ViceCaptainID string `json:"viceCaptainId"`
	BenchID       string `json:"benchId,omitempty"`
}

type gameweekScoreDTO struct {
	ParticipantID  string `json:"participantId"`
	Gameweek       int    `json:"gameweek"`
	RawPoints      int    `json:"rawPoints"`
	CaptainBonus   int    `json:"captainBonus"`
	ChipAdjustment int    `json:"chipAdjustment"`
	FinalTotal     int    `json:"finalTotal"`
}

type playerLineDTO struct {
	PlayerID       string `json:"playerId"`
	OverallPick    int    `json:"overallPick"`
	Minutes        int    `json:"minutes"`
	Points         int    `json:"points"`
	Multiplier     int    `json:"multiplier"`
	Counted        bool   `json:"counted"`
	Benched        bool   `json:"benched"`
	SubstitutedIn  bool   `json:"substitutedIn"`
	SubstitutedOut bool   `json:"substitutedOut"`
	Captain        bool   `json:"captain"`
	ViceCaptain    bool   `json:"viceCaptain"`
	BonusApplied   bool   `json:"bonusApplied"`
}

type breakdownDTO struct {
	ParticipantID    string           `json:"participantId"`
	Gameweek         int              `json:"gameweek"`
	Selection        selectionDTO     `json:"selection"`
	DefaultSelection bool             `json:"defaultSelection"`
	Players          []playerLineDTO  `json:"players"`
	Score            gameweekScoreDTO `json:"score"`
}

type gameweekResultDTO struct {
	Gameweek int                `json:"gameweek"`
	Scores   []gameweekScoreDTO `json:"scores,omitempty"`
	Error    string             `json:"error,omitempty"`
	Kind     string             `json:"kind,omitempty"`
}

type scheduledComputeDTO struct {
	Gameweek        int       `json:"gameweek"`
	Path            string    `json:"path"`
	RunAt           time.Time `json:"runAt"`
	DelaySeconds    int64     `json:"delaySeconds"`
	DeduplicationID string    `json:"deduplicationId"`
}

type leaderboardEntryDTO struct {
	Rank            int     `json:"rank"`
	ParticipantID   string  `json:"participantId"`
	Name            string  `json:"name"`
	TotalPoints     int     `json:"totalPoints"`
	GameweeksPlayed int     `json:"gameweeksPlayed"`
	AveragePoints   float64 `json:"averagePoints"`
	BestGameweek    int     `json:"bestGameweek"`
	WorstGameweek   int     `json:"worstGameweek"`
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:        p.ID,
		Name:      p.Name,
		Position:  string(p.Position),
		Price:     p.Price,
		Available: p.Available,
	}
}

func draftStateToDTO(s draft.State) draftStateDTO {
	out := draftStateDTO{
		ID:          s.ID,
		Phase:       string(s.Phase),
		Order:       append([]string{}, s.Order...),
		OrderMode:   string(s.OrderMode),
		Round:       s.Round,
		TurnIndex:   s.TurnIndex,
		Quota:       s.Quota,
		PickCount:   s.PickCount,
		SquadCounts: make(map[string]int, len(s.SquadCounts)),
		Version:     s.Version,
		UpdatedAt:   s.UpdatedAt,
	}
	for k, v := range s.SquadCounts {
		out.SquadCounts[k] = v
	}
	if s.Phase == draft.PhaseInProgress && s.TurnIndex >= 0 && s.TurnIndex < len(s.Order) {
		out.OnTheClock = s.Order[s.TurnIndex]
	}
	return out
}

func allocationToDTO(a draft.Allocation) allocationDTO {
	return allocationDTO{
		ID:            a.ID,
		PlayerID:      a.PlayerID,
		ParticipantID: a.ParticipantID,
		Round:         a.Round,
		Pick:          a.Pick,
		OverallPick:   a.OverallPick,
		AllocatedAt:   a.AllocatedAt,
		ReleasedAt:    a.ReleasedAt,
	}
}

func chipToDTO(c chip.Chip) chipDTO {
	return chipDTO{
		ID:               c.ID,
		OwnerID:          c.OwnerID,
		Kind:             string(c.Kind),
		StartGameweek:    c.StartGameweek,
		EndGameweek:      c.EndGameweek,
		Used:             c.Used,
		TargetKind:       string(c.Target.Kind()),
		TargetID:         c.Target.ID(),
		ConsumedAt:       c.ConsumedAt,
		ConsumedGameweek: c.ConsumedGameweek,
	}
}

func selectionToDTO(s scoring.Selection) selectionDTO {
	return selectionDTO{
		ParticipantID: s.ParticipantID,
		Gameweek:      s.Gameweek,
		CaptainID:     s.CaptainID,
		ViceCaptainID: s.ViceCaptainID,
		BenchID:       s.BenchID,
	}
}

func scoreToDTO(s scoring.GameweekScore) gameweekScoreDTO {
	return gameweekScoreDTO{
		ParticipantID:  s.ParticipantID,
		Gameweek:       s.Gameweek,
		RawPoints:      s.RawPoints,
		CaptainBonus:   s.CaptainBonus,
		ChipAdjustment: s.ChipAdjustment,
		FinalTotal:     s.FinalTotal,
	}
}

func scoresToDTO(scores []scoring.GameweekScore) []gameweekScoreDTO {
	out := make([]gameweekScoreDTO, 0, len(scores))
	for _, s := range scores {
		out = append(out, scoreToDTO(s))
	}
	return out
}

func breakdownToDTO(b scoring.Breakdown) breakdownDTO {
	lines := make([]playerLineDTO, 0, len(b.Players))
	for _, l := range b.Players {
		lines = append(lines, playerLineDTO{
			PlayerID:       l.PlayerID,
			OverallPick:    l.OverallPick,
			Minutes:        l.Minutes,
			Points:         l.Points,
			Multiplier:     l.Multiplier(),
			Counted:        l.Counted,
			Benched:        l.Benched,
			SubstitutedIn:  l.SubstitutedIn,
			SubstitutedOut: l.SubstitutedOut,
			Captain:        l.Captain,
			ViceCaptain:    l.ViceCaptain,
			BonusApplied:   l.BonusApplied,
		})
	}

	return breakdownDTO{
		ParticipantID:    b.ParticipantID,
		Gameweek:         b.Gameweek,
		Selection:        selectionToDTO(b.Selection),
		DefaultSelection: b.DefaultSelection,
		Players:          lines,
		Score:            scoreToDTO(b.Score),
	}
}

func leaderboardToDTO(entries []leaderboard.Entry) []leaderboardEntryDTO {
	out := make([]leaderboardEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, leaderboardEntryDTO{
			Rank:            e.Rank,
			ParticipantID:   e.ParticipantID,
			Name:            e.Name,
			TotalPoints:     e.TotalPoints,
			GameweeksPlayed: e.GameweeksPlayed,
			AveragePoints:   e.AveragePoints,
			BestGameweek:    e.BestGameweek,
			WorstGameweek:   e.WorstGameweek,
		})
	}
	return out
}

func scheduledComputeToDTO(job usecase.ScheduledCompute) scheduledComputeDTO {
	return scheduledComputeDTO{
		Gameweek:        job.Gameweek,
		Path:            job.Path,
		RunAt:           job.RunAt,
		DelaySeconds:    int64(job.Delay / time.Second),
		DeduplicationID: job.DeduplicationID,
	}
}
