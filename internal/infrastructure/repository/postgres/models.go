package postgres

import (
	"time"

	"github.com/lib/pq"
)

type playerTableModel struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	Position  string     `db:"position"`
	Price     int64      `db:"price"`
	Available bool       `db:"available"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type participantTableModel struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	IsActive  bool       `db:"is_active"`
	IsAdmin   bool       `db:"is_admin"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type draftTableModel struct {
	ID        string         `db:"id"`
	Phase     string         `db:"phase"`
	Order     pq.StringArray `db:"draft_order"`
	OrderMode string         `db:"order_mode"`
	Round     int            `db:"round"`
	TurnIndex int            `db:"turn_index"`
	Quota     int            `db:"quota"`
	PickCount int            `db:"pick_count"`
	Version   int64          `db:"version"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type allocationTableModel struct {
	ID            string     `db:"id"`
	DraftID       string     `db:"draft_id"`
	PlayerID      string     `db:"player_id"`
	ParticipantID string     `db:"participant_id"`
	Round         int        `db:"round"`
	Pick          int        `db:"pick"`
	OverallPick   int        `db:"overall_pick"`
	AllocatedAt   time.Time  `db:"allocated_at"`
	ReleasedAt    *time.Time `db:"released_at"`
}

type squadCountRow struct {
	ParticipantID string `db:"participant_id"`
	Count         int    `db:"count"`
}

type chipTableModel struct {
	ID               string     `db:"id"`
	OwnerID          string     `db:"owner_id"`
	Kind             string     `db:"kind"`
	StartGameweek    int        `db:"start_gameweek"`
	EndGameweek      int        `db:"end_gameweek"`
	Used             bool       `db:"used"`
	TargetKind       string     `db:"target_kind"`
	TargetID         string     `db:"target_id"`
	ConsumedAt       *time.Time `db:"consumed_at"`
	ConsumedGameweek int        `db:"consumed_gameweek"`
	CreatedAt        time.Time  `db:"created_at"`
}

type chipEffectTableModel struct {
	ChipID              string    `db:"chip_id"`
	ChipKind            string    `db:"chip_kind"`
	Gameweek            int       `db:"gameweek"`
	ParticipantID       string    `db:"participant_id"`
	SourceParticipantID string    `db:"source_participant_id"`
	TargetParticipantID string    `db:"target_participant_id"`
	TargetPlayerID      string    `db:"target_player_id"`
	Role                string    `db:"role"`
	ConsumedAt          time.Time `db:"consumed_at"`
}

type gameweekScoreTableModel struct {
	ParticipantID  string `db:"participant_id"`
	Gameweek       int    `db:"gameweek"`
	RawPoints      int    `db:"raw_points"`
	CaptainBonus   int    `db:"captain_bonus"`
	ChipAdjustment int    `db:"chip_adjustment"`
	FinalTotal     int    `db:"final_total"`
}

type selectionTableModel struct {
	ParticipantID string    `db:"participant_id"`
	Gameweek      int       `db:"gameweek"`
	CaptainID     string    `db:"captain_id"`
	ViceCaptainID string    `db:"vice_captain_id"`
	BenchID       string    `db:"bench_id"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type gameweekTableModel struct {
	Number     int       `db:"number"`
	DeadlineAt time.Time `db:"deadline_at"`
}
