package scoring

import "time"

// GameweekScore is the committed result for one participant in one gameweek.
// It carries no computation timestamp so identical inputs give identical rows.
type GameweekScore struct {
	ParticipantID  string
	Gameweek       int
	RawPoints      int
	CaptainBonus   int
	ChipAdjustment int
	FinalTotal     int
}

// Selection is a captaincy and bench choice, effective from Gameweek until a
// later selection replaces it.
type Selection struct {
	ParticipantID string
	Gameweek      int
	CaptainID     string
	ViceCaptainID string
	BenchID       string
	UpdatedAt     time.Time
}

// Gameweek is a calendar entry. Squads are resolved as held at DeadlineAt.
type Gameweek struct {
	Number     int
	DeadlineAt time.Time
}

// SquadMember is a drafted player as seen by scoring.
type SquadMember struct {
	PlayerID    string
	OverallPick int
}

// Config holds scoring policy switches.
type Config struct {
	AutoSubstitute bool
}

// PlayerLine is one squad player's contribution to a breakdown.
type PlayerLine struct {
	PlayerID       string
	OverallPick    int
	Minutes        int
	Points         int
	Counted        bool
	Benched        bool
	SubstitutedIn  bool
	SubstitutedOut bool
	Captain        bool
	ViceCaptain    bool
	BonusApplied   bool
}

// Multiplier is how many times the line's points reach the base total.
func (l PlayerLine) Multiplier() int {
	switch {
	case !l.Counted:
		return 0
	case l.BonusApplied:
		return 2
	default:
		return 1
	}
}

// Breakdown is the per-player view of one participant's gameweek.
type Breakdown struct {
	ParticipantID    string
	Gameweek         int
	Selection        Selection
	DefaultSelection bool
	Players          []PlayerLine
	Score            GameweekScore
}
