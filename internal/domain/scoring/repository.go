package scoring

import "context"

type ScoreRepository interface {
	// ReplaceGameweek swaps every stored row of gameweek for scores in one
	// atomic unit, serialized per gameweek.
	ReplaceGameweek(ctx context.Context, gameweek int, scores []GameweekScore) error
	ListByGameweek(ctx context.Context, gameweek int) ([]GameweekScore, error)
	ListByParticipant(ctx context.Context, participantID string) ([]GameweekScore, error)
	ListAll(ctx context.Context) ([]GameweekScore, error)
}

type SelectionRepository interface {
	Upsert(ctx context.Context, selection Selection) error
	// GetEffective returns the latest selection with Gameweek <= gameweek.
	GetEffective(ctx context.Context, participantID string, gameweek int) (Selection, bool, error)
}

type CalendarRepository interface {
	GetGameweek(ctx context.Context, number int) (Gameweek, bool, error)
	List(ctx context.Context) ([]Gameweek, error)
}
