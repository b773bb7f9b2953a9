package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/fantasy-draft/internal/domain/scoring"
)

type ScoreRepository struct {
	store *Store
}

func NewScoreRepository(store *Store) *ScoreRepository {
	return &ScoreRepository{store: store}
}

func (r *ScoreRepository) ReplaceGameweek(ctx context.Context, gameweek int, scores []scoring.GameweekScore) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make(map[string]scoring.GameweekScore, len(scores))
	for _, s := range scores {
		rows[s.ParticipantID] = s
	}
	r.store.scores[gameweek] = rows
	return nil
}

func (r *ScoreRepository) ListByGameweek(_ context.Context, gameweek int) ([]scoring.GameweekScore, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]scoring.GameweekScore, 0, len(r.store.scores[gameweek]))
	for _, s := range r.store.scores[gameweek] {
		out = append(out, s)
	}
	sortScores(out)
	return out, nil
}

func (r *ScoreRepository) ListByParticipant(_ context.Context, participantID string) ([]scoring.GameweekScore, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]scoring.GameweekScore, 0)
	for _, rows := range r.store.scores {
		if s, ok := rows[participantID]; ok {
			out = append(out, s)
		}
	}
	sortScores(out)
	return out, nil
}

func (r *ScoreRepository) ListAll(_ context.Context) ([]scoring.GameweekScore, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]scoring.GameweekScore, 0)
	for _, rows := range r.store.scores {
		for _, s := range rows {
			out = append(out, s)
		}
	}
	sortScores(out)
	return out, nil
}

func sortScores(rows []scoring.GameweekScore) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Gameweek != rows[j].Gameweek {
			return rows[i].Gameweek < rows[j].Gameweek
		}
		return rows[i].ParticipantID < rows[j].ParticipantID
	})
}

type SelectionRepository struct {
	store *Store
}

func NewSelectionRepository(store *Store) *SelectionRepository {
	return &SelectionRepository{store: store}
}

func (r *SelectionRepository) Upsert(_ context.Context, selection scoring.Selection) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows := r.store.selections[selection.ParticipantID]
	for i := range rows {
		if rows[i].Gameweek == selection.Gameweek {
			rows[i] = selection
			return nil
		}
	}
	rows = append(rows, selection)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Gameweek < rows[j].Gameweek })
	r.store.selections[selection.ParticipantID] = rows
	return nil
}

func (r *SelectionRepository) GetEffective(_ context.Context, participantID string, gameweek int) (scoring.Selection, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var (
		found bool
		out   scoring.Selection
	)
	for _, s := range r.store.selections[participantID] {
		if s.Gameweek > gameweek {
			break
		}
		out = s
		found = true
	}
	return out, found, nil
}

type CalendarRepository struct {
	store *Store
}

func NewCalendarRepository(store *Store) *CalendarRepository {
	return &CalendarRepository{store: store}
}

func (r *CalendarRepository) GetGameweek(_ context.Context, number int) (scoring.Gameweek, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	g, ok := r.store.calendar[number]
	return g, ok, nil
}

func (r *CalendarRepository) List(_ context.Context) ([]scoring.Gameweek, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]scoring.Gameweek, 0, len(r.store.calendar))
	for _, g := range r.store.calendar {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}
