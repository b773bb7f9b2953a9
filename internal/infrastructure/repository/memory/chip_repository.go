package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/fantasy-draft/internal/domain/chip"
)

type ChipRepository struct {
	store *Store
}

func NewChipRepository(store *Store) *ChipRepository {
	return &ChipRepository{store: store}
}

func (r *ChipRepository) GetByID(_ context.Context, chipID string) (chip.Chip, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.chips[chipID]
	return c, ok, nil
}

func (r *ChipRepository) ListByOwner(_ context.Context, ownerID string) ([]chip.Chip, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]chip.Chip, 0)
	for _, c := range r.store.chips {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartGameweek != out[j].StartGameweek {
			return out[i].StartGameweek < out[j].StartGameweek
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ChipRepository) Create(_ context.Context, c chip.Chip) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.chips[c.ID]; ok {
		return fmt.Errorf("chip %s already exists", c.ID)
	}
	r.store.chips[c.ID] = c
	return nil
}

func (r *ChipRepository) MarkConsumed(ctx context.Context, c chip.Chip, effects []chip.Effect) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	current, ok := r.store.chips[c.ID]
	if !ok {
		return fmt.Errorf("chip %s not found", c.ID)
	}
	if current.Used {
		return chip.ErrAlreadyUsed
	}

	r.store.chips[c.ID] = c
	r.store.effects = append(r.store.effects, effects...)
	return nil
}

func (r *ChipRepository) ListEffectsByGameweek(_ context.Context, gameweek int) ([]chip.Effect, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]chip.Effect, 0)
	for _, e := range r.store.effects {
		if e.Gameweek == gameweek {
			out = append(out, e)
		}
	}
	chip.SortEffects(out)
	return out, nil
}
