package memory

import (
	"context"

	"github.com/riskibarqy/fantasy-draft/internal/domain/player"
)

type PlayerRepository struct {
	store *Store
}

func NewPlayerRepository(store *Store) *PlayerRepository {
	return &PlayerRepository{store: store}
}

func (r *PlayerRepository) List(_ context.Context) ([]player.Player, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]player.Player, 0, len(r.store.playerOrder))
	for _, id := range r.store.playerOrder {
		out = append(out, r.store.players[id])
	}
	return out, nil
}

func (r *PlayerRepository) ListAvailable(_ context.Context) ([]player.Player, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]player.Player, 0, len(r.store.playerOrder))
	for _, id := range r.store.playerOrder {
		if p := r.store.players[id]; p.Available {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID string) (player.Player, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.players[playerID]
	return p, ok, nil
}

func (r *PlayerRepository) CountAvailable(_ context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.availableLocked(), nil
}
