package memory

import (
	"context"

	"github.com/riskibarqy/fantasy-draft/internal/domain/participant"
)

type ParticipantRepository struct {
	store *Store
}

func NewParticipantRepository(store *Store) *ParticipantRepository {
	return &ParticipantRepository{store: store}
}

func (r *ParticipantRepository) GetByID(_ context.Context, participantID string) (participant.Participant, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.participants[participantID]
	return p, ok, nil
}

func (r *ParticipantRepository) ListByIDs(_ context.Context, participantIDs []string) ([]participant.Participant, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]participant.Participant, 0, len(participantIDs))
	for _, id := range participantIDs {
		if p, ok := r.store.participants[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
