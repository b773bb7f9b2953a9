package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-draft/internal/domain/participant"
)

// requireAdmin loads the actor and fails unless it is an active admin.
// A missing actor is unauthorized; any other actor is forbidden.
func requireAdmin(ctx context.Context, repo participant.Repository, actorID string) (participant.Participant, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return participant.Participant{}, fmt.Errorf("%w: actor is required", ErrUnauthorized)
	}

	actor, exists, err := repo.GetByID(ctx, actorID)
	if err != nil {
		return participant.Participant{}, fmt.Errorf("get actor: %w", err)
	}
	if !exists || !actor.IsActive || !actor.IsAdmin {
		return participant.Participant{}, fmt.Errorf("%w: participant %s is not an admin", ErrForbidden, actorID)
	}
	return actor, nil
}
