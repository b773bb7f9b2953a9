package chip

import "context"

type Repository interface {
	GetByID(ctx context.Context, chipID string) (Chip, bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Chip, error)
	Create(ctx context.Context, c Chip) error

	// MarkConsumed stores the consumed chip and its effects atomically, only
	// if the stored chip is still unused. A lost race yields ErrAlreadyUsed.
	MarkConsumed(ctx context.Context, c Chip, effects []Effect) error

	ListEffectsByGameweek(ctx context.Context, gameweek int) ([]Effect, error)
}
