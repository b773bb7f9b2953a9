package player

import "context"

// Repository describes player persistence needs from use cases.
// Availability is written only by the draft repository as part of an allocation commit.
type Repository interface {
	List(ctx context.Context) ([]Player, error)
	ListAvailable(ctx context.Context) ([]Player, error)
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	CountAvailable(ctx context.Context) (int, error)
}
