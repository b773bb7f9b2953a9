package participant

import "context"

type Repository interface {
	GetByID(ctx context.Context, participantID string) (Participant, bool, error)
	ListByIDs(ctx context.Context, participantIDs []string) ([]Participant, error)
}
