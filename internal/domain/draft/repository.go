package draft

import "context"

// Repository persists the draft state and its allocations. Every write is
// conditional on expectedVersion and returns ErrVersionConflict when the
// stored version differs.
type Repository interface {
	GetState(ctx context.Context, draftID string) (State, bool, error)
	CreateState(ctx context.Context, state State) error
	SaveState(ctx context.Context, next State, expectedVersion int64) error

	// CommitAllocation inserts the allocation, flips the player unavailable
	// and stores next in one atomic unit. A player that is no longer
	// available yields ErrPlayerUnavailable.
	CommitAllocation(ctx context.Context, next State, expectedVersion int64, allocation Allocation) error

	// ReleaseAllocation soft-releases the allocation, restores player
	// availability and stores next in one atomic unit.
	ReleaseAllocation(ctx context.Context, next State, expectedVersion int64, allocationID string) error

	GetLiveAllocationByPlayer(ctx context.Context, draftID, playerID string) (Allocation, bool, error)
	ListLiveAllocations(ctx context.Context, draftID string) ([]Allocation, error)
	ListAllocations(ctx context.Context, draftID string) ([]Allocation, error)
}
