package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/domain/player"
)

type DraftRepository struct {
	store *Store
}

func NewDraftRepository(store *Store) *DraftRepository {
	return &DraftRepository{store: store}
}

func (r *DraftRepository) GetState(_ context.Context, draftID string) (draft.State, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	state, ok := r.store.drafts[draftID]
	if !ok {
		return draft.State{}, false, nil
	}
	return state.Clone(), true, nil
}

func (r *DraftRepository) CreateState(_ context.Context, state draft.State) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.drafts[state.ID]; ok {
		return draft.ErrAlreadyConfigured
	}
	r.store.drafts[state.ID] = state.Clone()
	return nil
}

func (r *DraftRepository) SaveState(_ context.Context, next draft.State, expectedVersion int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.checkVersionLocked(next.ID, expectedVersion); err != nil {
		return err
	}
	r.store.drafts[next.ID] = next.Clone()
	return nil
}

func (r *DraftRepository) CommitAllocation(ctx context.Context, next draft.State, expectedVersion int64, allocation draft.Allocation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.checkVersionLocked(next.ID, expectedVersion); err != nil {
		return err
	}

	p, ok := r.store.players[allocation.PlayerID]
	if !ok || !p.Available {
		return fmt.Errorf("%w: player=%s", draft.ErrPlayerUnavailable, allocation.PlayerID)
	}
	for _, existing := range r.store.allocations {
		if existing.DraftID == allocation.DraftID && existing.PlayerID == allocation.PlayerID && existing.Live() {
			return fmt.Errorf("%w: player=%s", draft.ErrPlayerUnavailable, allocation.PlayerID)
		}
	}

	p.Available = false
	r.store.players[p.ID] = p
	r.store.allocations = append(r.store.allocations, allocation)
	r.store.drafts[next.ID] = next.Clone()
	return nil
}

func (r *DraftRepository) ReleaseAllocation(ctx context.Context, next draft.State, expectedVersion int64, allocationID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.checkVersionLocked(next.ID, expectedVersion); err != nil {
		return err
	}

	idx := -1
	for i, a := range r.store.allocations {
		if a.ID == allocationID && a.Live() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("live allocation %s not found", allocationID)
	}

	releasedAt := next.UpdatedAt
	r.store.allocations[idx].ReleasedAt = &releasedAt
	if p, ok := r.store.players[r.store.allocations[idx].PlayerID]; ok {
		p.Available = true
		r.store.players[p.ID] = p
	}
	r.store.drafts[next.ID] = next.Clone()
	return nil
}

func (r *DraftRepository) GetLiveAllocationByPlayer(_ context.Context, draftID, playerID string) (draft.Allocation, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, a := range r.store.allocations {
		if a.DraftID == draftID && a.PlayerID == playerID && a.Live() {
			return a, true, nil
		}
	}
	return draft.Allocation{}, false, nil
}

func (r *DraftRepository) ListLiveAllocations(_ context.Context, draftID string) ([]draft.Allocation, error) {
	return r.list(draftID, true), nil
}

func (r *DraftRepository) ListAllocations(_ context.Context, draftID string) ([]draft.Allocation, error) {
	return r.list(draftID, false), nil
}

func (r *DraftRepository) list(draftID string, liveOnly bool) []draft.Allocation {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]draft.Allocation, 0, len(r.store.allocations))
	for _, a := range r.store.allocations {
		if a.DraftID != draftID || (liveOnly && !a.Live()) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OverallPick < out[j].OverallPick
	})
	return out
}

func (r *DraftRepository) checkVersionLocked(draftID string, expectedVersion int64) error {
	current, ok := r.store.drafts[draftID]
	if !ok {
		return fmt.Errorf("%w: draft %s missing", draft.ErrVersionConflict, draftID)
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("%w: expected=%d current=%d", draft.ErrVersionConflict, expectedVersion, current.Version)
	}
	return nil
}

var _ player.Repository = (*PlayerRepository)(nil)
var _ draft.Repository = (*DraftRepository)(nil)
