package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	qb "github.com/riskibarqy/fantasy-draft/internal/platform/querybuilder"
)

type DraftRepository struct {
	db *sqlx.DB
}

var draftSelectColumns = []string{
	"id",
	"phase",
	"draft_order",
	"order_mode",
	"round",
	"turn_index",
	"quota",
	"pick_count",
	"version",
	"updated_at",
}

var allocationSelectColumns = []string{
	"id",
	"draft_id",
	"player_id",
	"participant_id",
	"round",
	"pick",
	"overall_pick",
	"allocated_at",
	"released_at",
}

func NewDraftRepository(db *sqlx.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

func (r *DraftRepository) GetState(ctx context.Context, draftID string) (draft.State, bool, error) {
	query, args, err := qb.Select(draftSelectColumns...).From("drafts").
		Where(qb.Eq("id", draftID)).
		ToSQL()
	if err != nil {
		return draft.State{}, false, fmt.Errorf("build get draft query: %w", err)
	}

	var row draftTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return draft.State{}, false, nil
		}
		return draft.State{}, false, fmt.Errorf("get draft: %w", err)
	}

	const countsQuery = `
SELECT participant_id, COUNT(1) AS count
FROM draft_allocations
WHERE draft_id = $1
  AND released_at IS NULL
GROUP BY participant_id`

	var counts []squadCountRow
	if err := r.db.SelectContext(ctx, &counts, countsQuery, draftID); err != nil {
		return draft.State{}, false, fmt.Errorf("count live allocations: %w", err)
	}

	return stateFromRow(row, counts), true, nil
}

func (r *DraftRepository) CreateState(ctx context.Context, state draft.State) error {
	query, args, err := sqlx.Named(`
INSERT INTO drafts (id, phase, draft_order, order_mode, round, turn_index, quota, pick_count, version, updated_at)
VALUES (:id, :phase, :draft_order, :order_mode, :round, :turn_index, :quota, :pick_count, :version, :updated_at)
ON CONFLICT (id) DO NOTHING`, map[string]any{
		"id":          state.ID,
		"phase":       string(state.Phase),
		"draft_order": pq.Array(state.Order),
		"order_mode":  string(state.OrderMode),
		"round":       state.Round,
		"turn_index":  state.TurnIndex,
		"quota":       state.Quota,
		"pick_count":  state.PickCount,
		"version":     state.Version,
		"updated_at":  state.UpdatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("bind create draft query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("create draft: %w", err)
	}
	created, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !created {
		return draft.ErrAlreadyConfigured
	}
	return nil
}

func (r *DraftRepository) SaveState(ctx context.Context, next draft.State, expectedVersion int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save draft: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := saveStateTx(ctx, tx, next, expectedVersion); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save draft tx: %w", err)
	}
	return nil
}

func (r *DraftRepository) CommitAllocation(ctx context.Context, next draft.State, expectedVersion int64, allocation draft.Allocation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx commit allocation: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := saveStateTx(ctx, tx, next, expectedVersion); err != nil {
		return err
	}

	flipQuery, flipArgs, err := qb.Update("players").
		Set("available", false).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", allocation.PlayerID),
			qb.Eq("available", true),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build flip player availability query: %w", err)
	}
	res, err := tx.ExecContext(ctx, flipQuery, flipArgs...)
	if err != nil {
		return fmt.Errorf("flip player availability: %w", err)
	}
	flipped, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !flipped {
		return fmt.Errorf("%w: player=%s", draft.ErrPlayerUnavailable, allocation.PlayerID)
	}

	insertQuery, insertArgs, err := sqlx.Named(`
INSERT INTO draft_allocations (id, draft_id, player_id, participant_id, round, pick, overall_pick, allocated_at)
VALUES (:id, :draft_id, :player_id, :participant_id, :round, :pick, :overall_pick, :allocated_at)`, map[string]any{
		"id":             allocation.ID,
		"draft_id":       allocation.DraftID,
		"player_id":      allocation.PlayerID,
		"participant_id": allocation.ParticipantID,
		"round":          allocation.Round,
		"pick":           allocation.Pick,
		"overall_pick":   allocation.OverallPick,
		"allocated_at":   allocation.AllocatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("bind insert allocation query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(insertQuery), insertArgs...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: player=%s", draft.ErrPlayerUnavailable, allocation.PlayerID)
		}
		return fmt.Errorf("insert allocation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit allocation tx: %w", err)
	}
	return nil
}

func (r *DraftRepository) ReleaseAllocation(ctx context.Context, next draft.State, expectedVersion int64, allocationID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx release allocation: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := saveStateTx(ctx, tx, next, expectedVersion); err != nil {
		return err
	}

	releaseQuery, releaseArgs, err := qb.Update("draft_allocations").
		Set("released_at", next.UpdatedAt.UTC()).
		Where(
			qb.Eq("id", allocationID),
			qb.IsNull("released_at"),
		).
		Returning("player_id").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build release allocation query: %w", err)
	}
	var playerID string
	if err := tx.GetContext(ctx, &playerID, releaseQuery, releaseArgs...); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("live allocation %s not found", allocationID)
		}
		return fmt.Errorf("release allocation: %w", err)
	}

	restoreQuery, restoreArgs, err := qb.Update("players").
		Set("available", true).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", playerID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build restore player availability query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, restoreQuery, restoreArgs...); err != nil {
		return fmt.Errorf("restore player availability: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit release allocation tx: %w", err)
	}
	return nil
}

func (r *DraftRepository) GetLiveAllocationByPlayer(ctx context.Context, draftID, playerID string) (draft.Allocation, bool, error) {
	query, args, err := qb.Select(allocationSelectColumns...).From("draft_allocations").
		Where(
			qb.Eq("draft_id", draftID),
			qb.Eq("player_id", playerID),
			qb.IsNull("released_at"),
		).
		ToSQL()
	if err != nil {
		return draft.Allocation{}, false, fmt.Errorf("build get live allocation query: %w", err)
	}

	var row allocationTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return draft.Allocation{}, false, nil
		}
		return draft.Allocation{}, false, fmt.Errorf("get live allocation: %w", err)
	}
	return allocationFromRow(row), true, nil
}

func (r *DraftRepository) ListLiveAllocations(ctx context.Context, draftID string) ([]draft.Allocation, error) {
	return r.listAllocations(ctx, "list live allocations", qb.Eq("draft_id", draftID), qb.IsNull("released_at"))
}

func (r *DraftRepository) ListAllocations(ctx context.Context, draftID string) ([]draft.Allocation, error) {
	return r.listAllocations(ctx, "list allocations", qb.Eq("draft_id", draftID))
}

func (r *DraftRepository) listAllocations(ctx context.Context, op string, conditions ...qb.Condition) ([]draft.Allocation, error) {
	query, args, err := qb.Select(allocationSelectColumns...).From("draft_allocations").
		Where(conditions...).
		OrderBy("overall_pick", "allocated_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []allocationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]draft.Allocation, 0, len(rows))
	for _, row := range rows {
		out = append(out, allocationFromRow(row))
	}
	return out, nil
}

// saveStateTx writes next only while the stored version still equals
// expectedVersion.
func saveStateTx(ctx context.Context, tx *sqlx.Tx, next draft.State, expectedVersion int64) error {
	query, args, err := qb.Update("drafts").
		Set("phase", string(next.Phase)).
		Set("draft_order", pq.Array(next.Order)).
		Set("order_mode", string(next.OrderMode)).
		Set("round", next.Round).
		Set("turn_index", next.TurnIndex).
		Set("quota", next.Quota).
		Set("pick_count", next.PickCount).
		Set("version", next.Version).
		Set("updated_at", next.UpdatedAt.UTC()).
		Where(
			qb.Eq("id", next.ID),
			qb.Eq("version", expectedVersion),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build save draft query: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	saved, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !saved {
		return fmt.Errorf("%w: draft=%s expected=%d", draft.ErrVersionConflict, next.ID, expectedVersion)
	}
	return nil
}

func stateFromRow(row draftTableModel, counts []squadCountRow) draft.State {
	squadCounts := make(map[string]int, len(row.Order))
	for _, participantID := range row.Order {
		squadCounts[participantID] = 0
	}
	for _, c := range counts {
		squadCounts[c.ParticipantID] = c.Count
	}

	return draft.State{
		ID:          row.ID,
		Phase:       draft.Phase(row.Phase),
		Order:       append([]string(nil), row.Order...),
		OrderMode:   draft.OrderMode(row.OrderMode),
		Round:       row.Round,
		TurnIndex:   row.TurnIndex,
		Quota:       row.Quota,
		PickCount:   row.PickCount,
		SquadCounts: squadCounts,
		Version:     row.Version,
		UpdatedAt:   row.UpdatedAt,
	}
}

func allocationFromRow(row allocationTableModel) draft.Allocation {
	return draft.Allocation{
		ID:            row.ID,
		DraftID:       row.DraftID,
		PlayerID:      row.PlayerID,
		ParticipantID: row.ParticipantID,
		Round:         row.Round,
		Pick:          row.Pick,
		OverallPick:   row.OverallPick,
		AllocatedAt:   row.AllocatedAt,
		ReleasedAt:    row.ReleasedAt,
	}
}
