package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/fantasy-draft/internal/domain/scoring"
	qb "github.com/riskibarqy/fantasy-draft/internal/platform/querybuilder"
)

// scoreLockNamespace is the first key of the per-gameweek advisory lock.
const scoreLockNamespace = 7301

type ScoreRepository struct {
	db *sqlx.DB
}

var scoreSelectColumns = []string{
	"participant_id",
	"gameweek",
	"raw_points",
	"captain_bonus",
	"chip_adjustment",
	"final_total",
}

func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func (r *ScoreRepository) ReplaceGameweek(ctx context.Context, gameweek int, scores []scoring.GameweekScore) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace gameweek scores: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, scoreLockNamespace, gameweek); err != nil {
		return fmt.Errorf("lock gameweek %d scores: %w", gameweek, err)
	}

	participantIDs := make([]string, 0, len(scores))
	for _, s := range scores {
		participantIDs = append(participantIDs, s.ParticipantID)
	}
	const pruneQuery = `
DELETE FROM gameweek_scores
WHERE gameweek = $1
  AND NOT (participant_id = ANY($2))`
	if _, err := tx.ExecContext(ctx, pruneQuery, gameweek, pq.Array(participantIDs)); err != nil {
		return fmt.Errorf("prune gameweek %d scores: %w", gameweek, err)
	}

	for _, s := range scores {
		if s.Gameweek != gameweek {
			return fmt.Errorf("score for participant %s has gameweek %d, want %d", s.ParticipantID, s.Gameweek, gameweek)
		}
		query, args, err := sqlx.Named(`
INSERT INTO gameweek_scores (participant_id, gameweek, raw_points, captain_bonus, chip_adjustment, final_total, computed_at)
VALUES (:participant_id, :gameweek, :raw_points, :captain_bonus, :chip_adjustment, :final_total, NOW())
ON CONFLICT (gameweek, participant_id)
DO UPDATE SET
    raw_points = EXCLUDED.raw_points,
    captain_bonus = EXCLUDED.captain_bonus,
    chip_adjustment = EXCLUDED.chip_adjustment,
    final_total = EXCLUDED.final_total,
    computed_at = EXCLUDED.computed_at`, map[string]any{
			"participant_id":  s.ParticipantID,
			"gameweek":        s.Gameweek,
			"raw_points":      s.RawPoints,
			"captain_bonus":   s.CaptainBonus,
			"chip_adjustment": s.ChipAdjustment,
			"final_total":     s.FinalTotal,
		})
		if err != nil {
			return fmt.Errorf("bind upsert gameweek score query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("upsert gameweek score participant=%s: %w", s.ParticipantID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace gameweek scores tx: %w", err)
	}
	return nil
}

func (r *ScoreRepository) ListByGameweek(ctx context.Context, gameweek int) ([]scoring.GameweekScore, error) {
	return r.list(ctx, "list scores by gameweek", []string{"participant_id"}, qb.Eq("gameweek", gameweek))
}

func (r *ScoreRepository) ListByParticipant(ctx context.Context, participantID string) ([]scoring.GameweekScore, error) {
	return r.list(ctx, "list scores by participant", []string{"gameweek"}, qb.Eq("participant_id", participantID))
}

func (r *ScoreRepository) ListAll(ctx context.Context) ([]scoring.GameweekScore, error) {
	return r.list(ctx, "list scores", []string{"gameweek", "participant_id"})
}

func (r *ScoreRepository) list(ctx context.Context, op string, orderBy []string, conditions ...qb.Condition) ([]scoring.GameweekScore, error) {
	query, args, err := qb.Select(scoreSelectColumns...).From("gameweek_scores").
		Where(conditions...).
		OrderBy(orderBy...).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []gameweekScoreTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]scoring.GameweekScore, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoring.GameweekScore{
			ParticipantID:  row.ParticipantID,
			Gameweek:       row.Gameweek,
			RawPoints:      row.RawPoints,
			CaptainBonus:   row.CaptainBonus,
			ChipAdjustment: row.ChipAdjustment,
			FinalTotal:     row.FinalTotal,
		})
	}
	return out, nil
}

type SelectionRepository struct {
	db *sqlx.DB
}

func NewSelectionRepository(db *sqlx.DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

func (r *SelectionRepository) Upsert(ctx context.Context, selection scoring.Selection) error {
	query, args, err := sqlx.Named(`
INSERT INTO selections (participant_id, gameweek, captain_id, vice_captain_id, bench_id, updated_at)
VALUES (:participant_id, :gameweek, :captain_id, :vice_captain_id, :bench_id, :updated_at)
ON CONFLICT (participant_id, gameweek)
DO UPDATE SET
    captain_id = EXCLUDED.captain_id,
    vice_captain_id = EXCLUDED.vice_captain_id,
    bench_id = EXCLUDED.bench_id,
    updated_at = EXCLUDED.updated_at`, map[string]any{
		"participant_id":  selection.ParticipantID,
		"gameweek":        selection.Gameweek,
		"captain_id":      selection.CaptainID,
		"vice_captain_id": selection.ViceCaptainID,
		"bench_id":        selection.BenchID,
		"updated_at":      selection.UpdatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("bind upsert selection query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("upsert selection: %w", err)
	}
	return nil
}

func (r *SelectionRepository) GetEffective(ctx context.Context, participantID string, gameweek int) (scoring.Selection, bool, error) {
	query, args, err := qb.Select("participant_id", "gameweek", "captain_id", "vice_captain_id", "bench_id", "updated_at").
		From("selections").
		Where(
			qb.Eq("participant_id", participantID),
			qb.Expr("gameweek <= ?", gameweek),
		).
		OrderBy("gameweek DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return scoring.Selection{}, false, fmt.Errorf("build get effective selection query: %w", err)
	}

	var row selectionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scoring.Selection{}, false, nil
		}
		return scoring.Selection{}, false, fmt.Errorf("get effective selection: %w", err)
	}

	return scoring.Selection{
		ParticipantID: row.ParticipantID,
		Gameweek:      row.Gameweek,
		CaptainID:     row.CaptainID,
		ViceCaptainID: row.ViceCaptainID,
		BenchID:       row.BenchID,
		UpdatedAt:     row.UpdatedAt,
	}, true, nil
}

type CalendarRepository struct {
	db *sqlx.DB
}

func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

func (r *CalendarRepository) GetGameweek(ctx context.Context, number int) (scoring.Gameweek, bool, error) {
	query, args, err := qb.Select("number", "deadline_at").From("gameweeks").
		Where(qb.Eq("number", number)).
		ToSQL()
	if err != nil {
		return scoring.Gameweek{}, false, fmt.Errorf("build get gameweek query: %w", err)
	}

	var row gameweekTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scoring.Gameweek{}, false, nil
		}
		return scoring.Gameweek{}, false, fmt.Errorf("get gameweek: %w", err)
	}
	return scoring.Gameweek{Number: row.Number, DeadlineAt: row.DeadlineAt}, true, nil
}

func (r *CalendarRepository) List(ctx context.Context) ([]scoring.Gameweek, error) {
	query, args, err := qb.Select("number", "deadline_at").From("gameweeks").
		OrderBy("number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list gameweeks query: %w", err)
	}

	var rows []gameweekTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list gameweeks: %w", err)
	}

	out := make([]scoring.Gameweek, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoring.Gameweek{Number: row.Number, DeadlineAt: row.DeadlineAt})
	}
	return out, nil
}
