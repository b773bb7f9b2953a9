package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-draft/internal/domain/chip"
	qb "github.com/riskibarqy/fantasy-draft/internal/platform/querybuilder"
)

type ChipRepository struct {
	db *sqlx.DB
}

var chipSelectColumns = []string{
	"id",
	"owner_id",
	"kind",
	"start_gameweek",
	"end_gameweek",
	"used",
	"target_kind",
	"target_id",
	"consumed_at",
	"consumed_gameweek",
	"created_at",
}

var chipEffectSelectColumns = []string{
	"chip_id",
	"chip_kind",
	"gameweek",
	"participant_id",
	"source_participant_id",
	"target_participant_id",
	"target_player_id",
	"role",
	"consumed_at",
}

func NewChipRepository(db *sqlx.DB) *ChipRepository {
	return &ChipRepository{db: db}
}

func (r *ChipRepository) GetByID(ctx context.Context, chipID string) (chip.Chip, bool, error) {
	query, args, err := qb.Select(chipSelectColumns...).From("chips").
		Where(qb.Eq("id", chipID)).
		ToSQL()
	if err != nil {
		return chip.Chip{}, false, fmt.Errorf("build get chip query: %w", err)
	}

	var row chipTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return chip.Chip{}, false, nil
		}
		return chip.Chip{}, false, fmt.Errorf("get chip: %w", err)
	}

	c, err := chipFromRow(row)
	if err != nil {
		return chip.Chip{}, false, err
	}
	return c, true, nil
}

func (r *ChipRepository) ListByOwner(ctx context.Context, ownerID string) ([]chip.Chip, error) {
	query, args, err := qb.Select(chipSelectColumns...).From("chips").
		Where(qb.Eq("owner_id", ownerID)).
		OrderBy("start_gameweek", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list chips by owner query: %w", err)
	}

	var rows []chipTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list chips by owner: %w", err)
	}

	out := make([]chip.Chip, 0, len(rows))
	for _, row := range rows {
		c, err := chipFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *ChipRepository) Create(ctx context.Context, c chip.Chip) error {
	query, args, err := sqlx.Named(`
INSERT INTO chips (id, owner_id, kind, start_gameweek, end_gameweek, used, target_kind, target_id, created_at)
VALUES (:id, :owner_id, :kind, :start_gameweek, :end_gameweek, FALSE, :target_kind, '', :created_at)`, map[string]any{
		"id":             c.ID,
		"owner_id":       c.OwnerID,
		"kind":           string(c.Kind),
		"start_gameweek": c.StartGameweek,
		"end_gameweek":   c.EndGameweek,
		"target_kind":    string(chip.TargetNone),
		"created_at":     c.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("bind insert chip query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("chip %s already exists", c.ID)
		}
		return fmt.Errorf("insert chip: %w", err)
	}
	return nil
}

func (r *ChipRepository) MarkConsumed(ctx context.Context, c chip.Chip, effects []chip.Effect) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx consume chip: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var consumedAt time.Time
	if c.ConsumedAt != nil {
		consumedAt = c.ConsumedAt.UTC()
	}
	query, args, err := qb.Update("chips").
		Set("used", true).
		Set("target_kind", string(c.Target.Kind())).
		Set("target_id", c.Target.ID()).
		Set("consumed_at", consumedAt).
		Set("consumed_gameweek", c.ConsumedGameweek).
		Where(
			qb.Eq("id", c.ID),
			qb.Eq("used", false),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build consume chip query: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("consume chip: %w", err)
	}
	consumed, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !consumed {
		return chip.ErrAlreadyUsed
	}

	for _, e := range effects {
		effectQuery, effectArgs, err := sqlx.Named(`
INSERT INTO chip_effects (chip_id, chip_kind, gameweek, participant_id, source_participant_id, target_participant_id, target_player_id, role, consumed_at)
VALUES (:chip_id, :chip_kind, :gameweek, :participant_id, :source_participant_id, :target_participant_id, :target_player_id, :role, :consumed_at)`, map[string]any{
			"chip_id":               e.ChipID,
			"chip_kind":             string(e.ChipKind),
			"gameweek":              e.Gameweek,
			"participant_id":        e.ParticipantID,
			"source_participant_id": e.SourceParticipantID,
			"target_participant_id": e.TargetParticipantID,
			"target_player_id":      e.TargetPlayerID,
			"role":                  string(e.Role),
			"consumed_at":           e.ConsumedAt.UTC(),
		})
		if err != nil {
			return fmt.Errorf("bind insert chip effect query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(effectQuery), effectArgs...); err != nil {
			return fmt.Errorf("insert chip effect: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit consume chip tx: %w", err)
	}
	return nil
}

func (r *ChipRepository) ListEffectsByGameweek(ctx context.Context, gameweek int) ([]chip.Effect, error) {
	query, args, err := qb.Select(chipEffectSelectColumns...).From("chip_effects").
		Where(qb.Eq("gameweek", gameweek)).
		OrderBy("consumed_at", "chip_id", "role").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list chip effects query: %w", err)
	}

	var rows []chipEffectTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list chip effects: %w", err)
	}

	out := make([]chip.Effect, 0, len(rows))
	for _, row := range rows {
		out = append(out, chip.Effect{
			ChipID:              row.ChipID,
			ChipKind:            chip.Kind(row.ChipKind),
			Gameweek:            row.Gameweek,
			ParticipantID:       row.ParticipantID,
			SourceParticipantID: row.SourceParticipantID,
			TargetParticipantID: row.TargetParticipantID,
			TargetPlayerID:      row.TargetPlayerID,
			Role:                chip.Role(row.Role),
			ConsumedAt:          row.ConsumedAt,
		})
	}
	chip.SortEffects(out)
	return out, nil
}

func chipFromRow(row chipTableModel) (chip.Chip, error) {
	target, err := chip.TargetFrom(chip.TargetKind(row.TargetKind), row.TargetID)
	if err != nil {
		return chip.Chip{}, fmt.Errorf("decode chip %s target: %w", row.ID, err)
	}
	return chip.Chip{
		ID:               row.ID,
		OwnerID:          row.OwnerID,
		Kind:             chip.Kind(row.Kind),
		StartGameweek:    row.StartGameweek,
		EndGameweek:      row.EndGameweek,
		Used:             row.Used,
		Target:           target,
		ConsumedAt:       row.ConsumedAt,
		ConsumedGameweek: row.ConsumedGameweek,
		CreatedAt:        row.CreatedAt,
	}, nil
}
