package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-draft/internal/domain/participant"
	qb "github.com/riskibarqy/fantasy-draft/internal/platform/querybuilder"
)

type ParticipantRepository struct {
	db *sqlx.DB
}

var participantSelectColumns = []string{
	"id",
	"name",
	"is_active",
	"is_admin",
	"created_at",
	"updated_at",
	"deleted_at",
}

func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) GetByID(ctx context.Context, participantID string) (participant.Participant, bool, error) {
	query, args, err := qb.Select(participantSelectColumns...).From("participants").
		Where(
			qb.Eq("id", participantID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return participant.Participant{}, false, fmt.Errorf("build get participant query: %w", err)
	}

	var row participantTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return participant.Participant{}, false, nil
		}
		return participant.Participant{}, false, fmt.Errorf("get participant: %w", err)
	}
	return participantFromRow(row), true, nil
}

func (r *ParticipantRepository) ListByIDs(ctx context.Context, participantIDs []string) ([]participant.Participant, error) {
	if len(participantIDs) == 0 {
		return []participant.Participant{}, nil
	}

	query, args, err := qb.Select(participantSelectColumns...).From("participants").
		Where(
			qb.In("id", participantIDs),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list participants by ids query: %w", err)
	}

	var rows []participantTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list participants by ids: %w", err)
	}

	out := make([]participant.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, participantFromRow(row))
	}
	return out, nil
}

func participantFromRow(row participantTableModel) participant.Participant {
	return participant.Participant{
		ID:       row.ID,
		Name:     row.Name,
		IsActive: row.IsActive,
		IsAdmin:  row.IsAdmin,
	}
}
