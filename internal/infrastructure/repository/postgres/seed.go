package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the local catalog into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, calendarStart time.Time, weeks int) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM players WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count players for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, p := range memory.SeedParticipants() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO participants (id, name, is_active, is_admin)
VALUES (:id, :name, :is_active, :is_admin)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":        p.ID,
			"name":      p.Name,
			"is_active": p.IsActive,
			"is_admin":  p.IsAdmin,
		})
		if err != nil {
			return fmt.Errorf("bind seed participant %s query: %w", p.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed participant %s: %w", p.ID, err)
		}
	}

	for _, p := range memory.SeedPlayers() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO players (id, name, position, price, available)
VALUES (:id, :name, :position, :price, TRUE)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":       p.ID,
			"name":     p.Name,
			"position": string(p.Position),
			"price":    p.Price,
		})
		if err != nil {
			return fmt.Errorf("bind seed player %s query: %w", p.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed player %s: %w", p.ID, err)
		}
	}

	for _, gw := range memory.SeedCalendar(calendarStart, weeks) {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO gameweeks (number, deadline_at)
VALUES (:number, :deadline_at)
ON CONFLICT (number) DO NOTHING`, map[string]any{
			"number":      gw.Number,
			"deadline_at": gw.DeadlineAt.UTC(),
		})
		if err != nil {
			return fmt.Errorf("bind seed gameweek %d query: %w", gw.Number, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed gameweek %d: %w", gw.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
