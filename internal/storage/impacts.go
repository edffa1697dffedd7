package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vantage-intel/vantage/internal/model"
)

const counterImpacts = "impact_updates"

// InsertImpactUpdate persists a new impact update under the next counter id.
// The UNIQUE constraint on executed_decision_id enforces the at-most-one
// invariant at the storage layer as well as in the simulator.
func (db *DB) InsertImpactUpdate(ctx context.Context, upd model.ImpactUpdate) (model.ImpactUpdate, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	expected, err := json.Marshal(upd.ExpectedOutcome)
	if err != nil {
		return model.ImpactUpdate{}, fmt.Errorf("storage: marshal expected outcome: %w", err)
	}
	actual, err := json.Marshal(upd.ActualOutcome)
	if err != nil {
		return model.ImpactUpdate{}, fmt.Errorf("storage: marshal actual outcome: %w", err)
	}
	comparison, err := json.Marshal(upd.Comparison)
	if err != nil {
		return model.ImpactUpdate{}, fmt.Errorf("storage: marshal comparison: %w", err)
	}

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ImpactUpdate{}, fmt.Errorf("storage: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id, err := nextID(ctx, tx, counterImpacts)
	if err != nil {
		return model.ImpactUpdate{}, err
	}
	upd.ID = id

	_, err = tx.ExecContext(ctx, `
		INSERT INTO impact_updates
			(id, decision_id, executed_decision_id, generated_at, days_elapsed,
			 expected_outcome, actual_outcome, comparison, read, user_id, role)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		upd.ID, upd.DecisionID, upd.ExecutedDecisionID,
		upd.GeneratedAt.UTC().Format(time.RFC3339Nano), upd.DaysElapsed,
		string(expected), string(actual), string(comparison),
		boolToInt(upd.Read), upd.UserID, string(upd.Role),
	)
	if err != nil {
		return model.ImpactUpdate{}, fmt.Errorf("storage: insert impact update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.ImpactUpdate{}, fmt.Errorf("storage: commit: %w", err)
	}
	return upd, nil
}

// GetImpactUpdateByExecution returns the update for one executed decision,
// or ErrNotFound when none has been generated yet.
func (db *DB) GetImpactUpdateByExecution(ctx context.Context, executedDecisionID int64) (model.ImpactUpdate, error) {
	row := db.db.QueryRowContext(ctx, selectImpact+` WHERE executed_decision_id = ?`, executedDecisionID)
	upd, err := db.scanImpact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ImpactUpdate{}, ErrNotFound
	}
	if err != nil {
		return model.ImpactUpdate{}, fmt.Errorf("storage: get impact update: %w", err)
	}
	return upd, nil
}

// ListImpactUpdates returns updates newest-first with optional filters.
func (db *DB) ListImpactUpdates(ctx context.Context, userID string, role model.Role) ([]model.ImpactUpdate, error) {
	query := selectImpact
	var args []any
	var where []string
	if userID != "" {
		where = append(where, "user_id = ?")
		args = append(args, userID)
	}
	if role != "" {
		where = append(where, "role = ?")
		args = append(args, string(role))
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY generated_at DESC, id DESC"

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: list impact updates: %w", err)
	}
	defer rows.Close()

	out := []model.ImpactUpdate{}
	for rows.Next() {
		upd, err := db.scanImpact(rows)
		if err != nil {
			db.logger.Warn("storage: skipping corrupt impact update row", "error", err)
			continue
		}
		out = append(out, upd)
	}
	return out, rows.Err()
}

// MarkImpactUpdateRead sets read=true. No other field is touched: read
// acknowledgement is the only legal post-creation mutation.
func (db *DB) MarkImpactUpdateRead(ctx context.Context, id int64) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	res, err := db.db.ExecContext(ctx, `UPDATE impact_updates SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("storage: mark impact update read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const selectImpact = `SELECT id, decision_id, executed_decision_id, generated_at,
	days_elapsed, expected_outcome, actual_outcome, comparison, read, user_id, role
	FROM impact_updates`

func (db *DB) scanImpact(s scanner) (model.ImpactUpdate, error) {
	var (
		upd         model.ImpactUpdate
		generatedAt string
		expected    string
		actual      string
		comparison  string
		read        int
		role        string
	)
	err := s.Scan(&upd.ID, &upd.DecisionID, &upd.ExecutedDecisionID, &generatedAt,
		&upd.DaysElapsed, &expected, &actual, &comparison, &read, &upd.UserID, &role)
	if err != nil {
		return model.ImpactUpdate{}, err
	}
	upd.Read = read != 0
	upd.Role = model.Role(role)
	upd.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt)
	if err != nil {
		return model.ImpactUpdate{}, fmt.Errorf("parse generated_at: %w", err)
	}
	if err := json.Unmarshal([]byte(expected), &upd.ExpectedOutcome); err != nil {
		return model.ImpactUpdate{}, fmt.Errorf("decode expected outcome: %w", err)
	}
	if err := json.Unmarshal([]byte(actual), &upd.ActualOutcome); err != nil {
		return model.ImpactUpdate{}, fmt.Errorf("decode actual outcome: %w", err)
	}
	if err := json.Unmarshal([]byte(comparison), &upd.Comparison); err != nil {
		return model.ImpactUpdate{}, fmt.Errorf("decode comparison: %w", err)
	}
	return upd, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
