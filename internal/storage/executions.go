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

const counterExecutions = "executed_decisions"

// InsertExecutedDecision assigns the next id from the executions counter
// and persists the record. The counter bump and the insert are one
// transaction, so ids are gapless and never duplicated.
func (db *DB) InsertExecutedDecision(ctx context.Context, rec model.ExecutedDecision) (model.ExecutedDecision, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	outcome, err := json.Marshal(rec.ExpectedOutcome)
	if err != nil {
		return model.ExecutedDecision{}, fmt.Errorf("storage: marshal expected outcome: %w", err)
	}

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ExecutedDecision{}, fmt.Errorf("storage: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id, err := nextID(ctx, tx, counterExecutions)
	if err != nil {
		return model.ExecutedDecision{}, err
	}
	rec.ID = id

	_, err = tx.ExecContext(ctx, `
		INSERT INTO executed_decisions
			(id, decision_id, story_id, user_id, role, executed_at,
			 selected_strategy, expected_outcome, agent_id, status, category, title)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.DecisionID, rec.StoryID, rec.UserID, string(rec.Role),
		rec.ExecutedAt.UTC().Format(time.RFC3339Nano),
		rec.SelectedStrategy, string(outcome), rec.AgentID, string(rec.Status),
		rec.Category, rec.Title,
	)
	if err != nil {
		return model.ExecutedDecision{}, fmt.Errorf("storage: insert executed decision: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.ExecutedDecision{}, fmt.Errorf("storage: commit: %w", err)
	}
	return rec, nil
}

// ListExecutedDecisions returns executions newest-first, optionally
// filtered by user and role. Ordering is applied on every read rather than
// trusting insertion order.
func (db *DB) ListExecutedDecisions(ctx context.Context, userID string, role model.Role) ([]model.ExecutedDecision, error) {
	query := `SELECT id, decision_id, story_id, user_id, role, executed_at,
		selected_strategy, expected_outcome, agent_id, status, category, title
		FROM executed_decisions`
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
	query += " ORDER BY executed_at DESC, id DESC"

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: list executed decisions: %w", err)
	}
	defer rows.Close()

	out := []model.ExecutedDecision{}
	for rows.Next() {
		rec, err := db.scanExecution(rows)
		if err != nil {
			// Corrupt rows degrade to absence instead of failing the read.
			db.logger.Warn("storage: skipping corrupt executed decision row", "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetExecutedDecision returns one execution by its id.
func (db *DB) GetExecutedDecision(ctx context.Context, id int64) (model.ExecutedDecision, error) {
	return db.getExecutionWhere(ctx, "id = ?", id)
}

// FindExecutedByDecisionID returns the execution recorded for a decision id,
// or ErrNotFound.
func (db *DB) FindExecutedByDecisionID(ctx context.Context, decisionID string) (model.ExecutedDecision, error) {
	return db.getExecutionWhere(ctx, "decision_id = ?", decisionID)
}

func (db *DB) getExecutionWhere(ctx context.Context, cond string, arg any) (model.ExecutedDecision, error) {
	row := db.db.QueryRowContext(ctx, `SELECT id, decision_id, story_id, user_id, role, executed_at,
		selected_strategy, expected_outcome, agent_id, status, category, title
		FROM executed_decisions WHERE `+cond+` ORDER BY executed_at DESC LIMIT 1`, arg)
	rec, err := db.scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ExecutedDecision{}, ErrNotFound
	}
	if err != nil {
		return model.ExecutedDecision{}, fmt.Errorf("storage: get executed decision: %w", err)
	}
	return rec, nil
}

// UpdateExecutionStatus sets the status of one execution.
// Transition legality is the tracker's concern; this is a raw field write.
func (db *DB) UpdateExecutionStatus(ctx context.Context, id int64, status model.ExecutionStatus) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	res, err := db.db.ExecContext(ctx,
		`UPDATE executed_decisions SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("storage: update execution status: %w", err)
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

// ResetExecutions clears the collection and its counter. Test/reset hook.
func (db *DB) ResetExecutions(ctx context.Context) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM executed_decisions`); err != nil {
		return fmt.Errorf("storage: reset executions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM counters WHERE name = ?`, counterExecutions); err != nil {
		return fmt.Errorf("storage: reset executions counter: %w", err)
	}
	return tx.Commit()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanExecution(s scanner) (model.ExecutedDecision, error) {
	var (
		rec        model.ExecutedDecision
		role       string
		executedAt string
		outcome    string
		status     string
	)
	err := s.Scan(&rec.ID, &rec.DecisionID, &rec.StoryID, &rec.UserID, &role,
		&executedAt, &rec.SelectedStrategy, &outcome, &rec.AgentID, &status,
		&rec.Category, &rec.Title)
	if err != nil {
		return model.ExecutedDecision{}, err
	}
	rec.Role = model.Role(role)
	rec.Status = model.ExecutionStatus(status)
	rec.ExecutedAt, err = time.Parse(time.RFC3339Nano, executedAt)
	if err != nil {
		return model.ExecutedDecision{}, fmt.Errorf("parse executed_at: %w", err)
	}
	if err := json.Unmarshal([]byte(outcome), &rec.ExpectedOutcome); err != nil {
		return model.ExecutedDecision{}, fmt.Errorf("decode expected outcome: %w", err)
	}
	return rec, nil
}
