// Package tracker owns the executed-decision lifecycle: committing a
// decision, listing executions, and moving them through the forward-only
// status machine (executed -> in-progress -> completed).
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vantage-intel/vantage/internal/model"
	"github.com/vantage-intel/vantage/internal/simclock"
	"github.com/vantage-intel/vantage/internal/storage"
)

// ErrBadTransition is returned for illegal status transitions.
// The reference behavior allowed any status write; the strict machine here
// is the documented strengthening of that contract.
var ErrBadTransition = errors.New("tracker: illegal status transition")

// Tracker persists and mutates executed decisions.
type Tracker struct {
	db     *storage.DB
	clock  *simclock.Clock
	logger *slog.Logger
}

// New creates a Tracker.
func New(db *storage.DB, clock *simclock.Clock, logger *slog.Logger) *Tracker {
	return &Tracker{db: db, clock: clock, logger: logger}
}

// Execute commits a decision: validates the request, stamps the simulated
// current time, defaults status to executed, and persists under the next
// monotonic id.
func (t *Tracker) Execute(ctx context.Context, req model.ExecuteRequest) (model.ExecutedDecision, error) {
	if err := model.ValidateExecuteRequest(req); err != nil {
		return model.ExecutedDecision{}, fmt.Errorf("tracker: %w", err)
	}

	rec := model.ExecutedDecision{
		DecisionID:       req.DecisionID,
		StoryID:          req.StoryID,
		UserID:           req.UserID,
		Role:             req.Role,
		ExecutedAt:       t.clock.Now(),
		SelectedStrategy: req.SelectedStrategy,
		ExpectedOutcome:  req.ExpectedOutcome,
		AgentID:          req.AgentID,
		Status:           model.StatusExecuted,
		Category:         req.Category,
		Title:            req.Title,
	}

	rec, err := t.db.InsertExecutedDecision(ctx, rec)
	if err != nil {
		return model.ExecutedDecision{}, err
	}
	t.logger.Info("tracker: decision executed",
		"execution_id", rec.ID, "decision_id", rec.DecisionID,
		"user_id", rec.UserID, "role", rec.Role)
	return rec, nil
}

// List returns executions newest-first, optionally filtered by user and role.
func (t *Tracker) List(ctx context.Context, userID string, role model.Role) ([]model.ExecutedDecision, error) {
	return t.db.ListExecutedDecisions(ctx, userID, role)
}

// FindByDecisionID returns the execution recorded for a decision id, or
// storage.ErrNotFound.
func (t *Tracker) FindByDecisionID(ctx context.Context, decisionID string) (model.ExecutedDecision, error) {
	return t.db.FindExecutedByDecisionID(ctx, decisionID)
}

// UpdateStatus moves an execution forward through the status machine and
// returns the updated record. Backward and self transitions fail with
// ErrBadTransition; unknown executions fail with storage.ErrNotFound.
func (t *Tracker) UpdateStatus(ctx context.Context, executionID int64, status model.ExecutionStatus) (model.ExecutedDecision, error) {
	if !status.Valid() {
		return model.ExecutedDecision{}, fmt.Errorf("%w: unknown status %q", ErrBadTransition, status)
	}

	current, err := t.db.GetExecutedDecision(ctx, executionID)
	if err != nil {
		return model.ExecutedDecision{}, err
	}
	if !current.Status.CanTransitionTo(status) {
		return model.ExecutedDecision{}, fmt.Errorf("%w: %s -> %s", ErrBadTransition, current.Status, status)
	}

	if err := t.db.UpdateExecutionStatus(ctx, executionID, status); err != nil {
		return model.ExecutedDecision{}, err
	}
	current.Status = status
	t.logger.Info("tracker: status updated", "execution_id", executionID, "status", status)
	return current, nil
}

// Reset clears the collection and its id counter. Intended for tests and
// demo environments, not production traffic.
func (t *Tracker) Reset(ctx context.Context) error {
	return t.db.ResetExecutions(ctx)
}
