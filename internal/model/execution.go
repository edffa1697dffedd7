package model

import "time"

// ExecutionStatus is the lifecycle state of an executed decision.
// Transitions are forward-only: executed -> in-progress -> completed.
type ExecutionStatus string

const (
	StatusExecuted   ExecutionStatus = "executed"
	StatusInProgress ExecutionStatus = "in-progress"
	StatusCompleted  ExecutionStatus = "completed"
)

// Valid reports whether s is a known execution status.
func (s ExecutionStatus) Valid() bool {
	switch s {
	case StatusExecuted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// rank orders statuses for transition checks. Higher never goes lower.
func (s ExecutionStatus) rank() int {
	switch s {
	case StatusExecuted:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	}
	return -1
}

// CanTransitionTo reports whether moving from s to next is a legal
// forward transition.
func (s ExecutionStatus) CanTransitionTo(next ExecutionStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return next.rank() > s.rank()
}

// ExecutedDecision is a decision a user committed to. Owned by the tracker:
// created on execution, mutated only via status transitions, removed only
// by an explicit reset.
type ExecutedDecision struct {
	ID               int64           `json:"id"`
	DecisionID       string          `json:"decision_id"`
	StoryID          string          `json:"story_id,omitempty"`
	UserID           string          `json:"user_id"`
	Role             Role            `json:"role"`
	ExecutedAt       time.Time       `json:"executed_at"`
	SelectedStrategy string          `json:"selected_strategy"`
	ExpectedOutcome  Outcome         `json:"expected_outcome"`
	AgentID          string          `json:"agent_id"`
	Status           ExecutionStatus `json:"status"`
	Category         string          `json:"category"`
	Title            string          `json:"title"`
}
