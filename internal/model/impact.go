package model

import "time"

// ComparisonStatus classifies actual vs predicted outcome.
type ComparisonStatus string

const (
	ComparisonExceeded ComparisonStatus = "exceeded"
	ComparisonMet      ComparisonStatus = "met"
	ComparisonBelow    ComparisonStatus = "below"
)

// ActualOutcome is the simulated realized result for an executed decision.
type ActualOutcome struct {
	Impact     string           `json:"impact"`
	Confidence float64          `json:"confidence"`
	Status     ComparisonStatus `json:"status"`
}

// OutcomeComparison quantifies the gap between predicted and actual impact.
// Deltas are expressed in absolute currency units.
type OutcomeComparison struct {
	ImpactDelta     float64          `json:"impact_delta"`
	Status          ComparisonStatus `json:"status"`
	PercentageDelta int              `json:"percentage_delta"`
}

// ImpactUpdate is the post-hoc comparison of predicted vs simulated actual
// outcome for one executed decision. At most one exists per execution;
// Read is the only field ever mutated after creation.
type ImpactUpdate struct {
	ID                 int64             `json:"id"`
	DecisionID         string            `json:"decision_id"`
	ExecutedDecisionID int64             `json:"executed_decision_id"`
	GeneratedAt        time.Time         `json:"generated_at"`
	DaysElapsed        int               `json:"days_elapsed"`
	ExpectedOutcome    Outcome           `json:"expected_outcome"`
	ActualOutcome      ActualOutcome     `json:"actual_outcome"`
	Comparison         OutcomeComparison `json:"comparison"`
	Read               bool              `json:"read"`
	UserID             string            `json:"user_id"`
	Role               Role              `json:"role"`
}
