package model

// UrgencyLevel buckets a computed urgency score for display and triage.
type UrgencyLevel string

const (
	UrgencyHigh   UrgencyLevel = "high"
	UrgencyMedium UrgencyLevel = "medium"
	UrgencyLow    UrgencyLevel = "low"
)

// PrimaryAction is the recommended move attached to a decision.
type PrimaryAction struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Impact      string  `json:"impact"`
	Confidence  float64 `json:"confidence"`
}

// DecisionUrgency explains how soon a decision should be acted on.
type DecisionUrgency struct {
	Level     UrgencyLevel `json:"level"`
	TimeToAct string       `json:"time_to_act"`
	Reason    string       `json:"reason"`
}

// Outcome describes a predicted (or simulated actual) result of acting.
type Outcome struct {
	Impact     string  `json:"impact"`
	Confidence float64 `json:"confidence"`
	Risk       string  `json:"risk,omitempty"`
	Timeline   string  `json:"timeline,omitempty"`
}

// Decision is an actionable recommendation derived from a scored story.
// Decisions are transient: regenerated on each query with deterministic,
// rank-qualified IDs ("decision-{rank}-{storyID}"), never persisted directly.
type Decision struct {
	ID              string          `json:"decision_id"`
	StoryID         string          `json:"story_id"`
	Title           string          `json:"title"`
	PrimaryAction   PrimaryAction   `json:"primary_action"`
	Urgency         DecisionUrgency `json:"urgency"`
	ExpectedOutcome Outcome         `json:"expected_outcome"`
	WhyThisMatters  string          `json:"why_this_matters"`
	Actions         []string        `json:"actions"`
	AgentID         string          `json:"agent_id"`
	Category        string          `json:"category"`
}

// DecisionConflict reports two decisions in one batch competing for the
// same execution agent. Soft: reported, never blocking.
type DecisionConflict struct {
	DecisionAID string `json:"decision_a_id"`
	DecisionBID string `json:"decision_b_id"`
	AgentID     string `json:"agent_id"`
	Reason      string `json:"reason"`
}
