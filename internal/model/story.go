package model

import "time"

// RiskLevel classifies the downside exposure of a story.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Normalize maps unknown or empty risk levels to RiskMedium.
// Upstream sources occasionally omit the field; a missing risk must not
// fail scoring, so medium is the documented default.
func (r RiskLevel) Normalize() RiskLevel {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return r
	default:
		return RiskMedium
	}
}

// MoneyAmount is the structured form of a financial magnitude.
// It is carried alongside the free-text display string so consumers that
// only have display text still work, while scoring prefers the structured
// value over regex extraction.
type MoneyAmount struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Unit     string  `json:"unit"` // "", "K", "M", or "B"
}

// Absolute returns the amount expanded to absolute currency units.
func (m MoneyAmount) Absolute() float64 {
	switch m.Unit {
	case "K":
		return m.Amount * 1_000
	case "M":
		return m.Amount * 1_000_000
	case "B":
		return m.Amount * 1_000_000_000
	default:
		return m.Amount
	}
}

// StoryImpact captures the business consequence attached to a story.
type StoryImpact struct {
	Financial   string       `json:"financial"`
	Amount      *MoneyAmount `json:"amount,omitempty"`
	KPI         string       `json:"kpi"`
	Risk        RiskLevel    `json:"risk"`
	Opportunity bool         `json:"opportunity"`
}

// Story is an atomic business observation supplied by a StorySource.
// Stories are immutable once produced; the pipeline never writes them back.
type Story struct {
	ID        string         `json:"story_id"`
	Domain    string         `json:"domain"`
	Type      string         `json:"type"`
	Impact    StoryImpact    `json:"impact"`
	Timestamp time.Time      `json:"timestamp"`
	Pinned    bool           `json:"pinned,omitempty"`
	RawData   map[string]any `json:"raw_data,omitempty"`
}
