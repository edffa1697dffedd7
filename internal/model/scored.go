package model

// Role identifies the persona a request is personalized for.
type Role string

const (
	RoleCFO Role = "cfo"
	RoleCMO Role = "cmo"
	RoleCOO Role = "coo"
	RoleCEO Role = "ceo"
)

// FilterType refines a scored story list along an upside/downside axis.
type FilterType string

const (
	FilterForYou    FilterType = "for-you"
	FilterUpside    FilterType = "upside"
	FilterDownside  FilterType = "downside"
	FilterPortfolio FilterType = "portfolio"
)

// Scores holds the three personalization components, each in [0, 1].
type Scores struct {
	Relevance float64 `json:"relevance"`
	Impact    float64 `json:"impact"`
	Urgency   float64 `json:"urgency"`
}

// PersonalizationContext records why a story scored the way it did
// for a particular role.
type PersonalizationContext struct {
	Role       Role   `json:"role"`
	Authority  string `json:"authority"`
	ScopeMatch bool   `json:"scope_match"`
}

// ScoredStory is a Story evaluated for one role. Scored stories are
// transient: recomputed on every request, never persisted.
type ScoredStory struct {
	Story      Story                  `json:"story"`
	Scores     Scores                 `json:"scores"`
	FinalScore float64                `json:"final_score"`
	Context    PersonalizationContext `json:"personalization_context"`
}
