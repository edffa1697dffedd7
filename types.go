package vantage

import (
	"context"
	"time"

	"github.com/vantage-intel/vantage/internal/model"
	"github.com/vantage-intel/vantage/internal/source"
)

// Role is an executive persona the pipeline personalizes for.
type Role string

const (
	RoleCFO Role = "cfo"
	RoleCMO Role = "cmo"
	RoleCOO Role = "coo"
	RoleCEO Role = "ceo"
)

// MoneyAmount is a structured monetary value carried alongside the display
// string, so sources that know the exact figure are not forced through the
// display-string parser.
type MoneyAmount struct {
	Amount   float64
	Currency string
	Unit     string // "", "K", "M", or "B"
}

// StoryImpact describes a story's business consequences.
type StoryImpact struct {
	Financial   string
	Amount      *MoneyAmount
	KPI         string
	Risk        string // low | medium | high; empty defaults to medium
	Opportunity bool
}

// Story is the public representation of an intelligence story fed into the
// pipeline. It is a curated view of internal/model.Story for use in the
// StorySource extension interface. It has no internal package imports and is
// safe to use from outside the module.
type Story struct {
	ID        string
	Domain    string
	Type      string
	Impact    StoryImpact
	Timestamp time.Time
	Pinned    bool
	RawData   map[string]any
}

// StorySource supplies the stories the pipeline scores on every request.
// Implementations must be safe for concurrent use; the pipeline may call
// Stories from multiple requests at once.
type StorySource interface {
	Stories(ctx context.Context) ([]Story, error)
}

// storySourceAdapter bridges a public StorySource to the internal interface.
type storySourceAdapter struct {
	src StorySource
}

func (a *storySourceAdapter) Stories(ctx context.Context) ([]model.Story, error) {
	stories, err := a.src.Stories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Story, len(stories))
	for i, s := range stories {
		out[i] = toInternalStory(s)
	}
	return out, nil
}

var _ source.StorySource = (*storySourceAdapter)(nil)

func toInternalStory(s Story) model.Story {
	var amount *model.MoneyAmount
	if s.Impact.Amount != nil {
		amount = &model.MoneyAmount{
			Amount:   s.Impact.Amount.Amount,
			Currency: s.Impact.Amount.Currency,
			Unit:     s.Impact.Amount.Unit,
		}
	}
	return model.Story{
		ID:     s.ID,
		Domain: s.Domain,
		Type:   s.Type,
		Impact: model.StoryImpact{
			Financial:   s.Impact.Financial,
			Amount:      amount,
			KPI:         s.Impact.KPI,
			Risk:        model.RiskLevel(s.Impact.Risk).Normalize(),
			Opportunity: s.Impact.Opportunity,
		},
		Timestamp: s.Timestamp,
		Pinned:    s.Pinned,
		RawData:   s.RawData,
	}
}
