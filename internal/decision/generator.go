// Package decision turns top-ranked scored stories into actionable,
// role-gated decisions and flags resource conflicts inside a batch.
package decision

import (
	"fmt"
	"log/slog"

	"github.com/vantage-intel/vantage/internal/model"
	"github.com/vantage-intel/vantage/internal/roles"
)

// Options controls decision generation.
type Options struct {
	MinScore         float64
	MaxDecisions     int
	RequireAuthority bool
}

// DefaultOptions matches the production feed behavior.
func DefaultOptions() Options {
	return Options{MinScore: 0.6, MaxDecisions: 3, RequireAuthority: true}
}

// Generator derives decisions from scored stories.
type Generator struct {
	logger *slog.Logger
}

// New creates a Generator.
func New(logger *slog.Logger) *Generator {
	return &Generator{logger: logger}
}

// Generate converts the highest-ranked eligible stories into decisions.
//
// Pinned stories bypass both the score floor and the authority check and
// are always placed ahead of ordinary ones. Ordinary stories must clear
// opts.MinScore and, when opts.RequireAuthority is set, the role's
// authority allow-list. The input is assumed already sorted by final score
// (the scorer's contract), so taking the first MaxDecisions preserves rank.
func (g *Generator) Generate(scored []model.ScoredStory, role model.Role, opts Options) ([]model.Decision, []model.DecisionConflict, error) {
	profile, err := roles.Lookup(role)
	if err != nil {
		return nil, nil, fmt.Errorf("decision: %w", err)
	}
	if opts.MaxDecisions <= 0 {
		opts.MaxDecisions = DefaultOptions().MaxDecisions
	}

	var pinned, ordinary []model.ScoredStory
	for _, ss := range scored {
		if ss.Story.Pinned {
			pinned = append(pinned, ss)
			continue
		}
		if ss.FinalScore < opts.MinScore {
			continue
		}
		if opts.RequireAuthority && !profile.HasAuthority(ss.Story.Type) {
			continue
		}
		ordinary = append(ordinary, ss)
	}

	eligible := append(pinned, ordinary...)
	if len(eligible) > opts.MaxDecisions {
		eligible = eligible[:opts.MaxDecisions]
	}

	decisions := make([]model.Decision, 0, len(eligible))
	for rank, ss := range eligible {
		decisions = append(decisions, g.build(ss, role, rank))
	}

	conflicts := DetectConflicts(decisions)
	if len(conflicts) > 0 {
		g.logger.Info("decision: batch has agent conflicts", "role", role, "conflicts", len(conflicts))
	}
	return decisions, conflicts, nil
}

// TopDecision returns the single highest-ranked decision, or nil when the
// input yields none.
func (g *Generator) TopDecision(scored []model.ScoredStory, role model.Role) (*model.Decision, error) {
	opts := DefaultOptions()
	opts.MaxDecisions = 1
	decisions, _, err := g.Generate(scored, role, opts)
	if err != nil {
		return nil, err
	}
	if len(decisions) == 0 {
		return nil, nil
	}
	return &decisions[0], nil
}

// build assembles one decision from a scored story at the given rank.
func (g *Generator) build(ss model.ScoredStory, role model.Role, rank int) model.Decision {
	story := ss.Story

	action, ok := actionTable[story.Type]
	if !ok {
		action = genericAction
	}
	outcome, ok := outcomeTable[story.Type]
	if !ok {
		outcome = genericOutcome
	}
	agentID, ok := agentTable[story.Type]
	if !ok {
		agentID = genericAgent
	}

	why := genericReason
	if byType, ok := contextTable[role]; ok {
		if reason, ok := byType[story.Type]; ok {
			why = reason
		}
	}

	urgencyLevel := levelFor(ss.Scores.Urgency)
	impactLevel := levelFor(ss.Scores.Impact)

	return model.Decision{
		ID:            fmt.Sprintf("decision-%d-%s", rank+1, story.ID),
		StoryID:       story.ID,
		Title:         action.Title,
		PrimaryAction: action,
		Urgency: model.DecisionUrgency{
			Level:     urgencyLevel,
			TimeToAct: timeToAct[urgencyLevel],
			Reason:    urgencyReason(story, urgencyLevel),
		},
		ExpectedOutcome: outcome,
		WhyThisMatters:  why,
		Actions:         append([]string(nil), defaultActions...),
		AgentID:         agentID,
		Category:        category(story, impactLevel),
	}
}

// DetectConflicts flags every pair of decisions sharing an execution agent.
// Reporting is symmetric: if A conflicts with B, B conflicts with A.
func DetectConflicts(decisions []model.Decision) []model.DecisionConflict {
	var conflicts []model.DecisionConflict
	for i := range decisions {
		for j := range decisions {
			if i == j || decisions[i].AgentID != decisions[j].AgentID {
				continue
			}
			conflicts = append(conflicts, model.DecisionConflict{
				DecisionAID: decisions[i].ID,
				DecisionBID: decisions[j].ID,
				AgentID:     decisions[i].AgentID,
				Reason:      "two decisions may compete for the same execution resource",
			})
		}
	}
	return conflicts
}

// levelFor buckets a component score: >=0.7 high, >=0.5 medium, else low.
func levelFor(score float64) model.UrgencyLevel {
	switch {
	case score >= 0.7:
		return model.UrgencyHigh
	case score >= 0.5:
		return model.UrgencyMedium
	default:
		return model.UrgencyLow
	}
}

func urgencyReason(story model.Story, level model.UrgencyLevel) string {
	switch level {
	case model.UrgencyHigh:
		return fmt.Sprintf("%s risk on a fresh %s signal", story.Impact.Risk.Normalize(), story.Type)
	case model.UrgencyMedium:
		return fmt.Sprintf("%s signal still inside its acting window", story.Type)
	default:
		return "signal is informational at current pace"
	}
}

func category(story model.Story, impactLevel model.UrgencyLevel) string {
	if story.Domain != "" {
		return story.Domain
	}
	return string(impactLevel)
}
