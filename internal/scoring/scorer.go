// Package scoring implements per-role personalization scoring for stories.
//
// Each story gets three component scores in [0, 1] (relevance, impact,
// urgency) combined into a weighted final score. Components are rounded to
// two decimals before combining so results are reproducible across reads.
package scoring

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/vantage-intel/vantage/internal/model"
	"github.com/vantage-intel/vantage/internal/roles"
	"github.com/vantage-intel/vantage/internal/simclock"
)

// Weights of the final combination.
const (
	weightRelevance = 0.40
	weightImpact    = 0.35
	weightUrgency   = 0.25
)

// minRelevance filters stories out of the personalized feed entirely.
const minRelevance = 0.30

// baselineRelevance applies when neither domain, type nor KPI matches.
// Non-zero on purpose: every story stays at least weakly visible to every
// role rather than silently disappearing from the feed.
const baselineRelevance = 0.30

// fullDecayHours is the age at which time-based urgency reaches zero.
const fullDecayHours = 120.0

// financialCeiling normalizes financial magnitudes: $10M and above
// contribute the full financial share of the impact score.
const financialCeiling = 10_000_000.0

// Scorer assigns role-personalized scores to stories.
type Scorer struct {
	clock  *simclock.Clock
	logger *slog.Logger
}

// New creates a Scorer. The clock supplies "now" for urgency decay.
func New(clock *simclock.Clock, logger *slog.Logger) *Scorer {
	return &Scorer{clock: clock, logger: logger}
}

// Score evaluates every story for the given role, drops stories below the
// relevance floor, and returns the rest sorted by final score descending
// with pinned stories ahead of everything else.
func (s *Scorer) Score(stories []model.Story, role model.Role) ([]model.ScoredStory, error) {
	profile, err := roles.Lookup(role)
	if err != nil {
		return nil, fmt.Errorf("scoring: %w", err)
	}

	scored := make([]model.ScoredStory, 0, len(stories))
	for _, story := range stories {
		ss := s.scoreOne(story, profile)
		if ss.Scores.Relevance < minRelevance {
			continue
		}
		scored = append(scored, ss)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Story.Pinned != scored[j].Story.Pinned {
			return scored[i].Story.Pinned
		}
		return scored[i].FinalScore > scored[j].FinalScore
	})
	return scored, nil
}

// scoreOne computes the three components and the weighted final score.
// Pinned stories bypass scoring entirely and are forced to perfect scores.
func (s *Scorer) scoreOne(story model.Story, profile roles.Profile) model.ScoredStory {
	ctx := model.PersonalizationContext{
		Role:       profile.Role,
		Authority:  profile.Authority,
		ScopeMatch: profile.InterestedInDomain(story.Domain),
	}

	if story.Pinned {
		return model.ScoredStory{
			Story:      story,
			Scores:     model.Scores{Relevance: 1.0, Impact: 1.0, Urgency: 1.0},
			FinalScore: 1.0,
			Context:    ctx,
		}
	}

	relevance := round2(s.relevance(story, profile))
	impact := round2(s.impact(story))
	urgency := round2(s.urgency(story))
	final := round2(weightRelevance*relevance + weightImpact*impact + weightUrgency*urgency)

	return model.ScoredStory{
		Story:      story,
		Scores:     model.Scores{Relevance: relevance, Impact: impact, Urgency: urgency},
		FinalScore: final,
		Context:    ctx,
	}
}

// relevance: 0.4 domain match + 0.4 type match + 0.2 KPI keyword match,
// falling back to the visibility baseline when nothing matches.
func (s *Scorer) relevance(story model.Story, profile roles.Profile) float64 {
	var score float64
	if profile.InterestedInDomain(story.Domain) {
		score += 0.4
	}
	if profile.InterestedInType(story.Type) {
		score += 0.4
	}
	if kpiMatches(story.Impact.KPI, profile.KPIKeywords) {
		score += 0.2
	}
	if score == 0 {
		return baselineRelevance
	}
	return clamp01(score)
}

// impact: 0.4 anomaly magnitude + risk weight + up to 0.2 from the
// normalized financial magnitude.
func (s *Scorer) impact(story model.Story) float64 {
	score := 0.4 * anomalyMagnitude(story)
	score += riskWeight(story.Impact.Risk)

	if amount := financialAmount(story.Impact); amount > 0 {
		score += 0.2 * math.Min(amount/financialCeiling, 1.0)
	}
	return clamp01(score)
}

// urgency: 0.5 time decay + risk weight + urgent-type bonus.
func (s *Scorer) urgency(story model.Story) float64 {
	ageHours := s.clock.Now().Sub(story.Timestamp).Hours()
	score := 0.5 * timeDecay(ageHours)
	score += riskWeight(story.Impact.Risk)
	if roles.IsUrgentType(story.Type) {
		score += 0.1
	}
	return clamp01(score)
}

// FilterByType refines a scored list. for-you and portfolio pass through;
// upside keeps favourable stories, downside keeps risk-laden ones.
func FilterByType(scored []model.ScoredStory, filter model.FilterType) []model.ScoredStory {
	switch filter {
	case model.FilterUpside:
		return keep(scored, func(ss model.ScoredStory) bool {
			risk := ss.Story.Impact.Risk.Normalize()
			return risk == model.RiskLow || ss.Story.Impact.Opportunity || ss.Scores.Impact >= 0.7
		})
	case model.FilterDownside:
		return keep(scored, func(ss model.ScoredStory) bool {
			if ss.Story.Impact.Risk.Normalize() == model.RiskHigh {
				return true
			}
			switch ss.Story.Type {
			case roles.TypeChurnRisk, roles.TypeInventoryRisk, roles.TypeSupplyChain, roles.TypeMarginPressure:
				return true
			}
			return false
		})
	default:
		return scored
	}
}

func keep(scored []model.ScoredStory, pred func(model.ScoredStory) bool) []model.ScoredStory {
	out := make([]model.ScoredStory, 0, len(scored))
	for _, ss := range scored {
		if pred(ss) {
			out = append(out, ss)
		}
	}
	return out
}

// riskWeight is shared by the impact and urgency components.
func riskWeight(risk model.RiskLevel) float64 {
	switch risk.Normalize() {
	case model.RiskHigh:
		return 0.4
	case model.RiskMedium:
		return 0.2
	default:
		return 0.1
	}
}

// timeDecay maps story age in hours to [0, 1]: 1.0 when fresh, linearly
// down to 0 at fullDecayHours. Future timestamps count as fresh.
func timeDecay(ageHours float64) float64 {
	if ageHours <= 0 {
		return 1.0
	}
	if ageHours >= fullDecayHours {
		return 0.0
	}
	return 1.0 - ageHours/fullDecayHours
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
