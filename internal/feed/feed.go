// Package feed composes the story source, scorer and decision generator
// into the pipeline's public read operations.
//
// The feed is the graceful-degradation boundary: upstream source failures
// are caught here, logged, and surfaced as an empty result with an error
// message in the metadata, never as an error to the serving layer.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/vantage-intel/vantage/internal/decision"
	"github.com/vantage-intel/vantage/internal/model"
	"github.com/vantage-intel/vantage/internal/scoring"
	"github.com/vantage-intel/vantage/internal/simclock"
	"github.com/vantage-intel/vantage/internal/source"
	"github.com/vantage-intel/vantage/internal/telemetry"
)

// Options bounds one feed request.
type Options struct {
	Filter       model.FilterType
	MaxStories   int
	MaxDecisions int
	MinScore     float64
}

// withDefaults fills unset fields with production defaults.
func (o Options) withDefaults() Options {
	if o.Filter == "" {
		o.Filter = model.FilterForYou
	}
	if o.MaxStories == 0 {
		o.MaxStories = 10
	}
	if o.MaxDecisions <= 0 {
		o.MaxDecisions = 3
	}
	if o.MinScore <= 0 {
		o.MinScore = 0.6
	}
	return o
}

// Metadata accompanies every feed result.
type Metadata struct {
	Role          model.Role       `json:"role"`
	Filter        model.FilterType `json:"filter,omitempty"`
	GeneratedAt   time.Time        `json:"generated_at"`
	StoryCount    int              `json:"story_count"`
	DecisionCount int              `json:"decision_count"`
	Error         string           `json:"error,omitempty"`
}

// Result is the combined output of the feed read operations. Operations
// that do not produce a section leave it empty.
type Result struct {
	Stories   []model.ScoredStory      `json:"stories"`
	Decisions []model.Decision         `json:"decisions"`
	Conflicts []model.DecisionConflict `json:"conflicts,omitempty"`
	Metadata  Metadata                 `json:"metadata"`
}

// Feed orchestrates source -> scorer -> generator.
type Feed struct {
	src    source.StorySource
	scorer *scoring.Scorer
	gen    *decision.Generator
	clock  *simclock.Clock
	logger *slog.Logger

	// group coalesces concurrent identical reads: the feed recomputes from
	// scratch on every request, so N simultaneous dashboards asking for the
	// same briefing should share one computation.
	group singleflight.Group

	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// New creates a Feed.
func New(src source.StorySource, scorer *scoring.Scorer, gen *decision.Generator, clock *simclock.Clock, logger *slog.Logger) *Feed {
	meter := telemetry.Meter("vantage/feed")
	requests, _ := meter.Int64Counter("vantage.feed.requests",
		metric.WithDescription("Feed read operations served"),
	)
	duration, _ := meter.Float64Histogram("vantage.feed.duration",
		metric.WithDescription("Feed computation time (ms)"),
		metric.WithUnit("ms"),
	)
	return &Feed{
		src:      src,
		scorer:   scorer,
		gen:      gen,
		clock:    clock,
		logger:   logger,
		requests: requests,
		duration: duration,
	}
}

// GetStories returns the scored, filtered story list for a role.
func (f *Feed) GetStories(ctx context.Context, role model.Role, opts Options) (Result, error) {
	return f.compute(ctx, "stories", role, opts, true, false)
}

// GetStoriesAndDecisions returns stories plus the decisions derived from them.
func (f *Feed) GetStoriesAndDecisions(ctx context.Context, role model.Role, opts Options) (Result, error) {
	return f.compute(ctx, "briefing", role, opts, true, true)
}

// GetTopDecisions returns only the decision list.
func (f *Feed) GetTopDecisions(ctx context.Context, role model.Role, opts Options) (Result, error) {
	return f.compute(ctx, "decisions", role, opts, false, true)
}

// GetStoryByID finds one scored story in the role's current feed.
func (f *Feed) GetStoryByID(ctx context.Context, id string, role model.Role) (*model.ScoredStory, error) {
	// MaxStories < 0 disables truncation so the lookup sees the whole feed.
	res, err := f.GetStories(ctx, role, Options{MaxStories: -1, Filter: model.FilterPortfolio})
	if err != nil {
		return nil, err
	}
	for i := range res.Stories {
		if res.Stories[i].Story.ID == id {
			return &res.Stories[i], nil
		}
	}
	return nil, nil
}

// GetDecisionByID finds one decision in the role's current decision set.
// Decision ids are rank-qualified and deterministic per request, so a
// lookup is a regeneration plus a scan.
func (f *Feed) GetDecisionByID(ctx context.Context, id string, role model.Role) (*model.Decision, error) {
	res, err := f.GetTopDecisions(ctx, role, Options{})
	if err != nil {
		return nil, err
	}
	for i := range res.Decisions {
		if res.Decisions[i].ID == id {
			return &res.Decisions[i], nil
		}
	}
	return nil, nil
}

// compute runs the pipeline once per distinct (op, role, opts) in flight.
func (f *Feed) compute(ctx context.Context, op string, role model.Role, opts Options, wantStories, wantDecisions bool) (Result, error) {
	opts = opts.withDefaults()
	start := time.Now()
	key := fmt.Sprintf("%s|%s|%s|%d|%d|%.2f", op, role, opts.Filter, opts.MaxStories, opts.MaxDecisions, opts.MinScore)

	v, err, _ := f.group.Do(key, func() (any, error) {
		return f.computeOnce(ctx, role, opts, wantStories, wantDecisions)
	})

	f.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("role", string(role)),
	))
	f.duration.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(attribute.String("operation", op)))

	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

func (f *Feed) computeOnce(ctx context.Context, role model.Role, opts Options, wantStories, wantDecisions bool) (Result, error) {
	res := Result{
		Stories:   []model.ScoredStory{},
		Decisions: []model.Decision{},
		Metadata: Metadata{
			Role:        role,
			Filter:      opts.Filter,
			GeneratedAt: f.clock.Now(),
		},
	}

	stories, err := f.src.Stories(ctx)
	if err != nil {
		// Upstream failure degrades to an empty result; the UI layer renders
		// the message, not a stack trace.
		f.logger.Error("feed: story source failed", "role", role, "error", err)
		res.Metadata.Error = fmt.Sprintf("story source unavailable: %v", err)
		return res, nil
	}

	scored, err := f.scorer.Score(stories, role)
	if err != nil {
		return Result{}, err
	}
	scored = scoring.FilterByType(scored, opts.Filter)

	if wantDecisions {
		decisions, conflicts, err := f.gen.Generate(scored, role, decision.Options{
			MinScore:         opts.MinScore,
			MaxDecisions:     opts.MaxDecisions,
			RequireAuthority: true,
		})
		if err != nil {
			return Result{}, err
		}
		res.Decisions = decisions
		res.Conflicts = conflicts
		res.Metadata.DecisionCount = len(decisions)
	}

	if wantStories {
		if opts.MaxStories > 0 && len(scored) > opts.MaxStories {
			scored = scored[:opts.MaxStories]
		}
		res.Stories = scored
		res.Metadata.StoryCount = len(scored)
	}
	return res, nil
}
