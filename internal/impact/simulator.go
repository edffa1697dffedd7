// Package impact synthesizes post-hoc outcomes for executed decisions.
//
// Once an execution is at least fourteen simulated days old, the simulator
// draws a variance factor, produces an actual outcome, compares it to the
// prediction, and persists exactly one ImpactUpdate per execution.
package impact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/vantage-intel/vantage/internal/model"
	"github.com/vantage-intel/vantage/internal/simclock"
	"github.com/vantage-intel/vantage/internal/storage"
)

// MaturationDays is the simulated age, inclusive, at which an execution
// becomes eligible for an impact update.
const MaturationDays = 14

// Variance bounds for the simulated outcome, as fractions of the
// predicted value.
const (
	varianceMin = -0.10
	varianceMax = 0.15
)

// Simulator generates impact updates. The random source is injected and
// seedable so exceeded/met/below outcomes are reproducible in tests.
type Simulator struct {
	db     *storage.DB
	clock  *simclock.Clock
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Simulator using the given random source.
func New(db *storage.DB, clock *simclock.Clock, rng *rand.Rand, logger *slog.Logger) *Simulator {
	return &Simulator{db: db, clock: clock, rng: rng, logger: logger}
}

// MaybeGenerate produces the impact update for one executed decision.
//
// Returns nil when the execution is younger than MaturationDays. When an
// update already exists it is returned unchanged; a second one is never
// created. A 14-day-old execution is due: the boundary is inclusive.
func (s *Simulator) MaybeGenerate(ctx context.Context, exec model.ExecutedDecision) (*model.ImpactUpdate, error) {
	if !s.clock.HasElapsed(exec.ExecutedAt, MaturationDays) {
		return nil, nil
	}

	existing, err := s.db.GetImpactUpdateByExecution(ctx, exec.ID)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("impact: lookup existing update: %w", err)
	}

	upd := s.synthesize(exec)
	created, err := s.db.InsertImpactUpdate(ctx, upd)
	if err != nil {
		return nil, fmt.Errorf("impact: persist update: %w", err)
	}
	s.logger.Info("impact: update generated",
		"update_id", created.ID, "execution_id", exec.ID,
		"status", created.Comparison.Status, "days_elapsed", created.DaysElapsed)
	return &created, nil
}

// CheckAndGenerate runs MaybeGenerate across every execution matching the
// filter and returns only the updates created by this call. Updates that
// already existed are excluded from the return value.
func (s *Simulator) CheckAndGenerate(ctx context.Context, userID string, role model.Role) ([]model.ImpactUpdate, error) {
	execs, err := s.db.ListExecutedDecisions(ctx, userID, role)
	if err != nil {
		return nil, fmt.Errorf("impact: list executions: %w", err)
	}

	created := []model.ImpactUpdate{}
	for _, exec := range execs {
		if !s.clock.HasElapsed(exec.ExecutedAt, MaturationDays) {
			continue
		}
		// Existence check before MaybeGenerate distinguishes "newly created"
		// from "already there" for the return value.
		if _, err := s.db.GetImpactUpdateByExecution(ctx, exec.ID); err == nil {
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("impact: lookup existing update: %w", err)
		}

		upd, err := s.MaybeGenerate(ctx, exec)
		if err != nil {
			return nil, err
		}
		if upd != nil {
			created = append(created, *upd)
		}
	}
	return created, nil
}

// ListUpdates returns impact updates newest-first with optional filters.
func (s *Simulator) ListUpdates(ctx context.Context, userID string, role model.Role) ([]model.ImpactUpdate, error) {
	return s.db.ListImpactUpdates(ctx, userID, role)
}

// MarkRead acknowledges one update. Only the read flag changes.
func (s *Simulator) MarkRead(ctx context.Context, updateID int64) error {
	return s.db.MarkImpactUpdateRead(ctx, updateID)
}

// synthesize builds the update for a due execution.
func (s *Simulator) synthesize(exec model.ExecutedDecision) model.ImpactUpdate {
	expectedValue := parseImpactValue(exec.ExpectedOutcome.Impact)
	variance := s.drawVariance()
	actualValue := expectedValue * (1 + variance)

	status := model.ComparisonMet
	switch {
	case variance > 0.10:
		status = model.ComparisonExceeded
	case variance < -0.05:
		status = model.ComparisonBelow
	}

	confidence := exec.ExpectedOutcome.Confidence
	if variance >= 0 {
		confidence += 0.05
	} else {
		confidence -= 0.05
	}
	confidence = clamp(confidence, 0.5, 1.0)

	delta := actualValue - expectedValue
	percentage := 0
	if expectedValue != 0 {
		percentage = int(roundHalfAway(delta / expectedValue * 100))
	}

	return model.ImpactUpdate{
		DecisionID:         exec.DecisionID,
		ExecutedDecisionID: exec.ID,
		GeneratedAt:        s.clock.Now(),
		DaysElapsed:        s.clock.DaysElapsed(exec.ExecutedAt),
		ExpectedOutcome:    exec.ExpectedOutcome,
		ActualOutcome: model.ActualOutcome{
			Impact:     formatImpactValue(actualValue, exec.ExpectedOutcome.Impact),
			Confidence: confidence,
			Status:     status,
		},
		Comparison: model.OutcomeComparison{
			ImpactDelta:     delta,
			Status:          status,
			PercentageDelta: percentage,
		},
		UserID: exec.UserID,
		Role:   exec.Role,
	}
}

// drawVariance samples uniformly from [varianceMin, varianceMax].
func (s *Simulator) drawVariance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return varianceMin + s.rng.Float64()*(varianceMax-varianceMin)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
