package tracker_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-intel/vantage/internal/model"
	"github.com/vantage-intel/vantage/internal/simclock"
	"github.com/vantage-intel/vantage/internal/storage"
	"github.com/vantage-intel/vantage/internal/tracker"
)

func newTracker(t *testing.T) (*tracker.Tracker, *simclock.Clock) {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	clock := simclock.New()
	return tracker.New(db, clock, slog.Default()), clock
}

func executeRequest() model.ExecuteRequest {
	return model.ExecuteRequest{
		DecisionID:       "decision-1-story-cash-001",
		StoryID:          "story-cash-001",
		UserID:           "user-1",
		Role:             model.RoleCFO,
		SelectedStrategy: "tighten payment terms",
		ExpectedOutcome:  model.Outcome{Impact: "$500K savings", Confidence: 0.8},
		AgentID:          "cfo-cash-optimizer",
		Category:         "finance",
		Title:            "OPTIMIZE COLLECTION CYCLES",
	}
}

func TestExecute_StampsClockAndStatus(t *testing.T) {
	tr, clock := newTracker(t)
	frozen := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	clock.SetOverride(frozen)

	rec, err := tr.Execute(context.Background(), executeRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), rec.ID)
	assert.Equal(t, model.StatusExecuted, rec.Status)
	assert.True(t, frozen.Equal(rec.ExecutedAt), "execution time comes from the simulated clock")
}

func TestExecute_InvalidRequest(t *testing.T) {
	tr, _ := newTracker(t)

	req := executeRequest()
	req.DecisionID = ""
	_, err := tr.Execute(context.Background(), req)
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	all, err := tr.List(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, all, "rejected requests are not persisted")
}

func TestUpdateStatus_ForwardOnly(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	rec, err := tr.Execute(ctx, executeRequest())
	require.NoError(t, err)

	updated, err := tr.UpdateStatus(ctx, rec.ID, model.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, updated.Status)

	// Backward and self transitions are rejected.
	_, err = tr.UpdateStatus(ctx, rec.ID, model.StatusExecuted)
	assert.ErrorIs(t, err, tracker.ErrBadTransition)
	_, err = tr.UpdateStatus(ctx, rec.ID, model.StatusInProgress)
	assert.ErrorIs(t, err, tracker.ErrBadTransition)

	updated, err = tr.UpdateStatus(ctx, rec.ID, model.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, updated.Status)

	_, err = tr.UpdateStatus(ctx, rec.ID, model.StatusInProgress)
	assert.ErrorIs(t, err, tracker.ErrBadTransition)
}

func TestUpdateStatus_UnknownStatusAndExecution(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	rec, err := tr.Execute(ctx, executeRequest())
	require.NoError(t, err)

	_, err = tr.UpdateStatus(ctx, rec.ID, model.ExecutionStatus("shipped"))
	assert.ErrorIs(t, err, tracker.ErrBadTransition)

	_, err = tr.UpdateStatus(ctx, 999, model.StatusCompleted)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestList_FiltersByUserAndRole(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	_, err := tr.Execute(ctx, executeRequest())
	require.NoError(t, err)

	other := executeRequest()
	other.DecisionID = "decision-2-story-churn-003"
	other.UserID = "user-2"
	other.Role = model.RoleCMO
	_, err = tr.Execute(ctx, other)
	require.NoError(t, err)

	all, err := tr.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cmo, err := tr.List(ctx, "user-2", model.RoleCMO)
	require.NoError(t, err)
	require.Len(t, cmo, 1)
	assert.Equal(t, "decision-2-story-churn-003", cmo[0].DecisionID)
}

func TestFindByDecisionID(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	rec, err := tr.Execute(ctx, executeRequest())
	require.NoError(t, err)

	found, err := tr.FindByDecisionID(ctx, rec.DecisionID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, found.ID)

	_, err = tr.FindByDecisionID(ctx, "decision-9-missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestReset_ClearsAndRestartsIDs(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	_, err := tr.Execute(ctx, executeRequest())
	require.NoError(t, err)
	require.NoError(t, tr.Reset(ctx))

	all, err := tr.List(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, all)

	rec, err := tr.Execute(ctx, executeRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ID)
}
