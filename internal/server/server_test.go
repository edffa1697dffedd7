package server_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-intel/vantage/internal/decision"
	"github.com/vantage-intel/vantage/internal/feed"
	"github.com/vantage-intel/vantage/internal/impact"
	"github.com/vantage-intel/vantage/internal/model"
	"github.com/vantage-intel/vantage/internal/ratelimit"
	"github.com/vantage-intel/vantage/internal/scoring"
	"github.com/vantage-intel/vantage/internal/server"
	"github.com/vantage-intel/vantage/internal/simclock"
	"github.com/vantage-intel/vantage/internal/source"
	"github.com/vantage-intel/vantage/internal/storage"
	"github.com/vantage-intel/vantage/internal/tracker"
)

var serverNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// dataEnvelope mirrors the success response shape on the wire.
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
	Meta struct {
		RequestID string    `json:"request_id"`
		Timestamp time.Time `json:"timestamp"`
	} `json:"meta"`
}

// errorEnvelope mirrors the error response shape on the wire.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

func testStories() []model.Story {
	return []model.Story{
		{
			ID:     "story-cash-001",
			Domain: "finance",
			Type:   "cash_flow",
			Impact: model.StoryImpact{
				Financial: "$2.3M collections opportunity",
				Amount:    &model.MoneyAmount{Amount: 2.3, Currency: "USD", Unit: "M"},
				KPI:       "DSO up 12% quarter over quarter",
				Risk:      model.RiskHigh,
			},
			Timestamp: serverNow.Add(-6 * time.Hour),
			RawData:   map[string]any{"anomaly_score": 0.87},
		},
	}
}

func newTestServer(t *testing.T, limiter ratelimit.Limiter) (*server.Server, *simclock.Clock) {
	t.Helper()
	logger := slog.Default()

	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := simclock.New()
	clock.SetOverride(serverNow)

	f := feed.New(source.NewStatic(testStories()), scoring.New(clock, logger), decision.New(logger), clock, logger)
	srv := server.New(server.ServerConfig{
		Feed:      f,
		Tracker:   tracker.New(db, clock, logger),
		Simulator: impact.New(db, clock, rand.New(rand.NewSource(1)), logger),
		Logger:    logger,
		Limiter:   limiter,
		Version:   "test",
	})
	return srv, clock
}

func do(t *testing.T, srv *server.Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.1:55000"
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, target any) dataEnvelope {
	t.Helper()
	var env dataEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	if target != nil {
		require.NoError(t, json.Unmarshal(env.Data, target))
	}
	return env
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func executeBody() string {
	b, _ := json.Marshal(map[string]any{
		"decision_id":       "decision-1-story-cash-001",
		"story_id":          "story-cash-001",
		"user_id":           "user-1",
		"role":              "cfo",
		"selected_strategy": "tighten payment terms",
		"expected_outcome":  map[string]any{"impact": "$500K savings", "confidence": 0.8},
		"agent_id":          "cfo-cash-optimizer",
		"category":          "finance",
		"title":             "OPTIMIZE COLLECTION CYCLES",
	})
	return string(b)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, ratelimit.NoopLimiter{})
	rec := do(t, srv, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var data map[string]string
	env := decodeData(t, rec, &data)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "test", data["version"])
	assert.NotEmpty(t, env.Meta.RequestID)
}

func TestGetStories(t *testing.T) {
	srv, _ := newTestServer(t, ratelimit.NoopLimiter{})
	rec := do(t, srv, http.MethodGet, "/v1/stories?role=cfo", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var res feed.Result
	decodeData(t, rec, &res)
	require.Len(t, res.Stories, 1)
	assert.Equal(t, "story-cash-001", res.Stories[0].Story.ID)
	assert.Equal(t, model.RoleCFO, res.Metadata.Role)
}

func TestGetStories_UnknownRole(t *testing.T) {
	srv, _ := newTestServer(t, ratelimit.NoopLimiter{})
	rec := do(t, srv, http.MethodGet, "/v1/stories?role=intern", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeError(t, rec)
	assert.Equal(t, model.ErrCodeInvalidInput, env.Error.Code)
	assert.NotEmpty(t, env.Meta.RequestID)
}

func TestGetStoryByID_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, ratelimit.NoopLimiter{})
	rec := do(t, srv, http.MethodGet, "/v1/stories/story-nope?role=cfo", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, model.ErrCodeNotFound, decodeError(t, rec).Error.Code)
}

func TestBriefing(t *testing.T) {
	srv, _ := newTestServer(t, ratelimit.NoopLimiter{})
	rec := do(t, srv, http.MethodGet, "/v1/briefing?role=cfo", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var res feed.Result
	decodeData(t, rec, &res)
	assert.NotEmpty(t, res.Stories)
	require.NotEmpty(t, res.Decisions)
	assert.Equal(t, "decision-1-story-cash-001", res.Decisions[0].ID)
}

func TestExecute_Created(t *testing.T) {
	srv, _ := newTestServer(t, ratelimit.NoopLimiter{})
	rec := do(t, srv, http.MethodPost, "/v1/decisions/execute", executeBody())

	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.ExecutedDecision
	decodeData(t, rec, &created)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, model.StatusExecuted, created.Status)
	assert.True(t, serverNow.Equal(created.ExecutedAt))

	list := do(t, srv, http.MethodGet, "/v1/decisions/executed?user_id=user-1", "")
	require.Equal(t, http.StatusOK, list.Code)
	var recs []model.ExecutedDecision
	decodeData(t, list, &recs)
	assert.Len(t, recs, 1)
}

func TestExecute_ValidationError(t *testing.T) {
	srv, _ := newTestServer(t, ratelimit.NoopLimiter{})

	var req map[string]any
	require.NoError(t, json.Unmarshal([]byte(executeBody()), &req))
	delete(req, "decision_id")
	body, _ := json.Marshal(req)

	rec := do(t, srv, http.MethodPost, "/v1/decisions/execute", string(body))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeError(t, rec)
	assert.Equal(t, model.ErrCodeInvalidInput, env.Error.Code)
	assert.Contains(t, env.Error.Message, "decision_id")
}

func TestExecute_MalformedBody(t *testing.T) {
	srv, _ := newTestServer(t, ratelimit.NoopLimiter{})
	rec := do(t, srv, http.MethodPost, "/v1/decisions/execute", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatus_FlowAndConflict(t *testing.T) {
	srv, _ := newTestServer(t, ratelimit.NoopLimiter{})
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/v1/decisions/execute", executeBody()).Code)

	rec := do(t, srv, http.MethodPost, "/v1/decisions/executed/1/status", `{"status":"in-progress"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.ExecutedDecision
	decodeData(t, rec, &updated)
	assert.Equal(t, model.StatusInProgress, updated.Status)

	back := do(t, srv, http.MethodPost, "/v1/decisions/executed/1/status", `{"status":"executed"}`)
	require.Equal(t, http.StatusConflict, back.Code)
	assert.Equal(t, model.ErrCodeConflict, decodeError(t, back).Error.Code)

	missing := do(t, srv, http.MethodPost, "/v1/decisions/executed/99/status", `{"status":"completed"}`)
	require.Equal(t, http.StatusNotFound, missing.Code)
}

func TestImpactLifecycle(t *testing.T) {
	srv, clock := newTestServer(t, ratelimit.NoopLimiter{})
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/v1/decisions/execute", executeBody()).Code)

	// Not yet mature: nothing is generated.
	early := do(t, srv, http.MethodPost, "/v1/impact/check", `{"user_id":"user-1","role":"cfo"}`)
	require.Equal(t, http.StatusOK, early.Code)
	var created []model.ImpactUpdate
	decodeData(t, early, &created)
	assert.Empty(t, created)

	clock.SetOverride(serverNow.Add(15 * 24 * time.Hour))
	due := do(t, srv, http.MethodPost, "/v1/impact/check", `{"user_id":"user-1","role":"cfo"}`)
	require.Equal(t, http.StatusOK, due.Code)
	decodeData(t, due, &created)
	require.Len(t, created, 1)
	assert.Equal(t, "decision-1-story-cash-001", created[0].DecisionID)

	list := do(t, srv, http.MethodGet, "/v1/impact?user_id=user-1", "")
	require.Equal(t, http.StatusOK, list.Code)
	var updates []model.ImpactUpdate
	decodeData(t, list, &updates)
	require.Len(t, updates, 1)
	assert.False(t, updates[0].Read)

	read := do(t, srv, http.MethodPost, "/v1/impact/1/read", "")
	require.Equal(t, http.StatusOK, read.Code)

	list = do(t, srv, http.MethodGet, "/v1/impact?user_id=user-1", "")
	decodeData(t, list, &updates)
	require.Len(t, updates, 1)
	assert.True(t, updates[0].Read)

	notFound := do(t, srv, http.MethodPost, "/v1/impact/99/read", "")
	require.Equal(t, http.StatusNotFound, notFound.Code)
}

func TestWriteEndpointsRateLimited(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(0.001, 1)
	t.Cleanup(func() { _ = limiter.Close() })
	srv, _ := newTestServer(t, limiter)

	first := do(t, srv, http.MethodPost, "/v1/decisions/execute", executeBody())
	require.Equal(t, http.StatusCreated, first.Code)

	second := do(t, srv, http.MethodPost, "/v1/decisions/execute", executeBody())
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
	assert.Equal(t, model.ErrCodeRateLimited, decodeError(t, second).Error.Code)

	// Reads stay unthrottled.
	read := do(t, srv, http.MethodGet, "/v1/stories?role=cfo", "")
	assert.Equal(t, http.StatusOK, read.Code)
}

func TestRecoverMiddleware_KeepsServing(t *testing.T) {
	srv, _ := newTestServer(t, ratelimit.NoopLimiter{})

	// An unroutable path exercises the full chain without panicking.
	rec := do(t, srv, http.MethodGet, "/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	again := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, again.Code)
}
