package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vantage-intel/vantage/internal/feed"
	"github.com/vantage-intel/vantage/internal/impact"
	"github.com/vantage-intel/vantage/internal/model"
	"github.com/vantage-intel/vantage/internal/roles"
	"github.com/vantage-intel/vantage/internal/storage"
	"github.com/vantage-intel/vantage/internal/tracker"
)

// Handlers holds the dependencies shared by all HTTP handlers.
type Handlers struct {
	feed      *feed.Feed
	tracker   *tracker.Tracker
	simulator *impact.Simulator
	logger    *slog.Logger
	version   string
	maxBody   int64
}

// HandlersDeps configures NewHandlers.
type HandlersDeps struct {
	Feed                *feed.Feed
	Tracker             *tracker.Tracker
	Simulator           *impact.Simulator
	Logger              *slog.Logger
	Version             string
	MaxRequestBodyBytes int64
}

// NewHandlers creates the handler set.
func NewHandlers(deps HandlersDeps) *Handlers {
	maxBody := deps.MaxRequestBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &Handlers{
		feed:      deps.Feed,
		tracker:   deps.Tracker,
		simulator: deps.Simulator,
		logger:    deps.Logger,
		version:   deps.Version,
		maxBody:   maxBody,
	}
}

// parseRole validates the role query parameter against the persona table.
func parseRole(r *http.Request) (model.Role, error) {
	role := model.Role(r.URL.Query().Get("role"))
	if _, err := roles.Lookup(role); err != nil {
		return "", err
	}
	return role, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	if v := r.URL.Query().Get(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// HandleStories serves GET /v1/stories.
func (h *Handlers) HandleStories(w http.ResponseWriter, r *http.Request) {
	role, err := parseRole(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}
	opts := feed.Options{
		Filter:     model.FilterType(r.URL.Query().Get("filter")),
		MaxStories: queryInt(r, "max", 0),
	}
	res, err := h.feed.GetStories(r.Context(), role, opts)
	if err != nil {
		h.logger.Error("stories failed", "error", err, "role", role)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to load stories")
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// HandleBriefing serves GET /v1/briefing: stories plus derived decisions.
func (h *Handlers) HandleBriefing(w http.ResponseWriter, r *http.Request) {
	role, err := parseRole(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}
	opts := feed.Options{
		Filter:       model.FilterType(r.URL.Query().Get("filter")),
		MaxStories:   queryInt(r, "max_stories", 0),
		MaxDecisions: queryInt(r, "max_decisions", 0),
		MinScore:     queryFloat(r, "min_score", 0),
	}
	res, err := h.feed.GetStoriesAndDecisions(r.Context(), role, opts)
	if err != nil {
		h.logger.Error("briefing failed", "error", err, "role", role)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to load briefing")
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// HandleTopDecisions serves GET /v1/decisions/top.
func (h *Handlers) HandleTopDecisions(w http.ResponseWriter, r *http.Request) {
	role, err := parseRole(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}
	opts := feed.Options{
		MaxDecisions: queryInt(r, "max", 0),
		MinScore:     queryFloat(r, "min_score", 0),
	}
	res, err := h.feed.GetTopDecisions(r.Context(), role, opts)
	if err != nil {
		h.logger.Error("top decisions failed", "error", err, "role", role)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to load decisions")
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// HandleStoryByID serves GET /v1/stories/{story_id}.
func (h *Handlers) HandleStoryByID(w http.ResponseWriter, r *http.Request) {
	role, err := parseRole(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}
	story, err := h.feed.GetStoryByID(r.Context(), r.PathValue("story_id"), role)
	if err != nil {
		h.logger.Error("story lookup failed", "error", err, "role", role)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to load story")
		return
	}
	if story == nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "story not found")
		return
	}
	writeJSON(w, r, http.StatusOK, story)
}

// HandleDecisionByID serves GET /v1/decisions/{decision_id}.
func (h *Handlers) HandleDecisionByID(w http.ResponseWriter, r *http.Request) {
	role, err := parseRole(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}
	dec, err := h.feed.GetDecisionByID(r.Context(), r.PathValue("decision_id"), role)
	if err != nil {
		h.logger.Error("decision lookup failed", "error", err, "role", role)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to load decision")
		return
	}
	if dec == nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "decision not found")
		return
	}
	writeJSON(w, r, http.StatusOK, dec)
}

// HandleExecute serves POST /v1/decisions/execute.
func (h *Handlers) HandleExecute(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req model.ExecuteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body")
		return
	}
	if _, err := roles.Lookup(req.Role); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	rec, err := h.tracker.Execute(r.Context(), req)
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	case err != nil:
		h.logger.Error("execute failed", "error", err, "decision_id", req.DecisionID)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to record execution")
		return
	}
	writeJSON(w, r, http.StatusCreated, rec)
}

// HandleExecuted serves GET /v1/decisions/executed.
func (h *Handlers) HandleExecuted(w http.ResponseWriter, r *http.Request) {
	recs, err := h.tracker.List(r.Context(),
		r.URL.Query().Get("user_id"),
		model.Role(r.URL.Query().Get("role")))
	if err != nil {
		h.logger.Error("list executed failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to list executed decisions")
		return
	}
	writeJSON(w, r, http.StatusOK, recs)
}

// HandleUpdateStatus serves POST /v1/decisions/executed/{execution_id}/status.
func (h *Handlers) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	id, err := strconv.ParseInt(r.PathValue("execution_id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid execution id")
		return
	}
	var req struct {
		Status model.ExecutionStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body")
		return
	}

	rec, err := h.tracker.UpdateStatus(r.Context(), id, req.Status)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "execution not found")
		return
	case errors.Is(err, tracker.ErrBadTransition):
		writeError(w, r, http.StatusConflict, model.ErrCodeConflict, err.Error())
		return
	case err != nil:
		h.logger.Error("status update failed", "error", err, "execution_id", id)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to update status")
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

// HandleImpactCheck serves POST /v1/impact/check. It generates any due
// impact updates and returns only the newly created ones.
func (h *Handlers) HandleImpactCheck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req struct {
		UserID string     `json:"user_id"`
		Role   model.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body")
		return
	}

	created, err := h.simulator.CheckAndGenerate(r.Context(), req.UserID, req.Role)
	if err != nil {
		h.logger.Error("impact check failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to generate impact updates")
		return
	}
	writeJSON(w, r, http.StatusOK, created)
}

// HandleImpactList serves GET /v1/impact.
func (h *Handlers) HandleImpactList(w http.ResponseWriter, r *http.Request) {
	updates, err := h.simulator.ListUpdates(r.Context(),
		r.URL.Query().Get("user_id"),
		model.Role(r.URL.Query().Get("role")))
	if err != nil {
		h.logger.Error("impact list failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to list impact updates")
		return
	}
	writeJSON(w, r, http.StatusOK, updates)
}

// HandleImpactRead serves POST /v1/impact/{update_id}/read.
func (h *Handlers) HandleImpactRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("update_id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid update id")
		return
	}
	if err := h.simulator.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "impact update not found")
			return
		}
		h.logger.Error("mark read failed", "error", err, "update_id", id)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to mark update read")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"id": id, "read": true})
}

// HandleHealth serves GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}
