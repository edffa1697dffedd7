package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRequest marks request validation failures so transport code can
// map them to a 400 without matching message text.
var ErrInvalidRequest = errors.New("invalid request")

// Field length limits for execute requests. These bound caller-controlled
// text before it reaches SQLite TEXT columns.
const (
	MaxDecisionIDLen = 200
	MaxUserIDLen     = 200
	MaxStrategyLen   = 2 * 1024
	MaxTitleLen      = 500
)

// ExecuteRequest is the payload a consumer sends to commit to a decision.
type ExecuteRequest struct {
	DecisionID       string  `json:"decision_id"`
	StoryID          string  `json:"story_id,omitempty"`
	UserID           string  `json:"user_id"`
	Role             Role    `json:"role"`
	SelectedStrategy string  `json:"selected_strategy,omitempty"`
	ExpectedOutcome  Outcome `json:"expected_outcome"`
	AgentID          string  `json:"agent_id,omitempty"`
	Category         string  `json:"category,omitempty"`
	Title            string  `json:"title,omitempty"`
}

// ValidateExecuteRequest checks required fields and per-field length limits.
func ValidateExecuteRequest(req ExecuteRequest) error {
	if req.DecisionID == "" {
		return fmt.Errorf("%w: decision_id is required", ErrInvalidRequest)
	}
	if req.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	if len(req.DecisionID) > MaxDecisionIDLen {
		return fmt.Errorf("%w: decision_id exceeds maximum length of %d characters", ErrInvalidRequest, MaxDecisionIDLen)
	}
	if len(req.UserID) > MaxUserIDLen {
		return fmt.Errorf("%w: user_id exceeds maximum length of %d characters", ErrInvalidRequest, MaxUserIDLen)
	}
	if len(req.SelectedStrategy) > MaxStrategyLen {
		return fmt.Errorf("%w: selected_strategy exceeds maximum length of %d bytes", ErrInvalidRequest, MaxStrategyLen)
	}
	if len(req.Title) > MaxTitleLen {
		return fmt.Errorf("%w: title exceeds maximum length of %d characters", ErrInvalidRequest, MaxTitleLen)
	}
	return nil
}

// ResponseMeta accompanies every API response.
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// APIResponse is the standard success envelope.
type APIResponse struct {
	Data any          `json:"data"`
	Meta ResponseMeta `json:"meta"`
}

// ErrorDetail carries a machine-readable code and human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIError is the standard error envelope.
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// Error codes returned by the API.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeRateLimited   = "RATE_LIMITED"
)
