package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/teamdraw/teamdraw-go/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeEmptyUsername       = "EMPTY_USERNAME"
	CodeInvalidTeam         = "INVALID_TEAM"
	CodeInvalidStatus       = "INVALID_STATUS"
	CodeDuplicateUsername   = "DUPLICATE_USERNAME"
	CodeParticipantNotFound = "PARTICIPANT_NOT_FOUND"
	CodeEmptyPool           = "EMPTY_POOL"
	CodeRoundExhausted      = "ROUND_EXHAUSTED"
	CodeSpinInProgress      = "SPIN_IN_PROGRESS"
	CodeDecisionPending     = "DECISION_PENDING"
	CodeNoSelection         = "NO_SELECTION"
	CodeStaleSelection      = "STALE_SELECTION"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeStorageError        = "STORAGE_ERROR"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrEmptyUsername):
		return &httpError{http.StatusBadRequest, APIError{CodeEmptyUsername, "Username must not be empty"}}
	case errors.Is(err, model.ErrInvalidTeam):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidTeam, "Team must be blue, yellow or red"}}
	case errors.Is(err, model.ErrInvalidStatus):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidStatus, "Invalid participant status"}}
	case errors.Is(err, model.ErrDuplicateUsername):
		return &httpError{http.StatusConflict, APIError{CodeDuplicateUsername, "Username is already registered"}}
	case errors.Is(err, model.ErrParticipantNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeParticipantNotFound, "Participant not found"}}
	case errors.Is(err, model.ErrEmptyPool):
		return &httpError{http.StatusConflict, APIError{CodeEmptyPool, "No active participants to draw from"}}
	case errors.Is(err, model.ErrRoundExhausted):
		return &httpError{http.StatusConflict, APIError{CodeRoundExhausted, "Every active participant has been drawn this round"}}
	case errors.Is(err, model.ErrSpinInProgress):
		return &httpError{http.StatusConflict, APIError{CodeSpinInProgress, "A spin is still being revealed"}}
	case errors.Is(err, model.ErrDecisionPending):
		return &httpError{http.StatusConflict, APIError{CodeDecisionPending, "A selection is awaiting a decision"}}
	case errors.Is(err, model.ErrNoSelection):
		return &httpError{http.StatusConflict, APIError{CodeNoSelection, "No selection is pending"}}
	case errors.Is(err, model.ErrStaleSelection):
		return &httpError{http.StatusConflict, APIError{CodeStaleSelection, "Selection is no longer valid, spin again"}}
	case errors.Is(err, model.ErrPersistence):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStorageError, "Storage backend unavailable"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
