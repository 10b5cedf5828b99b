package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Validation errors
	ErrEmptyUsername = errors.New("username is empty")
	ErrInvalidTeam   = errors.New("unknown team")
	ErrInvalidStatus = errors.New("unknown status")

	// Registry errors
	ErrDuplicateUsername   = errors.New("username is already registered")
	ErrParticipantNotFound = errors.New("participant not found")

	// Draw errors
	ErrEmptyPool       = errors.New("no active participants to draw from")
	ErrRoundExhausted  = errors.New("round exhausted: every participant has been drawn")
	ErrSpinInProgress  = errors.New("a spin is already in progress")
	ErrDecisionPending = errors.New("a selection is awaiting a decision")
	ErrNoSelection     = errors.New("no selection is awaiting a decision")
	ErrStaleSelection  = errors.New("selection is no longer valid")

	// Storage errors
	ErrPersistence = errors.New("persistence failure")
)

// NewPersistenceError wraps a backend write failure so callers can tell a
// retryable hard failure apart from user errors via errors.Is(err, ErrPersistence)
func NewPersistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}
