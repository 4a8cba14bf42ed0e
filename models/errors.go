package models

import (
	"errors"
	"fmt"
)

// Domain error kinds. Persistence failures are fatal to the operation that
// hit them and always propagate; DuplicateEvent is informational only.

// PhaseViolationError reports an event kind executing outside its phase.
// This is a programming error in the caller and should surface loudly.
type PhaseViolationError struct {
	Phase Phase
	Kind  EventKind
}

func (e *PhaseViolationError) Error() string {
	return fmt.Sprintf("phase violation: event kind %s not permitted in phase %s", e.Kind, e.Phase)
}

// CapViolationError reports a transaction that would breach cap rules.
type CapViolationError struct {
	TeamID  int
	Season  int
	Overage int64
	Detail  string
}

func (e *CapViolationError) Error() string {
	return fmt.Sprintf("cap violation: team %d season %d over by $%d: %s", e.TeamID, e.Season, e.Overage, e.Detail)
}

// InvalidTransactionError carries the validator's rejection reasons.
type InvalidTransactionError struct {
	Reasons []string
}

func (e *InvalidTransactionError) Error() string {
	if len(e.Reasons) == 1 {
		return "invalid transaction: " + e.Reasons[0]
	}
	return fmt.Sprintf("invalid transaction (%d reasons): %v", len(e.Reasons), e.Reasons)
}

// PersistenceError wraps a store failure. These are never swallowed: the
// caller of an advance operation must observe them and retry or abort.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// SimulatorError marks a single game's simulation failure. The day's
// remaining events still run; the game can be retried by re-dispatching.
type SimulatorError struct {
	GameID string
	Err    error
}

func (e *SimulatorError) Error() string {
	return fmt.Sprintf("simulator failure for game %s: %v", e.GameID, e.Err)
}

func (e *SimulatorError) Unwrap() error { return e.Err }

// DuplicateEventError reports an idempotent insert hitting an existing
// structured id. Informational: callers keep the prior event id and move on.
type DuplicateEventError struct {
	StructuredID string
	ExistingID   string
}

func (e *DuplicateEventError) Error() string {
	return fmt.Sprintf("duplicate event %s (existing record %s)", e.StructuredID, e.ExistingID)
}

// ErrNotFound is returned when a scoped lookup matches nothing.
var ErrNotFound = errors.New("not found")

// NotFoundError wraps ErrNotFound with entity context.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IsNotFound reports whether err is any not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
