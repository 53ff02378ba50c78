// Package apperr defines the error kinds the scoring ledger reports to its callers.
// Each kind is its own type so HTTP handlers (and tests) can tell them apart with
// errors.As instead of matching on message strings.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record addressed by id does not exist in the league.
var ErrNotFound = errors.New("record not found")

// ValidationError reports malformed input: a bad policy field, a point split that
// doesn't sum to 20, a missing manual handicap, and so on. Field names the offending
// input so the admin console can highlight it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid is shorthand for building a ValidationError with a formatted reason.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ComputationError means a handicap, net score or point value came out NaN or
// infinite. It always aborts the enclosing transaction.
type ComputationError struct {
	Record string // e.g. "matchup 5f1c... (week 4)"
	Field  string // e.g. "team_a_handicap"
	Value  float64
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("non-finite %s (%v) on %s", e.Field, e.Value, e.Record)
}

// ConflictError is returned when a submission targets a team+week combination
// that is already recorded.
type ConflictError struct {
	Week    int
	TeamIDs []uuid.UUID
}

func (e *ConflictError) Error() string {
	ids := make([]string, len(e.TeamIDs))
	for i, id := range e.TeamIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("week %d already recorded for team(s) %s", e.Week, strings.Join(ids, ", "))
}
