package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for common engine conditions. Operations wrap these with
// %w plus context (which id or title was searched for), so callers can test
// with errors.Is.
var (
	// ErrNotFound indicates an id/title/pattern matched zero records
	ErrNotFound = errors.New("task not found")

	// ErrValidation indicates a required field is missing or an enum value
	// is outside its domain
	ErrValidation = errors.New("validation failed")

	// ErrAmbiguous indicates a unique query or a title-pattern operation
	// matched more than one record
	ErrAmbiguous = errors.New("ambiguous match")

	// ErrBlockedDependents indicates a delete would orphan other tasks'
	// blocked-by references without an explicit override
	ErrBlockedDependents = errors.New("task has blocked dependents")
)

// AmbiguousMatchError reports the matching ids so the caller can
// disambiguate.
type AmbiguousMatchError struct {
	Query string
	IDs   []int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("ambiguous match for %q: matches tasks %s", e.Query, joinIDs(e.IDs))
}

// Unwrap lets errors.Is(err, ErrAmbiguous) succeed.
func (e *AmbiguousMatchError) Unwrap() error { return ErrAmbiguous }

// BlockedDependentsError reports which incomplete tasks declare the target
// as a blocked-by dependency.
type BlockedDependentsError struct {
	ID         int
	Dependents []int
}

func (e *BlockedDependentsError) Error() string {
	return fmt.Sprintf("task %d is a blocker for incomplete tasks %s (use force to delete anyway)",
		e.ID, joinIDs(e.Dependents))
}

// Unwrap lets errors.Is(err, ErrBlockedDependents) succeed.
func (e *BlockedDependentsError) Unwrap() error { return ErrBlockedDependents }

func joinIDs(ids []int) string {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}
