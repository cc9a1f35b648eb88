// Package query applies AND-combined filter predicates over the active task
// set and augments results with blocking-graph annotations.
//
// Results preserve active-log order, which is priority order; the engine
// never re-sorts. Pagination is a plain limit plus a unique mode that fails
// hard on more than one match.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/steveyegge/skein/internal/graph"
	"github.com/steveyegge/skein/internal/types"
)

// DefaultLimit caps results when the caller does not specify a limit.
const DefaultLimit = 10

// ChildCounts reports open vs completed children of a parent task, for
// "task N of M" progress displays. Computed over both logs; deleted
// children are not counted on either side.
type ChildCounts struct {
	Open   int `json:"open"`
	Closed int `json:"closed"`
}

// Selection is the result of a Select call.
type Selection struct {
	Tasks       []*types.Task
	Annotations map[int]*graph.Annotation
	// Total is the match count before truncation.
	Total     int
	Truncated bool
	// Children is set when the filter named a parent id.
	Children *ChildCounts
}

// Select filters the active set and returns matches in file order.
//
// An empty filter status means "incomplete only"; types.StatusAny disables
// status filtering. A task-id predicate short-circuits the rest. The unique
// flag turns more-than-one match into an AmbiguousMatchError carrying the
// matching ids.
func Select(active, archive []*types.Task, annotations map[int]*graph.Annotation, f types.TaskFilter) (*Selection, error) {
	match, err := compile(f)
	if err != nil {
		return nil, err
	}

	var matches []*types.Task
	for _, t := range active {
		if match(t, annotations[t.ID]) {
			matches = append(matches, t)
		}
	}

	sel := &Selection{
		Annotations: annotations,
		Total:       len(matches),
	}

	if f.Unique && len(matches) > 1 {
		ids := make([]int, len(matches))
		for i, t := range matches {
			ids[i] = t.ID
		}
		return nil, &types.AmbiguousMatchError{Query: describeFilter(f), IDs: ids}
	}

	limit := f.Limit
	if f.Unique {
		limit = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(matches) > limit {
		matches = matches[:limit]
		sel.Truncated = true
	}
	sel.Tasks = matches

	if f.ParentID != nil {
		sel.Children = countChildren(*f.ParentID, active, archive)
	}

	return sel, nil
}

// compile builds the combined predicate for a filter.
func compile(f types.TaskFilter) (func(*types.Task, *graph.Annotation) bool, error) {
	if f.ID != nil {
		id := *f.ID
		return func(t *types.Task, _ *graph.Annotation) bool {
			return t.ID == id
		}, nil
	}

	if f.Status != "" && f.Status != types.StatusAny && !types.Status(f.Status).IsValid() {
		return nil, fmt.Errorf("%w: invalid status filter: %q", types.ErrValidation, f.Status)
	}
	if f.Type != "" && !types.TaskType(f.Type).IsValid() {
		return nil, fmt.Errorf("%w: invalid type filter: %q", types.ErrValidation, f.Type)
	}

	titleMatch, err := compileTitlePattern(f.TitlePattern)
	if err != nil {
		return nil, err
	}

	return func(t *types.Task, ann *graph.Annotation) bool {
		switch f.Status {
		case "":
			// Default view: not closed and not deleted.
			if !t.Status.IsIncomplete() {
				return false
			}
		case types.StatusAny:
		default:
			if t.Status != types.Status(f.Status) {
				return false
			}
		}
		if f.Category != "" && t.Category != f.Category {
			return false
		}
		if f.Type != "" && t.Type != types.TaskType(f.Type) {
			return false
		}
		if f.ParentID != nil && (t.ParentID == nil || *t.ParentID != *f.ParentID) {
			return false
		}
		if titleMatch != nil && !titleMatch(t.Title) {
			return false
		}
		if f.Blocked != nil {
			blocked := ann != nil && ann.Blocked
			if blocked != *f.Blocked {
				return false
			}
		}
		return true
	}, nil
}

// TitleMatcher returns the predicate used for title-pattern filters:
// case-insensitive regular-expression match when the pattern compiles,
// case-insensitive substring match otherwise. An empty pattern matches
// nothing.
func TitleMatcher(pattern string) func(string) bool {
	m, _ := compileTitlePattern(pattern)
	if m == nil {
		return func(string) bool { return false }
	}
	return m
}

// compileTitlePattern treats the pattern as a case-insensitive regular
// expression when it compiles, falling back to a case-insensitive substring
// match otherwise.
func compileTitlePattern(pattern string) (func(string) bool, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		needle := strings.ToLower(pattern)
		return func(title string) bool {
			return strings.Contains(strings.ToLower(title), needle)
		}, nil
	}
	return re.MatchString, nil
}

// countChildren does a second pass over both logs filtered by parent id.
func countChildren(parentID int, active, archive []*types.Task) *ChildCounts {
	counts := &ChildCounts{}
	for _, log := range [][]*types.Task{active, archive} {
		for _, t := range log {
			if t.ParentID == nil || *t.ParentID != parentID {
				continue
			}
			switch {
			case t.Status.IsIncomplete():
				counts.Open++
			case t.Status == types.StatusClosed:
				counts.Closed++
			}
		}
	}
	return counts
}

// describeFilter renders a filter for error messages.
func describeFilter(f types.TaskFilter) string {
	var parts []string
	if f.ID != nil {
		parts = append(parts, fmt.Sprintf("id=%d", *f.ID))
	}
	if f.Status != "" {
		parts = append(parts, "status="+f.Status)
	}
	if f.Category != "" {
		parts = append(parts, "category="+f.Category)
	}
	if f.Type != "" {
		parts = append(parts, "type="+f.Type)
	}
	if f.ParentID != nil {
		parts = append(parts, fmt.Sprintf("parent=%d", *f.ParentID))
	}
	if f.TitlePattern != "" {
		parts = append(parts, "title~"+f.TitlePattern)
	}
	if f.Blocked != nil {
		parts = append(parts, fmt.Sprintf("blocked=%t", *f.Blocked))
	}
	if len(parts) == 0 {
		return "(no filter)"
	}
	return strings.Join(parts, " ")
}
