package query

import (
	"errors"
	"fmt"
	"testing"

	"github.com/steveyegge/skein/internal/graph"
	"github.com/steveyegge/skein/internal/types"
)

func task(id int, status types.Status) *types.Task {
	return &types.Task{
		ID:       id,
		Status:   status,
		Title:    fmt.Sprintf("task %d", id),
		Category: "simple",
		Type:     types.TypeTask,
	}
}

func selectIDs(t *testing.T, active []*types.Task, f types.TaskFilter) []int {
	t.Helper()
	sel, err := Select(active, nil, graph.Compute(active), f)
	if err != nil {
		t.Fatalf("Select(): %v", err)
	}
	ids := make([]int, len(sel.Tasks))
	for i, task := range sel.Tasks {
		ids[i] = task.ID
	}
	return ids
}

func wantIDs(t *testing.T, got, want []int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got ids %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got ids %v, want %v", got, want)
		}
	}
}

func TestSelectDefaultExcludesCompleted(t *testing.T) {
	active := []*types.Task{
		task(1, types.StatusOpen),
		task(2, types.StatusClosed),
		task(3, types.StatusInProgress),
		task(4, types.StatusBlocked),
	}
	wantIDs(t, selectIDs(t, active, types.TaskFilter{}), []int{1, 3, 4})
}

func TestSelectStatusAny(t *testing.T) {
	active := []*types.Task{
		task(1, types.StatusOpen),
		task(2, types.StatusClosed),
	}
	wantIDs(t, selectIDs(t, active, types.TaskFilter{Status: types.StatusAny}), []int{1, 2})
}

func TestSelectExactStatus(t *testing.T) {
	active := []*types.Task{
		task(1, types.StatusOpen),
		task(2, types.StatusInProgress),
	}
	wantIDs(t, selectIDs(t, active, types.TaskFilter{Status: "in_progress"}), []int{2})
}

func TestSelectInvalidFilterValues(t *testing.T) {
	active := []*types.Task{task(1, types.StatusOpen)}

	_, err := Select(active, nil, nil, types.TaskFilter{Status: "done"})
	if !errors.Is(err, types.ErrValidation) {
		t.Errorf("invalid status filter: got %v, want ErrValidation", err)
	}
	_, err = Select(active, nil, nil, types.TaskFilter{Type: "epic"})
	if !errors.Is(err, types.ErrValidation) {
		t.Errorf("invalid type filter: got %v, want ErrValidation", err)
	}
}

func TestSelectIDShortCircuits(t *testing.T) {
	closed := task(2, types.StatusClosed)
	active := []*types.Task{task(1, types.StatusOpen), closed}

	// The id predicate ignores the default incomplete-only rule.
	id := 2
	wantIDs(t, selectIDs(t, active, types.TaskFilter{ID: &id}), []int{2})
}

func TestSelectCombinedPredicates(t *testing.T) {
	a := task(1, types.StatusOpen)
	a.Category = "backend"
	b := task(2, types.StatusOpen)
	b.Category = "backend"
	b.Type = types.TypeBug
	c := task(3, types.StatusOpen)
	c.Category = "frontend"
	c.Type = types.TypeBug

	active := []*types.Task{a, b, c}
	got := selectIDs(t, active, types.TaskFilter{Category: "backend", Type: "bug"})
	wantIDs(t, got, []int{2})
}

func TestSelectParentFilterAndChildCounts(t *testing.T) {
	parent := task(1, types.StatusOpen)
	parent.Type = types.TypeStory
	child1 := task(2, types.StatusOpen)
	child2 := task(3, types.StatusOpen)
	deletedChild := task(4, types.StatusDeleted)
	closedChild := task(5, types.StatusClosed)
	pid := 1
	for _, c := range []*types.Task{child1, child2, deletedChild, closedChild} {
		c.ParentID = &pid
	}

	active := []*types.Task{parent, child1, child2}
	archive := []*types.Task{deletedChild, closedChild}

	sel, err := Select(active, archive, graph.Compute(active), types.TaskFilter{ParentID: &pid})
	if err != nil {
		t.Fatalf("Select(): %v", err)
	}
	if len(sel.Tasks) != 2 {
		t.Errorf("got %d children, want 2", len(sel.Tasks))
	}
	if sel.Children == nil {
		t.Fatal("Children counts missing for parent filter")
	}
	if sel.Children.Open != 2 || sel.Children.Closed != 1 {
		t.Errorf("Children = %+v, want open=2 closed=1 (deleted not counted)", sel.Children)
	}
}

func TestSelectTitlePattern(t *testing.T) {
	a := task(1, types.StatusOpen)
	a.Title = "Fix login timeout"
	b := task(2, types.StatusOpen)
	b.Title = "Add logout (button)"
	active := []*types.Task{a, b}

	// Valid regexp.
	wantIDs(t, selectIDs(t, active, types.TaskFilter{TitlePattern: "^Fix"}), []int{1})
	// Regexps match case-insensitively.
	wantIDs(t, selectIDs(t, active, types.TaskFilter{TitlePattern: "^fix"}), []int{1})
	wantIDs(t, selectIDs(t, active, types.TaskFilter{TitlePattern: "LOGIN"}), []int{1})
	// Invalid regexp falls back to case-insensitive substring.
	wantIDs(t, selectIDs(t, active, types.TaskFilter{TitlePattern: "LOGIN ("}), nil)
	wantIDs(t, selectIDs(t, active, types.TaskFilter{TitlePattern: "LOGOUT ("}), []int{2})
}

func TestSelectBlockedFilter(t *testing.T) {
	blocker := task(1, types.StatusOpen)
	blocked := task(2, types.StatusOpen)
	blocked.Relations = []types.Relation{{ID: 1, RelatesTo: 1, AsType: types.RelBlockedBy}}
	active := []*types.Task{blocker, blocked}

	yes, no := true, false
	wantIDs(t, selectIDs(t, active, types.TaskFilter{Blocked: &yes}), []int{2})
	wantIDs(t, selectIDs(t, active, types.TaskFilter{Blocked: &no}), []int{1})
}

func TestSelectLimitAndTruncation(t *testing.T) {
	var active []*types.Task
	for i := 1; i <= 15; i++ {
		active = append(active, task(i, types.StatusOpen))
	}

	sel, err := Select(active, nil, graph.Compute(active), types.TaskFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Tasks) != DefaultLimit {
		t.Errorf("default limit returned %d tasks, want %d", len(sel.Tasks), DefaultLimit)
	}
	if !sel.Truncated || sel.Total != 15 {
		t.Errorf("Truncated=%t Total=%d, want true/15", sel.Truncated, sel.Total)
	}

	sel, err = Select(active, nil, graph.Compute(active), types.TaskFilter{Limit: 20})
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Tasks) != 15 || sel.Truncated {
		t.Errorf("explicit limit 20: got %d tasks, Truncated=%t", len(sel.Tasks), sel.Truncated)
	}
}

func TestSelectUnique(t *testing.T) {
	a := task(1, types.StatusOpen)
	a.Title = "deploy service"
	b := task(2, types.StatusOpen)
	b.Title = "deploy docs"
	active := []*types.Task{a, b}

	sel, err := Select(active, nil, graph.Compute(active), types.TaskFilter{TitlePattern: "service", Unique: true})
	if err != nil {
		t.Fatalf("unique with one match: %v", err)
	}
	if len(sel.Tasks) != 1 || sel.Tasks[0].ID != 1 {
		t.Errorf("unique returned %v", sel.Tasks)
	}

	_, err = Select(active, nil, graph.Compute(active), types.TaskFilter{TitlePattern: "deploy", Unique: true})
	var ambiguous *types.AmbiguousMatchError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("unique with two matches: got %v, want AmbiguousMatchError", err)
	}
	if len(ambiguous.IDs) != 2 {
		t.Errorf("ambiguous IDs = %v, want both matches", ambiguous.IDs)
	}
}

func TestSelectPreservesFileOrder(t *testing.T) {
	active := []*types.Task{
		task(5, types.StatusOpen),
		task(1, types.StatusOpen),
		task(3, types.StatusOpen),
	}
	wantIDs(t, selectIDs(t, active, types.TaskFilter{}), []int{5, 1, 3})
}
