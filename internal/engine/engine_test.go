package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/steveyegge/skein/internal/store"
	"github.com/steveyegge/skein/internal/types"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(store.DefaultPaths(t.TempDir()))
}

func newTask(title string) types.Task {
	return types.Task{
		Title:    title,
		Category: "simple",
	}
}

func mustAdd(t *testing.T, e *Engine, task types.Task) *types.Task {
	t.Helper()
	result, err := e.Add(context.Background(), task, AddOpts{})
	require.NoError(t, err)
	return result.Task
}

func activeIDs(t *testing.T, e *Engine) []int {
	t.Helper()
	read, err := store.ReadAll(e.Paths().Active)
	require.NoError(t, err)
	ids := make([]int, len(read.Tasks))
	for i, task := range read.Tasks {
		ids[i] = task.ID
	}
	return ids
}

func archiveIDs(t *testing.T, e *Engine) []int {
	t.Helper()
	read, err := store.ReadAll(e.Paths().Archive)
	require.NoError(t, err)
	ids := make([]int, len(read.Tasks))
	for i, task := range read.Tasks {
		ids[i] = task.ID
	}
	return ids
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	e := newTestEngine(t)

	first := mustAdd(t, e, newTask("first"))
	second := mustAdd(t, e, newTask("second"))

	require.Equal(t, 1, first.ID)
	require.Equal(t, 2, second.ID)
	require.Equal(t, types.StatusOpen, first.Status)
	require.Equal(t, types.TypeTask, first.Type)
	require.Equal(t, []int{1, 2}, activeIDs(t, e))
}

func TestAddFront(t *testing.T) {
	e := newTestEngine(t)

	mustAdd(t, e, newTask("normal"))
	result, err := e.Add(context.Background(), newTask("urgent"), AddOpts{Front: true})
	require.NoError(t, err)
	require.Equal(t, 2, result.Task.ID)

	require.Equal(t, []int{2, 1}, activeIDs(t, e), "front insert should lead the log")
}

func TestAddNeverReusesIDs(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	mustAdd(t, e, newTask("a"))
	doomed := mustAdd(t, e, newTask("b"))

	_, err := e.Delete(ctx, DeleteOpts{ID: doomed.ID})
	require.NoError(t, err)

	third := mustAdd(t, e, newTask("c"))
	require.Equal(t, 3, third.ID, "ids stay burned after delete")
}

func TestAddValidates(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, types.Task{Category: "simple"}, AddOpts{})
	require.True(t, errors.Is(err, types.ErrValidation), "missing title: %v", err)

	closed := newTask("done already")
	closed.Status = types.StatusClosed
	_, err = e.Add(ctx, closed, AddOpts{})
	require.True(t, errors.Is(err, types.ErrValidation), "completed status on create: %v", err)
}

func TestAddRelationIDsAssigned(t *testing.T) {
	e := newTestEngine(t)

	task := newTask("dependent")
	task.Relations = []types.Relation{
		{RelatesTo: 10, AsType: types.RelBlockedBy},
		{RelatesTo: 11, AsType: types.RelRelated},
	}
	created := mustAdd(t, e, task)
	require.Equal(t, 1, created.Relations[0].ID)
	require.Equal(t, 2, created.Relations[1].ID)
}

func TestAddRelationIDsSkipSuppliedIDs(t *testing.T) {
	e := newTestEngine(t)

	// A zero-id entry before a caller-supplied id must not collide with it.
	task := newTask("dependent")
	task.Relations = []types.Relation{
		{RelatesTo: 10, AsType: types.RelBlockedBy},
		{ID: 1, RelatesTo: 11, AsType: types.RelRelated},
	}
	created := mustAdd(t, e, task)

	seen := map[int]bool{}
	for _, r := range created.Relations {
		require.NotZero(t, r.ID)
		require.False(t, seen[r.ID], "relation id %d assigned twice", r.ID)
		seen[r.ID] = true
	}
}

func TestAddReportsTouchedPaths(t *testing.T) {
	e := newTestEngine(t)
	result, err := e.Add(context.Background(), newTask("a"), AddOpts{})
	require.NoError(t, err)
	require.Equal(t, []string{e.Paths().Active}, result.Touched)
}

func TestUpdateFields(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	created := mustAdd(t, e, newTask("before"))

	title := "after"
	desc := "new description"
	status := types.StatusInProgress
	result, err := e.Update(ctx, created.ID, UpdateOpts{
		Title:       &title,
		Description: &desc,
		Status:      &status,
		Meta:        map[string]string{"owner": "agent-1"},
	})
	require.NoError(t, err)
	require.Equal(t, "after", result.Task.Title)
	require.Equal(t, "new description", result.Task.Description)
	require.Equal(t, types.StatusInProgress, result.Task.Status)
	require.Equal(t, "agent-1", result.Task.Meta["owner"])

	// The change is durable, not just in the returned value.
	got, _, err := e.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "after", got.Title)
}

func TestUpdateMetaRemoval(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	task := newTask("meta")
	task.Meta = map[string]string{"keep": "1", "drop": "2"}
	created := mustAdd(t, e, task)

	result, err := e.Update(ctx, created.ID, UpdateOpts{Meta: map[string]string{"drop": ""}})
	require.NoError(t, err)
	require.Equal(t, "1", result.Task.Meta["keep"])
	_, present := result.Task.Meta["drop"]
	require.False(t, present, "empty value should remove the key")
}

func TestUpdateRejectsCompletedStatus(t *testing.T) {
	e := newTestEngine(t)
	created := mustAdd(t, e, newTask("a"))

	status := types.StatusClosed
	_, err := e.Update(context.Background(), created.ID, UpdateOpts{Status: &status})
	require.True(t, errors.Is(err, types.ErrValidation), "got %v", err)
}

func TestUpdateRelations(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	created := mustAdd(t, e, newTask("a"))

	result, err := e.Update(ctx, created.ID, UpdateOpts{
		AddRelations: []types.Relation{{RelatesTo: 42, AsType: types.RelBlockedBy}},
	})
	require.NoError(t, err)
	require.Len(t, result.Task.Relations, 1)
	rid := result.Task.Relations[0].ID
	require.Equal(t, 1, rid)

	result, err = e.Update(ctx, created.ID, UpdateOpts{RemoveRelationIDs: []int{rid}})
	require.NoError(t, err)
	require.Empty(t, result.Task.Relations)
}

func TestUpdateArchivedTaskRefused(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	created := mustAdd(t, e, newTask("a"))

	_, err := e.Complete(ctx, CompleteOpts{ID: created.ID, Title: created.Title})
	require.NoError(t, err)

	title := "rewrite history"
	_, err = e.Update(ctx, created.ID, UpdateOpts{Title: &title})
	require.True(t, errors.Is(err, types.ErrNotFound), "got %v", err)
	require.Contains(t, err.Error(), "immutable")
}

func TestUpdateNotFound(t *testing.T) {
	e := newTestEngine(t)
	title := "x"
	_, err := e.Update(context.Background(), 99, UpdateOpts{Title: &title})
	require.True(t, errors.Is(err, types.ErrNotFound), "got %v", err)
}

func TestSharedContextPrefixAndOrder(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	created := mustAdd(t, e, newTask("story"))

	_, err := e.Update(ctx, created.ID, UpdateOpts{
		SharedContext: []string{"older note"},
		ActingTaskID:  2,
	})
	require.NoError(t, err)
	result, err := e.Update(ctx, created.ID, UpdateOpts{
		SharedContext: []string{"newer note"},
		ActingTaskID:  3,
	})
	require.NoError(t, err)

	require.Equal(t, []string{"Task 3: newer note", "Task 2: older note"}, result.Task.SharedContext)
}

func TestSharedContextCapDropsOldest(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	created := mustAdd(t, e, newTask("story"))

	// Fill past the cap with ~5KB entries; the oldest must fall off.
	entry := strings.Repeat("x", 5*1024)
	_, err := e.Update(ctx, created.ID, UpdateOpts{SharedContext: []string{"first " + entry}, ActingTaskID: 1})
	require.NoError(t, err)
	for i := 0; i < 12; i++ {
		_, err = e.Update(ctx, created.ID, UpdateOpts{SharedContext: []string{entry}, ActingTaskID: 1})
		require.NoError(t, err)
	}

	got, _, err := e.Get(ctx, created.ID)
	require.NoError(t, err)
	for _, note := range got.SharedContext {
		require.NotContains(t, note, "first", "oldest entry should have been dropped")
	}
}

func TestSharedContextSingleOversizedEntryRejected(t *testing.T) {
	e := newTestEngine(t)
	created := mustAdd(t, e, newTask("story"))

	huge := strings.Repeat("x", types.SharedContextMaxBytes+1)
	_, err := e.Update(context.Background(), created.ID, UpdateOpts{
		SharedContext: []string{huge},
		ActingTaskID:  1,
	})
	require.True(t, errors.Is(err, types.ErrValidation), "got %v", err)
}

func TestGetFromEitherLog(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	created := mustAdd(t, e, newTask("a"))
	_, err := e.Complete(ctx, CompleteOpts{ID: created.ID, Title: created.Title})
	require.NoError(t, err)

	got, _, err := e.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, types.StatusClosed, got.Status)

	_, _, err = e.Get(ctx, 404)
	require.True(t, errors.Is(err, types.ErrNotFound), "got %v", err)
}

func TestSelectAnnotatesBlocking(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	blocker := mustAdd(t, e, newTask("blocker"))
	dependent := newTask("dependent")
	dependent.Relations = []types.Relation{{RelatesTo: blocker.ID, AsType: types.RelBlockedBy}}
	created := mustAdd(t, e, dependent)

	sel, malformed, err := e.Select(ctx, types.TaskFilter{})
	require.NoError(t, err)
	require.Empty(t, malformed)
	require.True(t, sel.Annotations[created.ID].Blocked)
	require.False(t, sel.Annotations[blocker.ID].Blocked)
}

func TestStats(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	a := mustAdd(t, e, newTask("a"))
	blocked := newTask("b")
	blocked.Relations = []types.Relation{{RelatesTo: a.ID, AsType: types.RelBlockedBy}}
	mustAdd(t, e, blocked)
	c := mustAdd(t, e, newTask("c"))

	_, err := e.Complete(ctx, CompleteOpts{ID: c.ID, Title: c.Title})
	require.NoError(t, err)

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Total)
	require.Equal(t, 2, stats.Open)
	require.Equal(t, 1, stats.Closed)
	require.Equal(t, 1, stats.Ready, "only the unblocked open task is ready")
}
