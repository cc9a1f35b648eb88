package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/steveyegge/skein/internal/graph"
	"github.com/steveyegge/skein/internal/store"
	"github.com/steveyegge/skein/internal/types"
)

// CompleteOpts locates and confirms the task to complete. Either ID or
// Category must be set. Title is required either way: it is checked against
// the stored title (case-insensitive, whitespace-normalized) as a
// lightweight optimistic-concurrency guard against acting on the wrong
// task.
type CompleteOpts struct {
	ID       int    // locate by id when > 0
	Category string // otherwise locate by category + title prefix
	Title    string
	// Comment, when non-empty, is appended to the description as a
	// completion note. Opt-in so complete/reopen stays a clean inverse.
	Comment string
}

// Complete closes a task: status becomes closed and the record moves from
// the active log to the end of the archive log.
func (e *Engine) Complete(ctx context.Context, opts CompleteOpts) (*Result, error) {
	if opts.Title == "" {
		return nil, fmt.Errorf("%w: complete requires the task title for confirmation", types.ErrValidation)
	}

	lock, err := e.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	snap, touched, err := e.load(true)
	if err != nil {
		return nil, err
	}

	task, err := locateForComplete(snap.active, opts)
	if err != nil {
		return nil, err
	}

	closed := task.Clone()
	closed.Status = types.StatusClosed
	if opts.Comment != "" {
		if closed.Description != "" {
			closed.Description += "\n"
		}
		closed.Description += opts.Comment
	}

	// Move writes the archive copy durably before rewriting the active log,
	// so a crash leaves the task visible somewhere.
	removeByID(snap, task.ID)
	if err := store.Move(closed, e.paths.Active, e.paths.Archive, false); err != nil {
		return nil, err
	}

	return &Result{
		Task:      closed,
		Touched:   appendUnique(appendUnique(touched, e.paths.Archive), e.paths.Active),
		Unblocked: newlyUnblocked(snap.annotations, graph.Compute(snap.active)),
	}, nil
}

// locateForComplete finds the target task and verifies the title check.
func locateForComplete(active []*types.Task, opts CompleteOpts) (*types.Task, error) {
	want := normalizeTitle(opts.Title)

	if opts.ID > 0 {
		task := store.FindByID(active, opts.ID)
		if task == nil {
			return nil, fmt.Errorf("task %d: %w in active log", opts.ID, types.ErrNotFound)
		}
		if normalizeTitle(task.Title) != want {
			return nil, fmt.Errorf("%w: title %q does not match task %d (%q)",
				types.ErrValidation, opts.Title, opts.ID, task.Title)
		}
		return task, nil
	}

	if opts.Category == "" {
		return nil, fmt.Errorf("%w: complete requires an id or a category", types.ErrValidation)
	}

	var matches []*types.Task
	for _, t := range active {
		if t.Category != opts.Category {
			continue
		}
		if strings.HasPrefix(normalizeTitle(t.Title), want) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no task in category %q with title prefix %q: %w",
			opts.Category, opts.Title, types.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		ids := make([]int, len(matches))
		for i, t := range matches {
			ids[i] = t.ID
		}
		return nil, &types.AmbiguousMatchError{
			Query: fmt.Sprintf("category=%s title~%s", opts.Category, opts.Title),
			IDs:   ids,
		}
	}
}

// normalizeTitle lowercases and collapses all whitespace runs to single
// spaces for the optimistic title comparison.
func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// removeByID drops the task from the snapshot's active list.
func removeByID(snap *snapshot, id int) {
	kept := snap.active[:0]
	for _, t := range snap.active {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	snap.active = kept
}
