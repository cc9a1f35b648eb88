package engine

import (
	"context"
	"fmt"

	"github.com/steveyegge/skein/internal/store"
	"github.com/steveyegge/skein/internal/types"
)

// AddOpts controls task creation.
type AddOpts struct {
	// Front inserts the task at the front of the active log instead of the
	// end, making it the highest-priority match for "first matching task"
	// queries.
	Front bool
}

// Add creates a new task. The id is allocated as 1 + the highest id across
// both logs, so ids are never reused even after deletion. Relations
// supplied at creation are stored verbatim; referencing a not-yet-existing
// id is allowed and simply cannot block until the target exists.
func (e *Engine) Add(ctx context.Context, task types.Task, opts AddOpts) (*Result, error) {
	lock, err := e.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	snap, touched, err := e.load(true)
	if err != nil {
		return nil, err
	}

	task.SetDefaults()
	task.ID = store.NextID(snap.active, snap.archive)
	for i := range task.Relations {
		if task.Relations[i].ID == 0 {
			task.Relations[i].ID = task.NextRelationID()
		}
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	if !task.Status.IsIncomplete() {
		return nil, fmt.Errorf("%w: new tasks must have an incomplete status, got %q", types.ErrValidation, task.Status)
	}
	if err := capSharedContext(&task); err != nil {
		return nil, err
	}

	if opts.Front {
		err = store.Prepend(e.paths.Active, &task)
	} else {
		err = store.Append(e.paths.Active, &task)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Task:    &task,
		Touched: appendUnique(touched, e.paths.Active),
	}, nil
}

// appendUnique appends path if not already present.
func appendUnique(paths []string, path string) []string {
	for _, p := range paths {
		if p == path {
			return paths
		}
	}
	return append(paths, path)
}
