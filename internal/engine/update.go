package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/steveyegge/skein/internal/store"
	"github.com/steveyegge/skein/internal/types"
)

// UpdateOpts carries the fields to change. Nil pointers leave the stored
// value untouched; the id itself is immutable.
type UpdateOpts struct {
	Title       *string
	Description *string
	Design      *string
	Category    *string
	Status      *types.Status
	Type        *types.TaskType
	ParentID    *int
	ClearParent bool

	// Meta entries are merged key-by-key; an empty value removes the key.
	Meta map[string]string

	// AddRelations are appended with engine-assigned per-task relation ids.
	AddRelations []types.Relation
	// RemoveRelationIDs removes relations by their per-task id.
	RemoveRelationIDs []int

	// SharedContext entries are prepended newest-first, each prefixed with
	// "Task <ActingTaskID>: " identifying the currently-executing task.
	// The acting id is passed explicitly; the engine keeps no ambient
	// notion of who is running.
	SharedContext []string
	ActingTaskID  int
}

// Update applies a partial mutation to a task in the active log. Archived
// tasks are immutable except via Reopen.
func (e *Engine) Update(ctx context.Context, id int, opts UpdateOpts) (*Result, error) {
	lock, err := e.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	snap, touched, err := e.load(true)
	if err != nil {
		return nil, err
	}

	task := store.FindByID(snap.active, id)
	if task == nil {
		if store.FindByID(snap.archive, id) != nil {
			return nil, fmt.Errorf("task %d is archived and immutable (reopen it first): %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("task %d: %w", id, types.ErrNotFound)
	}

	updated := task.Clone()
	if opts.Title != nil {
		updated.Title = *opts.Title
	}
	if opts.Description != nil {
		updated.Description = *opts.Description
	}
	if opts.Design != nil {
		updated.Design = *opts.Design
	}
	if opts.Category != nil {
		updated.Category = *opts.Category
	}
	if opts.Status != nil {
		if !opts.Status.IsIncomplete() {
			return nil, fmt.Errorf("%w: status %q is not settable via update (use complete or delete)", types.ErrValidation, *opts.Status)
		}
		updated.Status = *opts.Status
	}
	if opts.Type != nil {
		updated.Type = *opts.Type
	}
	if opts.ClearParent {
		updated.ParentID = nil
	} else if opts.ParentID != nil {
		pid := *opts.ParentID
		updated.ParentID = &pid
	}
	for k, v := range opts.Meta {
		if v == "" {
			delete(updated.Meta, k)
		} else {
			updated.Meta[k] = v
		}
	}
	for _, rid := range opts.RemoveRelationIDs {
		kept := updated.Relations[:0]
		for _, r := range updated.Relations {
			if r.ID != rid {
				kept = append(kept, r)
			}
		}
		updated.Relations = kept
	}
	for _, r := range opts.AddRelations {
		r.ID = updated.NextRelationID()
		updated.Relations = append(updated.Relations, r)
	}

	if len(opts.SharedContext) > 0 {
		entries := make([]string, 0, len(opts.SharedContext))
		for _, entry := range opts.SharedContext {
			entries = append(entries, fmt.Sprintf("Task %d: %s", opts.ActingTaskID, entry))
		}
		updated.SharedContext = append(entries, updated.SharedContext...)
	}

	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if err := capSharedContext(updated); err != nil {
		return nil, err
	}

	replaceInPlace(snap.active, updated)
	if err := rewriteActive(e.paths.Active, snap); err != nil {
		return nil, err
	}

	return &Result{
		Task:    updated,
		Touched: appendUnique(touched, e.paths.Active),
	}, nil
}

// capSharedContext enforces the serialized size cap by dropping the oldest
// entries (the tail; the list is newest-first) until the context fits. A
// single entry that alone exceeds the cap is rejected rather than silently
// discarded.
func capSharedContext(t *types.Task) error {
	for len(t.SharedContext) > 0 {
		data, err := json.Marshal(t.SharedContext)
		if err != nil {
			return fmt.Errorf("measuring shared context: %w", err)
		}
		if len(data) <= types.SharedContextMaxBytes {
			return nil
		}
		if len(t.SharedContext) == 1 {
			return fmt.Errorf("%w: shared context entry exceeds %d byte cap", types.ErrValidation, types.SharedContextMaxBytes)
		}
		t.SharedContext = t.SharedContext[:len(t.SharedContext)-1]
	}
	return nil
}

// replaceInPlace swaps the task with the same id, preserving log order.
func replaceInPlace(tasks []*types.Task, updated *types.Task) {
	for i, t := range tasks {
		if t.ID == updated.ID {
			tasks[i] = updated
			return
		}
	}
}

// rewriteActive rewrites the active log from the snapshot, carrying any
// malformed lines through untouched.
func rewriteActive(path string, snap *snapshot) error {
	return store.RewriteKeeping(path, snap.active, snap.activeRead.Malformed)
}

// rewriteArchive rewrites the archive log from the snapshot.
func rewriteArchive(path string, snap *snapshot) error {
	return store.RewriteKeeping(path, snap.archive, snap.archiveRead.Malformed)
}
