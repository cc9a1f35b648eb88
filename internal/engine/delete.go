package engine

import (
	"context"
	"fmt"

	"github.com/steveyegge/skein/internal/graph"
	"github.com/steveyegge/skein/internal/query"
	"github.com/steveyegge/skein/internal/store"
	"github.com/steveyegge/skein/internal/types"
)

// DeleteOpts locates the task to delete. Exactly one of ID or TitlePattern
// must be set; a pattern matching more than one task is an ambiguous match,
// never a bulk delete.
type DeleteOpts struct {
	ID           int // locate by id when > 0
	TitlePattern string
	// Force deletes even when other incomplete tasks declare this task as
	// a blocked-by target. Without it the delete is refused and the error
	// reports which dependents would be affected.
	Force bool
}

// Delete soft-deletes a task: status becomes deleted and the record moves
// to the archive log (or is flipped in place when already archived). The id
// stays burned forever; every id remains in exactly one of the two logs.
func (e *Engine) Delete(ctx context.Context, opts DeleteOpts) (*Result, error) {
	lock, err := e.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	snap, touched, err := e.load(true)
	if err != nil {
		return nil, err
	}

	task, inActive, err := locateForDelete(snap, opts)
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		if dependents := incompleteDependents(snap.active, task.ID); len(dependents) > 0 {
			return nil, &types.BlockedDependentsError{ID: task.ID, Dependents: dependents}
		}
	}

	deleted := task.Clone()
	deleted.Status = types.StatusDeleted

	if inActive {
		removeByID(snap, task.ID)
		if err := store.Move(deleted, e.paths.Active, e.paths.Archive, false); err != nil {
			return nil, err
		}
		return &Result{
			Task:      deleted,
			Touched:   appendUnique(appendUnique(touched, e.paths.Archive), e.paths.Active),
			Unblocked: newlyUnblocked(snap.annotations, graph.Compute(snap.active)),
		}, nil
	}

	for i, t := range snap.archive {
		if t.ID == task.ID {
			snap.archive[i] = deleted
			break
		}
	}
	if err := rewriteArchive(e.paths.Archive, snap); err != nil {
		return nil, err
	}
	return &Result{
		Task:    deleted,
		Touched: appendUnique(touched, e.paths.Archive),
	}, nil
}

// locateForDelete searches both logs by id or by title pattern.
func locateForDelete(snap *snapshot, opts DeleteOpts) (*types.Task, bool, error) {
	if opts.ID > 0 {
		if t := store.FindByID(snap.active, opts.ID); t != nil {
			return t, true, nil
		}
		if t := store.FindByID(snap.archive, opts.ID); t != nil {
			return t, false, nil
		}
		return nil, false, fmt.Errorf("task %d: %w", opts.ID, types.ErrNotFound)
	}
	if opts.TitlePattern == "" {
		return nil, false, fmt.Errorf("%w: delete requires an id or a title pattern", types.ErrValidation)
	}

	match := query.TitleMatcher(opts.TitlePattern)
	var found *types.Task
	var inActive bool
	var ids []int
	for _, t := range snap.active {
		if match(t.Title) {
			found, inActive = t, true
			ids = append(ids, t.ID)
		}
	}
	for _, t := range snap.archive {
		if match(t.Title) {
			if found == nil {
				found, inActive = t, false
			}
			ids = append(ids, t.ID)
		}
	}
	switch len(ids) {
	case 0:
		return nil, false, fmt.Errorf("no task with title matching %q: %w", opts.TitlePattern, types.ErrNotFound)
	case 1:
		return found, inActive, nil
	default:
		return nil, false, &types.AmbiguousMatchError{Query: "title~" + opts.TitlePattern, IDs: ids}
	}
}

// incompleteDependents returns incomplete active tasks that declare id as a
// blocked-by target.
func incompleteDependents(active []*types.Task, id int) []int {
	var dependents []int
	for _, t := range active {
		if t.ID == id || !t.Status.IsIncomplete() {
			continue
		}
		for _, target := range t.BlockedByIDs() {
			if target == id {
				dependents = append(dependents, t.ID)
				break
			}
		}
	}
	return dependents
}
