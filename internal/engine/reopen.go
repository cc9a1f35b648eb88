package engine

import (
	"context"
	"fmt"

	"github.com/steveyegge/skein/internal/query"
	"github.com/steveyegge/skein/internal/store"
	"github.com/steveyegge/skein/internal/types"
)

// ReopenOpts locates the task to reopen, by id or by title pattern.
type ReopenOpts struct {
	ID           int // locate by id when > 0
	TitlePattern string
}

// Reopen resurrects a completed task. An archived record moves back to the
// end of the active log with status open; a closed record still sitting in
// the active log is flipped to open in place. Everything else, including
// relations, parent id, meta, and shared context, is preserved unchanged.
func (e *Engine) Reopen(ctx context.Context, opts ReopenOpts) (*Result, error) {
	lock, err := e.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	snap, touched, err := e.load(true)
	if err != nil {
		return nil, err
	}

	task, inActive, err := locateForReopen(snap, opts)
	if err != nil {
		return nil, err
	}

	reopened := task.Clone()
	reopened.Status = types.StatusOpen

	if inActive {
		replaceInPlace(snap.active, reopened)
		if err := rewriteActive(e.paths.Active, snap); err != nil {
			return nil, err
		}
		return &Result{
			Task:    reopened,
			Touched: appendUnique(touched, e.paths.Active),
		}, nil
	}

	// Destination first, as for complete: the active-log append is durable
	// before the archive is rewritten without the record.
	if err := store.Move(reopened, e.paths.Archive, e.paths.Active, false); err != nil {
		return nil, err
	}

	return &Result{
		Task:    reopened,
		Touched: appendUnique(appendUnique(touched, e.paths.Active), e.paths.Archive),
	}, nil
}

// locateForReopen finds a completed task: archived, or closed-in-active.
func locateForReopen(snap *snapshot, opts ReopenOpts) (*types.Task, bool, error) {
	if opts.ID > 0 {
		if t := store.FindByID(snap.archive, opts.ID); t != nil {
			return t, false, nil
		}
		if t := store.FindByID(snap.active, opts.ID); t != nil {
			if t.Status == types.StatusClosed {
				return t, true, nil
			}
			return nil, false, fmt.Errorf("%w: task %d is %s, not completed", types.ErrValidation, t.ID, t.Status)
		}
		return nil, false, fmt.Errorf("task %d: %w", opts.ID, types.ErrNotFound)
	}
	if opts.TitlePattern == "" {
		return nil, false, fmt.Errorf("%w: reopen requires an id or a title pattern", types.ErrValidation)
	}

	match := query.TitleMatcher(opts.TitlePattern)
	var found *types.Task
	var inActive bool
	var ids []int
	for _, t := range snap.archive {
		if match(t.Title) {
			if found == nil {
				found, inActive = t, false
			}
			ids = append(ids, t.ID)
		}
	}
	for _, t := range snap.active {
		if t.Status == types.StatusClosed && match(t.Title) {
			if found == nil {
				found, inActive = t, true
			}
			ids = append(ids, t.ID)
		}
	}
	switch len(ids) {
	case 0:
		return nil, false, fmt.Errorf("no completed task with title matching %q: %w", opts.TitlePattern, types.ErrNotFound)
	case 1:
		return found, inActive, nil
	default:
		return nil, false, &types.AmbiguousMatchError{Query: "title~" + opts.TitlePattern, IDs: ids}
	}
}
