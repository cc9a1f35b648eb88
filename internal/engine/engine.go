// Package engine implements the validated, atomic lifecycle transitions
// over the task logs: add, update, complete, delete, reopen, plus the read
// side (select, cycles, stats).
//
// The engine is stateless: every operation re-reads the authoritative files
// and derives its working set fresh, which makes the design restart-safe at
// the cost of an O(n) re-parse per call. Mutations hold the store's
// advisory lock for their entire read-validate-write sequence, so
// concurrent operations from different processes are linearizable. Reads
// run unlocked with read-committed semantics: a reader may observe the
// state just before or just after a concurrent writer, never a torn record.
package engine

import (
	"context"
	"fmt"

	"github.com/steveyegge/skein/internal/codec"
	"github.com/steveyegge/skein/internal/debug"
	"github.com/steveyegge/skein/internal/graph"
	"github.com/steveyegge/skein/internal/lockfile"
	"github.com/steveyegge/skein/internal/query"
	"github.com/steveyegge/skein/internal/store"
	"github.com/steveyegge/skein/internal/types"
)

// Engine executes lifecycle operations against one pair of log files.
type Engine struct {
	paths store.Paths
}

// New returns an engine bound to the given log files.
func New(paths store.Paths) *Engine {
	return &Engine{paths: paths}
}

// Paths returns the log file layout this engine operates on.
func (e *Engine) Paths() store.Paths { return e.paths }

// Result reports the outcome of a mutating operation.
type Result struct {
	Task *types.Task `json:"task"`
	// Touched lists the file paths this call wrote, so a protocol binding
	// can decide whether and how to persist the change.
	Touched []string `json:"touched"`
	// Unblocked lists tasks whose blocked state cleared as a consequence
	// of this operation (complete/delete only).
	Unblocked []int `json:"unblocked,omitempty"`
}

// snapshot is one consistent view of both logs.
type snapshot struct {
	active      []*types.Task
	archive     []*types.Task
	activeRead  *store.ReadResult
	archiveRead *store.ReadResult
	annotations map[int]*graph.Annotation
}

// load reads both logs and resolves any duplicate left by an interrupted
// cross-file move. When repair is true and a duplicate was found, the
// active log is rewritten without it; callers doing unlocked reads pass
// repair=false and get the same resolution in memory only.
func (e *Engine) load(repair bool) (*snapshot, []string, error) {
	activeRead, err := store.ReadAll(e.paths.Active)
	if err != nil {
		return nil, nil, err
	}
	archiveRead, err := store.ReadAll(e.paths.Archive)
	if err != nil {
		return nil, nil, err
	}

	var touched []string
	active, dropped := store.Reconcile(activeRead.Tasks, archiveRead.Tasks)
	if dropped {
		debug.Logf("skein: duplicate record found in both logs, archive copy wins\n")
		if repair {
			if err := store.RewriteKeeping(e.paths.Active, active, activeRead.Malformed); err != nil {
				return nil, nil, err
			}
			touched = append(touched, e.paths.Active)
		}
	}

	return &snapshot{
		active:      active,
		archive:     archiveRead.Tasks,
		activeRead:  activeRead,
		archiveRead: archiveRead,
		annotations: graph.Compute(active),
	}, touched, nil
}

// lock acquires the store lock for a mutating operation.
func (e *Engine) lock(ctx context.Context) (*lockfile.Lock, error) {
	return lockfile.Acquire(ctx, e.paths.Lock)
}

// Select filters the active set, annotated with blocking information.
// Malformed lines are reported alongside the valid results rather than
// failing the read.
func (e *Engine) Select(ctx context.Context, f types.TaskFilter) (*query.Selection, []*codec.MalformedRecordError, error) {
	_ = ctx // reads are unlocked and non-blocking beyond file I/O
	snap, _, err := e.load(false)
	if err != nil {
		return nil, nil, err
	}
	sel, err := query.Select(snap.active, snap.archive, snap.annotations, f)
	if err != nil {
		return nil, nil, err
	}
	malformed := append(snap.activeRead.Malformed, snap.archiveRead.Malformed...)
	return sel, malformed, nil
}

// Get returns a single task from either log by id.
func (e *Engine) Get(ctx context.Context, id int) (*types.Task, *graph.Annotation, error) {
	_ = ctx
	snap, _, err := e.load(false)
	if err != nil {
		return nil, nil, err
	}
	if t := store.FindByID(snap.active, id); t != nil {
		return t, snap.annotations[id], nil
	}
	if t := store.FindByID(snap.archive, id); t != nil {
		return t, nil, nil
	}
	return nil, nil, fmt.Errorf("task %d: %w", id, types.ErrNotFound)
}

// Cycles reports every blocked-by cycle among incomplete tasks.
func (e *Engine) Cycles(ctx context.Context) ([][]int, error) {
	_ = ctx
	snap, _, err := e.load(false)
	if err != nil {
		return nil, err
	}
	return graph.Cycles(snap.active), nil
}

// Stats aggregates counts over both logs.
func (e *Engine) Stats(ctx context.Context) (*types.Statistics, error) {
	_ = ctx
	snap, _, err := e.load(false)
	if err != nil {
		return nil, err
	}
	stats := &types.Statistics{}
	for _, t := range append(append([]*types.Task{}, snap.active...), snap.archive...) {
		stats.Total++
		switch t.Status {
		case types.StatusOpen:
			stats.Open++
		case types.StatusInProgress:
			stats.InProgress++
		case types.StatusBlocked:
			stats.Blocked++
		case types.StatusClosed:
			stats.Closed++
		case types.StatusDeleted:
			stats.Deleted++
		}
	}
	for _, t := range snap.active {
		ann := snap.annotations[t.ID]
		if t.Status.IsIncomplete() && (ann == nil || !ann.Blocked) {
			stats.Ready++
		}
	}
	return stats, nil
}

// newlyUnblocked compares annotations before and after a mutation and
// returns ids whose blocked state cleared.
func newlyUnblocked(before, after map[int]*graph.Annotation) []int {
	var ids []int
	for id, b := range before {
		if !b.Blocked {
			continue
		}
		if a, ok := after[id]; ok && !a.Blocked {
			ids = append(ids, id)
		}
	}
	return ids
}
