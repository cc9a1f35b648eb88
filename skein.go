// Package skein provides a minimal public API for embedding the task
// engine in Go-based agent orchestration.
//
// Most callers should use the sk CLI or the MCP tool surface; this package
// exports only the types and constructor needed to drive the store
// programmatically.
package skein

import (
	"github.com/steveyegge/skein/internal/engine"
	"github.com/steveyegge/skein/internal/store"
	"github.com/steveyegge/skein/internal/types"
)

// Core types for working with tasks
type (
	Task       = types.Task
	Relation   = types.Relation
	Status     = types.Status
	TaskType   = types.TaskType
	TaskFilter = types.TaskFilter
	Engine     = engine.Engine
)

// Status constants
const (
	StatusOpen       = types.StatusOpen
	StatusInProgress = types.StatusInProgress
	StatusBlocked    = types.StatusBlocked
	StatusClosed     = types.StatusClosed
	StatusDeleted    = types.StatusDeleted
)

// TaskType constants
const (
	TypeTask    = types.TypeTask
	TypeBug     = types.TypeBug
	TypeFeature = types.TypeFeature
	TypeStory   = types.TypeStory
	TypeChore   = types.TypeChore
)

// Relation type constants
const (
	RelBlockedBy        = types.RelBlockedBy
	RelRelated          = types.RelRelated
	RelDiscoveredDuring = types.RelDiscoveredDuring
)

// Open returns an engine over the conventional log layout under dir
// (tasks.jsonl, archive.jsonl, and the lock file).
func Open(dir string) *Engine {
	return engine.New(store.DefaultPaths(dir))
}
