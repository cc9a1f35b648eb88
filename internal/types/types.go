// Package types defines core data structures for the skein task tracker.
package types

import (
	"fmt"
)

// SharedContextMaxBytes caps the serialized size of a task's shared context.
// When a prepend would exceed the cap, the oldest entries are dropped.
const SharedContextMaxBytes = 50 * 1024

// Task represents a trackable unit of work.
//
// Tasks live as one JSON line each in one of two logs: the active log
// (incomplete work, in priority order) or the archive log (closed and
// deleted work). The ID is assigned once at creation and never reused.
type Task struct {
	ID          int               `json:"id"`
	ParentID    *int              `json:"parent_id,omitempty"`
	Status      Status            `json:"status"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Design      string            `json:"design"`
	Category    string            `json:"category"`
	Type        TaskType          `json:"type"`
	Meta        map[string]string `json:"meta"`
	Relations   []Relation        `json:"relations"`
	// SharedContext is newest-first. Child tasks of a story use it to pass
	// discoveries to their siblings.
	SharedContext []string `json:"shared_context,omitempty"`
}

// Validate checks that the task has valid field values.
func (t *Task) Validate() error {
	if len(t.Title) == 0 {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(t.Title) > 500 {
		return fmt.Errorf("%w: title must be 500 characters or less (got %d)", ErrValidation, len(t.Title))
	}
	if t.Category == "" {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: invalid status: %q", ErrValidation, t.Status)
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: invalid task type: %q", ErrValidation, t.Type)
	}
	for _, r := range t.Relations {
		if !r.AsType.IsValid() {
			return fmt.Errorf("%w: invalid relation as_type: %q", ErrValidation, r.AsType)
		}
	}
	return nil
}

// SetDefaults applies default values for fields omitted in compact JSONL.
// Call after json.Unmarshal so missing fields get proper defaults:
//   - Status: defaults to StatusOpen if empty
//   - Type: defaults to TypeTask if empty
//   - Meta/Relations: default to empty
func (t *Task) SetDefaults() {
	if t.Status == "" {
		t.Status = StatusOpen
	}
	if t.Type == "" {
		t.Type = TypeTask
	}
	if t.Meta == nil {
		t.Meta = map[string]string{}
	}
	if t.Relations == nil {
		t.Relations = []Relation{}
	}
}

// BlockedByIDs returns the target ids of this task's blocked-by relations,
// in relation order.
func (t *Task) BlockedByIDs() []int {
	var ids []int
	for _, r := range t.Relations {
		if r.AsType == RelBlockedBy {
			ids = append(ids, r.RelatesTo)
		}
	}
	return ids
}

// NextRelationID returns the next free relation id within this task.
// Relation ids are unique per task, not globally.
func (t *Task) NextRelationID() int {
	max := 0
	for _, r := range t.Relations {
		if r.ID > max {
			max = r.ID
		}
	}
	return max + 1
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.ParentID != nil {
		pid := *t.ParentID
		c.ParentID = &pid
	}
	if t.Meta != nil {
		c.Meta = make(map[string]string, len(t.Meta))
		for k, v := range t.Meta {
			c.Meta[k] = v
		}
	}
	c.Relations = append([]Relation(nil), t.Relations...)
	c.SharedContext = append([]string(nil), t.SharedContext...)
	return &c
}

// Status represents the current state of a task
type Status string

// Task status constants
const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusClosed     Status = "closed"
	StatusDeleted    Status = "deleted"
)

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusBlocked, StatusClosed, StatusDeleted:
		return true
	}
	return false
}

// IsIncomplete returns true for blocking-capable statuses. A task in one of
// these states counts as an active blocker for tasks that depend on it.
func (s Status) IsIncomplete() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusBlocked:
		return true
	}
	return false
}

// TaskType categorizes the kind of work
type TaskType string

// Task type constants
const (
	TypeTask    TaskType = "task"
	TypeBug     TaskType = "bug"
	TypeFeature TaskType = "feature"
	TypeStory   TaskType = "story"
	TypeChore   TaskType = "chore"
)

// IsValid checks if the task type value is valid
func (t TaskType) IsValid() bool {
	switch t {
	case TypeTask, TypeBug, TypeFeature, TypeStory, TypeChore:
		return true
	}
	return false
}

// Relation is a typed edge from the owning task to another task. The target
// need not exist; a dangling reference is tolerated and treated as
// unresolvable by the dependency graph.
type Relation struct {
	ID        int          `json:"id"`
	RelatesTo int          `json:"relates_to"`
	AsType    RelationType `json:"as_type"`
}

// RelationType categorizes the relationship
type RelationType string

// Relation type constants. Only RelBlockedBy participates in the blocking
// computation; the others are associations.
const (
	RelBlockedBy        RelationType = "blocked-by"
	RelRelated          RelationType = "related"
	RelDiscoveredDuring RelationType = "discovered-during"
)

// IsValid checks if the relation type value is valid
func (r RelationType) IsValid() bool {
	switch r {
	case RelBlockedBy, RelRelated, RelDiscoveredDuring:
		return true
	}
	return false
}

// TaskFilter is used to filter task queries. All predicates are optional
// and AND-combined. An empty Status means "incomplete only" (open,
// in_progress, blocked); StatusAny matches every status.
type TaskFilter struct {
	Status       string
	Category     string
	Type         string
	ParentID     *int
	ID           *int // short-circuits the other predicates
	TitlePattern string
	Blocked      *bool
	Limit        int
	Unique       bool
}

// StatusAny is the TaskFilter.Status value that disables status filtering.
const StatusAny = "any"

// Statistics provides aggregate counts over both logs.
type Statistics struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Blocked    int `json:"blocked"`
	Closed     int `json:"closed"`
	Deleted    int `json:"deleted"`
	Ready      int `json:"ready"`
}
