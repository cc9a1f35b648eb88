package types

import (
	"errors"
	"strings"
	"testing"
)

func validTask() Task {
	return Task{
		ID:       1,
		Status:   StatusOpen,
		Title:    "Fix the flaky test",
		Category: "simple",
		Type:     TypeTask,
		Meta:     map[string]string{},
	}
}

func TestTaskValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr string
	}{
		{
			name:   "valid task",
			mutate: func(*Task) {},
		},
		{
			name:    "empty title",
			mutate:  func(task *Task) { task.Title = "" },
			wantErr: "title is required",
		},
		{
			name:    "title too long",
			mutate:  func(task *Task) { task.Title = strings.Repeat("x", 501) },
			wantErr: "500 characters",
		},
		{
			name:   "title exactly at limit",
			mutate: func(task *Task) { task.Title = strings.Repeat("x", 500) },
		},
		{
			name:    "empty category",
			mutate:  func(task *Task) { task.Category = "" },
			wantErr: "category is required",
		},
		{
			name:    "bogus status",
			mutate:  func(task *Task) { task.Status = "done" },
			wantErr: "invalid status",
		},
		{
			name:    "bogus type",
			mutate:  func(task *Task) { task.Type = "epic" },
			wantErr: "invalid task type",
		},
		{
			name: "bogus relation type",
			mutate: func(task *Task) {
				task.Relations = []Relation{{ID: 1, RelatesTo: 2, AsType: "depends-on"}}
			},
			wantErr: "invalid relation as_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := validTask()
			tt.mutate(&task)
			err := task.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() error not wrapped in ErrValidation: %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	task := Task{Title: "t", Category: "simple"}
	task.SetDefaults()

	if task.Status != StatusOpen {
		t.Errorf("Status = %q, want %q", task.Status, StatusOpen)
	}
	if task.Type != TypeTask {
		t.Errorf("Type = %q, want %q", task.Type, TypeTask)
	}
	if task.Meta == nil {
		t.Error("Meta = nil, want empty map")
	}
	if task.Relations == nil {
		t.Error("Relations = nil, want empty slice")
	}

	// Defaults never clobber values that are already set.
	task2 := Task{Status: StatusBlocked, Type: TypeBug}
	task2.SetDefaults()
	if task2.Status != StatusBlocked || task2.Type != TypeBug {
		t.Errorf("SetDefaults overwrote explicit values: %q %q", task2.Status, task2.Type)
	}
}

func TestStatusIsIncomplete(t *testing.T) {
	incomplete := []Status{StatusOpen, StatusInProgress, StatusBlocked}
	for _, s := range incomplete {
		if !s.IsIncomplete() {
			t.Errorf("%q.IsIncomplete() = false, want true", s)
		}
	}
	complete := []Status{StatusClosed, StatusDeleted, Status("bogus")}
	for _, s := range complete {
		if s.IsIncomplete() {
			t.Errorf("%q.IsIncomplete() = true, want false", s)
		}
	}
}

func TestBlockedByIDs(t *testing.T) {
	task := validTask()
	task.Relations = []Relation{
		{ID: 1, RelatesTo: 7, AsType: RelBlockedBy},
		{ID: 2, RelatesTo: 8, AsType: RelRelated},
		{ID: 3, RelatesTo: 9, AsType: RelBlockedBy},
		{ID: 4, RelatesTo: 10, AsType: RelDiscoveredDuring},
	}

	got := task.BlockedByIDs()
	want := []int{7, 9}
	if len(got) != len(want) {
		t.Fatalf("BlockedByIDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("BlockedByIDs()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestNextRelationID(t *testing.T) {
	task := validTask()
	if got := task.NextRelationID(); got != 1 {
		t.Errorf("NextRelationID() with no relations = %d, want 1", got)
	}

	task.Relations = []Relation{
		{ID: 3, RelatesTo: 1, AsType: RelRelated},
		{ID: 1, RelatesTo: 2, AsType: RelRelated},
	}
	if got := task.NextRelationID(); got != 4 {
		t.Errorf("NextRelationID() = %d, want 4", got)
	}
}

func TestClone(t *testing.T) {
	pid := 5
	task := validTask()
	task.ParentID = &pid
	task.Meta = map[string]string{"k": "v"}
	task.Relations = []Relation{{ID: 1, RelatesTo: 2, AsType: RelBlockedBy}}
	task.SharedContext = []string{"Task 3: note"}

	clone := task.Clone()
	*clone.ParentID = 99
	clone.Meta["k"] = "changed"
	clone.Relations[0].RelatesTo = 100
	clone.SharedContext[0] = "changed"

	if *task.ParentID != 5 {
		t.Error("Clone shares ParentID with original")
	}
	if task.Meta["k"] != "v" {
		t.Error("Clone shares Meta with original")
	}
	if task.Relations[0].RelatesTo != 2 {
		t.Error("Clone shares Relations with original")
	}
	if task.SharedContext[0] != "Task 3: note" {
		t.Error("Clone shares SharedContext with original")
	}
}

func TestAmbiguousMatchError(t *testing.T) {
	err := &AmbiguousMatchError{Query: "title~fix", IDs: []int{1, 2}}
	if !errors.Is(err, ErrAmbiguous) {
		t.Error("AmbiguousMatchError does not unwrap to ErrAmbiguous")
	}
	if !strings.Contains(err.Error(), "fix") {
		t.Errorf("Error() = %q, want query in message", err.Error())
	}
}

func TestBlockedDependentsError(t *testing.T) {
	err := &BlockedDependentsError{ID: 3, Dependents: []int{4, 5}}
	if !errors.Is(err, ErrBlockedDependents) {
		t.Error("BlockedDependentsError does not unwrap to ErrBlockedDependents")
	}
}
