package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/steveyegge/skein/internal/types"
)

func TestEncodeSingleLine(t *testing.T) {
	task := &types.Task{
		ID:          1,
		Status:      types.StatusOpen,
		Title:       "multi\nline\ntitle",
		Description: "with\r\nwindows newlines",
		Category:    "simple",
		Type:        types.TypeTask,
		Meta:        map[string]string{},
		Relations:   []types.Relation{},
	}

	line, err := Encode(task)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if strings.ContainsAny(line, "\n\r") {
		t.Errorf("Encode() emitted a literal newline: %q", line)
	}
}

func TestRoundTrip(t *testing.T) {
	pid := 3
	task := &types.Task{
		ID:            7,
		ParentID:      &pid,
		Status:        types.StatusBlocked,
		Title:         "Wire up the importer",
		Description:   "details",
		Design:        "sketch",
		Category:      "backend",
		Type:          types.TypeFeature,
		Meta:          map[string]string{"created-by": "agent-1"},
		Relations:     []types.Relation{{ID: 1, RelatesTo: 4, AsType: types.RelBlockedBy}},
		SharedContext: []string{"Task 3: the API returns 404 for drafts"},
	}

	line, err := Encode(task)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	got, err := Decode(line)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if got.ID != task.ID || got.Status != task.Status || got.Title != task.Title {
		t.Errorf("Decode() = %+v, want %+v", got, task)
	}
	if got.ParentID == nil || *got.ParentID != pid {
		t.Errorf("Decode() ParentID = %v, want %d", got.ParentID, pid)
	}
	if len(got.Relations) != 1 || got.Relations[0].RelatesTo != 4 {
		t.Errorf("Decode() Relations = %v", got.Relations)
	}
	if len(got.SharedContext) != 1 {
		t.Errorf("Decode() SharedContext = %v", got.SharedContext)
	}
}

func TestDecodeRejects(t *testing.T) {
	// A complete, valid line to mutate per case.
	valid := `{"id":1,"status":"open","title":"t","description":"","design":"","category":"simple","type":"task","meta":{},"relations":[]}`

	tests := []struct {
		name    string
		line    string
		wantErr string
	}{
		{
			name:    "not json",
			line:    "not json at all",
			wantErr: "malformed",
		},
		{
			name:    "truncated line",
			line:    valid[:40],
			wantErr: "malformed",
		},
		{
			name:    "missing id",
			line:    `{"status":"open","title":"t","description":"","design":"","category":"simple","type":"task","meta":{},"relations":[]}`,
			wantErr: `missing required field "id"`,
		},
		{
			name:    "missing status",
			line:    `{"id":1,"title":"t","description":"","design":"","category":"simple","type":"task","meta":{},"relations":[]}`,
			wantErr: `missing required field "status"`,
		},
		{
			name:    "missing type",
			line:    `{"id":1,"status":"open","title":"t","description":"","design":"","category":"simple","meta":{},"relations":[]}`,
			wantErr: `missing required field "type"`,
		},
		{
			name:    "invalid status value",
			line:    strings.Replace(valid, `"open"`, `"done"`, 1),
			wantErr: `"status" has invalid value "done"`,
		},
		{
			name:    "invalid type value",
			line:    strings.Replace(valid, `"task"`, `"epic"`, 1),
			wantErr: `"type" has invalid value "epic"`,
		},
		{
			name:    "invalid relation type",
			line:    strings.Replace(valid, `"relations":[]`, `"relations":[{"id":1,"relates_to":2,"as_type":"needs"}]`, 1),
			wantErr: `"as_type" has invalid value "needs"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.line)
			if err == nil {
				t.Fatalf("Decode(%q) = nil, want error", tt.line)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode() error not wrapped in ErrMalformed: %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Decode() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeNormalizesNulls(t *testing.T) {
	line := `{"id":1,"status":"open","title":"t","description":"","design":"","category":"simple","type":"task","meta":null,"relations":null}`
	got, err := Decode(line)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.Meta == nil {
		t.Error("Decode() left Meta nil for explicit null")
	}
	if got.Relations == nil {
		t.Error("Decode() left Relations nil for explicit null")
	}
}

func TestMalformedRecordError(t *testing.T) {
	err := &MalformedRecordError{Line: 3, Content: "garbage", Err: errors.New("boom")}
	if !errors.Is(err, ErrMalformed) {
		t.Error("MalformedRecordError does not unwrap to ErrMalformed")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("Error() = %q, want line number", err.Error())
	}
}
