// Package codec serializes task records to and from single JSONL lines.
//
// One line is one record: Encode never emits embedded newlines, so the line
// store can treat the two logs as plain append-ordered line files with no
// cross-line state.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/steveyegge/skein/internal/types"
)

// ErrMalformed indicates a line failed to decode into a valid task record.
var ErrMalformed = errors.New("malformed record")

// MalformedRecordError carries the line number and content of a record that
// failed to decode. Reads report these per-line rather than aborting the
// whole file.
type MalformedRecordError struct {
	Line    int
	Content string
	Err     error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap lets errors.Is(err, ErrMalformed) succeed.
func (e *MalformedRecordError) Unwrap() error { return ErrMalformed }

// Encode serializes a task to exactly one line, without a trailing newline.
func Encode(t *types.Task) (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encoding task %d: %w", t.ID, err)
	}
	// json.Marshal escapes control characters, so the output cannot contain
	// a literal newline. Guard anyway: a multi-line record would corrupt
	// every read after it.
	if strings.ContainsAny(string(data), "\n\r") {
		return "", fmt.Errorf("encoding task %d: %w: embedded newline", t.ID, ErrMalformed)
	}
	return string(data), nil
}

// Decode parses one line into a task. It rejects records with missing
// required fields or enum values outside their domains, reporting which
// field and value failed.
func Decode(line string) (*types.Task, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	// Required fields must be present even when their zero value would
	// decode fine. parent_id and shared_context are the optional ones.
	for _, field := range []string{"id", "status", "title", "description", "design", "category", "type", "meta", "relations"} {
		if _, ok := raw[field]; !ok {
			return nil, fmt.Errorf("%w: missing required field %q", ErrMalformed, field)
		}
	}

	var t types.Task
	if err := json.Unmarshal([]byte(line), &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if !t.Status.IsValid() {
		return nil, fmt.Errorf("%w: field \"status\" has invalid value %q", ErrMalformed, t.Status)
	}
	if !t.Type.IsValid() {
		return nil, fmt.Errorf("%w: field \"type\" has invalid value %q", ErrMalformed, t.Type)
	}
	for _, r := range t.Relations {
		if !r.AsType.IsValid() {
			return nil, fmt.Errorf("%w: field \"as_type\" has invalid value %q", ErrMalformed, r.AsType)
		}
	}
	t.SetDefaults() // normalize nil meta/relations from explicit JSON nulls
	return &t, nil
}
