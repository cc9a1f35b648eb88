// Package store manages the two append-ordered log files backing the task
// tracker: the active log (incomplete work, in priority order) and the
// archive log (closed and deleted work).
//
// Every record is one self-contained JSONL line (see internal/codec). All
// rewrites go through an atomic replace (write-temp-then-rename) so a crash
// mid-write never leaves a half-written file, and cross-file moves write
// the destination durably before touching the source so a task is never
// observably in neither file.
package store

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/steveyegge/skein/internal/codec"
	"github.com/steveyegge/skein/internal/types"
)

// Default log file names within a store directory.
const (
	ActiveName  = "tasks.jsonl"
	ArchiveName = "archive.jsonl"
	LockName    = ".skein.lock"
)

// maxLineSize bounds a single record line (shared context is capped well
// below this at the field level).
const maxLineSize = 10 * 1024 * 1024

// Paths locates the pair of log files and their shared lock file.
type Paths struct {
	Active  string
	Archive string
	Lock    string
}

// DefaultPaths returns the conventional layout under dir.
func DefaultPaths(dir string) Paths {
	return Paths{
		Active:  filepath.Join(dir, ActiveName),
		Archive: filepath.Join(dir, ArchiveName),
		Lock:    filepath.Join(dir, LockName),
	}
}

// ReadResult is the outcome of reading one log. A corrupt line never hides
// the rest of the file: valid tasks are returned alongside the per-line
// decode errors.
type ReadResult struct {
	Tasks     []*types.Task
	Malformed []*codec.MalformedRecordError
}

// ReadAll reads every record from the log at path, preserving file order.
// A missing file is an empty log, not an error.
func ReadAll(path string) (*ReadResult, error) {
	// nolint:gosec // G304: path comes from the store's own configuration
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ReadResult{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer file.Close()

	result := &ReadResult{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		task, err := codec.Decode(line)
		if err != nil {
			result.Malformed = append(result.Malformed, &codec.MalformedRecordError{
				Line:    lineNum,
				Content: line,
				Err:     err,
			})
			continue
		}
		result.Tasks = append(result.Tasks, task)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return result, nil
}

// Append adds one record at the end of the log and syncs it to disk before
// returning, so a confirmed append survives a crash.
func Append(path string, t *types.Task) error {
	line, err := codec.Encode(t)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	// nolint:gosec // G304: path comes from the store's own configuration
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	if _, err := file.WriteString(line + "\n"); err != nil {
		file.Close()
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	return file.Close()
}

// Prepend inserts one record at the front of the log. Front insertion is a
// full rewrite; the log stays one-line-per-record throughout.
func Prepend(path string, t *types.Task) error {
	existing, err := ReadAll(path)
	if err != nil {
		return err
	}
	tasks := append([]*types.Task{t}, existing.Tasks...)
	return RewriteKeeping(path, tasks, existing.Malformed)
}

// Rewrite atomically replaces the log's contents with the given tasks in
// order, via write-temp-then-rename.
func Rewrite(path string, tasks []*types.Task) error {
	return RewriteKeeping(path, tasks, nil)
}

// RewriteKeeping writes tasks plus any malformed lines that were preserved
// from a prior read. Rewrites triggered by unrelated mutations must not
// silently drop lines a human may still want to repair.
func RewriteKeeping(path string, tasks []*types.Task, malformed []*codec.MalformedRecordError) error {
	var buf bytes.Buffer
	for _, t := range tasks {
		line, err := codec.Encode(t)
		if err != nil {
			return err
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	for _, m := range malformed {
		buf.WriteString(m.Content)
		buf.WriteByte('\n')
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("rewriting %s: %w", path, err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("rewriting %s: %w", path, err)
	}
	return nil
}

// Move transfers one task from one log to the other. The destination write
// is confirmed durable before the source is rewritten, so the task is never
// observably present in neither file. If the process dies between the two
// steps the task appears in both files; readers resolve that in favor of
// the destination (see Reconcile).
func Move(t *types.Task, from, to string, front bool) error {
	if front {
		if err := Prepend(to, t); err != nil {
			return err
		}
	} else {
		if err := Append(to, t); err != nil {
			return err
		}
	}

	src, err := ReadAll(from)
	if err != nil {
		return err
	}
	kept := make([]*types.Task, 0, len(src.Tasks))
	found := false
	for _, existing := range src.Tasks {
		if existing.ID == t.ID {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		return fmt.Errorf("moving task %d: %w in %s", t.ID, types.ErrNotFound, from)
	}
	return RewriteKeeping(from, kept, src.Malformed)
}

// Reconcile resolves a task that appears in both logs after an interrupted
// Move: the archive copy wins and the duplicate is dropped from the active
// list. The interrupted operation never reported success, so either
// resolution would be sound; archiving forward matches the common case
// (complete crashed between its two writes). Returns the deduplicated
// active list and whether anything was dropped.
func Reconcile(active, archive []*types.Task) ([]*types.Task, bool) {
	inArchive := make(map[int]bool, len(archive))
	for _, t := range archive {
		inArchive[t.ID] = true
	}
	kept := make([]*types.Task, 0, len(active))
	dropped := false
	for _, t := range active {
		if inArchive[t.ID] {
			dropped = true
			continue
		}
		kept = append(kept, t)
	}
	return kept, dropped
}

// NextID returns 1 + the highest id across both logs. Recomputed from disk
// at the start of every add so ids are never reused, even after deletion.
func NextID(active, archive []*types.Task) int {
	max := 0
	for _, t := range active {
		if t.ID > max {
			max = t.ID
		}
	}
	for _, t := range archive {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

// FindByID returns the task with the given id, or nil.
func FindByID(tasks []*types.Task, id int) *types.Task {
	for _, t := range tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// ErrNoStore is returned when the store directory cannot be located.
var ErrNoStore = errors.New("no task store found")
