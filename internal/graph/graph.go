// Package graph computes blocking annotations over the blocked-by relation
// graph of the active task set.
package graph

import (
	"github.com/steveyegge/skein/internal/types"
)

// Annotation is the per-task result of Compute.
type Annotation struct {
	// Blocked is true when the task has at least one blocked-by edge to an
	// incomplete task, or when it participates in a cycle.
	Blocked bool `json:"blocked"`
	// BlockedBy lists the direct incomplete blockers. For cycle members it
	// is instead the full cycle, rotated to start at this task, so the
	// caller can display the loop.
	BlockedBy []int `json:"blocked_by,omitempty"`
	// InCycle is true when the task is part of a blocked-by cycle. Cycles
	// cannot be waited out; they are reported as data for a human to break.
	InCycle bool `json:"in_cycle"`
}

// Compute builds the blocked-by graph over the given task set and returns
// an annotation per task id.
//
// Blocking is a direct check only: A is blocked iff some blocked-by target
// of A is itself incomplete. There is no transitive propagation beyond what
// cycle detection produces. Edges to ids not present in the set are
// dangling references and cannot block anything.
func Compute(tasks []*types.Task) map[int]*Annotation {
	byID := make(map[int]*types.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	result := make(map[int]*Annotation, len(tasks))
	for _, t := range tasks {
		ann := &Annotation{}
		for _, target := range t.BlockedByIDs() {
			blocker, ok := byID[target]
			if !ok {
				continue // dangling reference, treated as already satisfied
			}
			if blocker.Status.IsIncomplete() {
				ann.Blocked = true
				ann.BlockedBy = append(ann.BlockedBy, target)
			}
		}
		result[t.ID] = ann
	}

	// Cycle detection runs over the blocked-by edges restricted to
	// incomplete nodes: a closed task cannot hold a cycle shut.
	for _, cycle := range detectCycles(tasks, byID) {
		for i, id := range cycle {
			ann := result[id]
			ann.Blocked = true
			ann.InCycle = true
			ann.BlockedBy = rotate(cycle, i)
		}
	}

	return result
}

// Cycles returns every blocked-by cycle among incomplete tasks, each as an
// ordered list of member ids.
func Cycles(tasks []*types.Task) [][]int {
	byID := make(map[int]*types.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	return detectCycles(tasks, byID)
}

// detectCycles finds cycles using DFS with a recursion stack, O(V+E).
func detectCycles(tasks []*types.Task, byID map[int]*types.Task) [][]int {
	adjacency := make(map[int][]int, len(tasks))
	for _, t := range tasks {
		if !t.Status.IsIncomplete() {
			continue
		}
		for _, target := range t.BlockedByIDs() {
			blocker, ok := byID[target]
			if !ok || !blocker.Status.IsIncomplete() {
				continue
			}
			adjacency[t.ID] = append(adjacency[t.ID], target)
		}
	}

	var cycles [][]int
	visited := make(map[int]bool)
	recStack := make(map[int]bool)
	inCycle := make(map[int]bool)
	path := make([]int, 0)

	var dfs func(node int)
	dfs = func(node int) {
		visited[node] = true
		recStack[node] = true
		path = append(path, node)

		for _, neighbor := range adjacency[node] {
			if !visited[neighbor] {
				dfs(neighbor)
			} else if recStack[neighbor] {
				// Found a cycle: extract the loop portion of the path.
				cycleStart := -1
				for i, n := range path {
					if n == neighbor {
						cycleStart = i
						break
					}
				}
				if cycleStart >= 0 {
					cycle := append([]int(nil), path[cycleStart:]...)
					fresh := false
					for _, id := range cycle {
						if !inCycle[id] {
							fresh = true
						}
						inCycle[id] = true
					}
					// A node can appear in overlapping loops; report each
					// node's cycle once.
					if fresh {
						cycles = append(cycles, cycle)
					}
				}
			}
		}

		path = path[:len(path)-1]
		recStack[node] = false
	}

	// Iterate tasks (not the adjacency map) so traversal order is
	// deterministic: file order.
	for _, t := range tasks {
		if _, hasEdges := adjacency[t.ID]; hasEdges && !visited[t.ID] {
			dfs(t.ID)
		}
	}

	return cycles
}

// rotate returns cycle reordered to start at index i.
func rotate(cycle []int, i int) []int {
	out := make([]int, 0, len(cycle))
	out = append(out, cycle[i:]...)
	out = append(out, cycle[:i]...)
	return out
}
