// Package dependency contains the pure business logic for the task
// precedence graph. Functions here operate on edge sets loaded by the
// caller and perform no I/O.
package dependency

import (
	"fmt"

	"github.com/example/tempo/internal/models"
)

// Edge is a directed precedence constraint: TaskID depends on DependsOnID.
type Edge struct {
	TaskID      string
	DependsOnID string
	Type        string
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Err     error // sentinel to wrap, nil when Allowed
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	if r.Err != nil {
		return fmt.Errorf("%w: %s", r.Err, r.Reason)
	}
	return fmt.Errorf("%s", r.Reason)
}

// ValidateNewEdge evaluates whether an edge may be inserted into the
// project's existing edge set.
// Rules:
// - No self-edge
// - Known dependency type
// - No duplicate (task, depends_on) pair
// - The edge must not close a cycle
func ValidateNewEdge(existing []Edge, e Edge) GuardResult {
	if e.TaskID == e.DependsOnID {
		return GuardResult{
			Reason: fmt.Sprintf("task %s cannot depend on itself", e.TaskID),
			Err:    models.ErrCycleDetected,
		}
	}
	if !models.ValidDependencyType(e.Type) {
		return GuardResult{Reason: fmt.Sprintf("unknown dependency type %q", e.Type)}
	}
	for _, ex := range existing {
		if ex.TaskID == e.TaskID && ex.DependsOnID == e.DependsOnID {
			return GuardResult{
				Reason: fmt.Sprintf("task %s already depends on %s", e.TaskID, e.DependsOnID),
			}
		}
	}
	if reachable(existing, e.DependsOnID, e.TaskID) {
		return GuardResult{
			Reason: fmt.Sprintf("%s -> %s would close a cycle", e.TaskID, e.DependsOnID),
			Err:    models.ErrCycleDetected,
		}
	}
	return GuardResult{Allowed: true}
}

// reachable walks dependency edges from start and reports whether target
// can be reached. Edges point from a task to its prerequisite, so the walk
// follows DependsOnID links. O(V+E); per-project graphs stay small.
func reachable(edges []Edge, start, target string) bool {
	next := make(map[string][]string, len(edges))
	for _, e := range edges {
		next[e.TaskID] = append(next[e.TaskID], e.DependsOnID)
	}

	seen := map[string]bool{start: true}
	stack := []string{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == target {
			return true
		}
		for _, n := range next[cur] {
			if !seen[n] {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
	return false
}

// Predecessor is the state of a task that the transitioning task depends on.
type Predecessor struct {
	TaskID string
	Type   string
	Status string
}

// CanTransition evaluates whether a task may move from current to next
// status given the state of its predecessors.
//
// Blocking rules per dependency type:
//   - finish_to_start: leaving todo requires the predecessor to be done
//   - start_to_start: leaving todo requires the predecessor to have started
//   - finish_to_finish: entering done requires the predecessor to be done
//   - start_to_finish: entering done requires the predecessor to have started
func CanTransition(current, next string, preds []Predecessor) GuardResult {
	if !models.ValidTaskStatus(next) {
		return GuardResult{Reason: fmt.Sprintf("unknown task status %q", next)}
	}
	if current == next {
		return GuardResult{Allowed: true}
	}

	starting := current == models.TaskStatusTodo && next != models.TaskStatusTodo
	finishing := next == models.TaskStatusDone

	for _, p := range preds {
		switch p.Type {
		case models.DepFinishToStart:
			if starting && p.Status != models.TaskStatusDone {
				return blocked(p, "must be done before this task can start")
			}
		case models.DepStartToStart:
			if starting && p.Status == models.TaskStatusTodo {
				return blocked(p, "must be started before this task can start")
			}
		case models.DepFinishToFinish:
			if finishing && p.Status != models.TaskStatusDone {
				return blocked(p, "must be done before this task can finish")
			}
		case models.DepStartToFinish:
			if finishing && p.Status == models.TaskStatusTodo {
				return blocked(p, "must be started before this task can finish")
			}
		}
	}
	return GuardResult{Allowed: true}
}

func blocked(p Predecessor, why string) GuardResult {
	return GuardResult{
		Reason: fmt.Sprintf("task %s (%s, currently %s) %s", p.TaskID, p.Type, p.Status, why),
		Err:    models.ErrDependencyNotSatisfied,
	}
}
