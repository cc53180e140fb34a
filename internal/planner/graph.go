package planner

import (
	"fmt"
	"strings"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
)

// ValidationError reports why a task graph cannot be executed
type ValidationError struct {
	Kind    string // "dangling_dependency" or "cycle_detected"
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks that every dependency resolves within the plan and
// that the graph is acyclic. It must pass before any task executes.
func Validate(tasks []*domain.Task) error {
	byID := make(map[string]*domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	// Dangling references are collected and reported together, never
	// silently dropped
	var dangling []string
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if _, ok := byID[dep]; !ok {
				dangling = append(dangling, fmt.Sprintf("%s -> %s", t.ID, dep))
			}
		}
	}
	if len(dangling) > 0 {
		return &ValidationError{
			Kind:    "dangling_dependency",
			Message: fmt.Sprintf("unresolved dependencies: %s", strings.Join(dangling, ", ")),
		}
	}

	// Cycle detection: DFS with a recursion stack; a back-edge into
	// the stack is a cycle
	visited := make(map[string]bool, len(tasks))
	onStack := make(map[string]bool, len(tasks))

	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		if onStack[id] {
			return &ValidationError{
				Kind:    "cycle_detected",
				Message: fmt.Sprintf("dependency cycle: %s -> %s", strings.Join(path, " -> "), id),
			}
		}
		if visited[id] {
			return nil
		}
		onStack[id] = true
		for _, dep := range byID[id].Dependencies {
			if err := visit(dep, append(path, id)); err != nil {
				return err
			}
		}
		onStack[id] = false
		visited[id] = true
		return nil
	}

	for _, t := range tasks {
		if err := visit(t.ID, nil); err != nil {
			return err
		}
	}
	return nil
}

// priorityGroups is the visiting order for Order
var priorityGroups = []domain.Priority{domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow}

// Order produces the execution order: tasks grouped by priority, with
// a dependency-respecting post-order visit so a task is never emitted
// before all of its dependencies. Validate must have passed.
func Order(tasks []*domain.Task) []*domain.Task {
	byID := make(map[string]*domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	emitted := make(map[string]bool, len(tasks))
	ordered := make([]*domain.Task, 0, len(tasks))

	var visit func(t *domain.Task)
	visit = func(t *domain.Task) {
		if emitted[t.ID] {
			return
		}
		emitted[t.ID] = true
		for _, dep := range t.Dependencies {
			visit(byID[dep])
		}
		ordered = append(ordered, t)
	}

	for _, prio := range priorityGroups {
		for _, t := range tasks {
			if t.Priority == prio {
				visit(t)
			}
		}
	}
	// Tasks with unknown priorities still belong to the plan
	for _, t := range tasks {
		visit(t)
	}

	return ordered
}
