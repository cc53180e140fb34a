package domain

import "time"

// Task represents a unit of planned work with explicit dependencies
// and a terminal status. Created by the planner, mutated only by the
// executor during its own run.
type Task struct {
	ID                string
	Title             string
	Description       string
	Type              string
	Priority          Priority
	Dependencies      []string
	EstimatedDuration time.Duration
	Status            TaskStatus
	Result            *TaskResult
	StartedAt         *time.Time
	CompletedAt       *time.Time
	ActualDuration    time.Duration
}

// TaskResult is produced exactly once per task attempt and is
// immutable after creation
type TaskResult struct {
	Success   bool
	Output    string
	Error     string
	Metrics   map[string]float64
	Artifacts []string
}

// Ready returns true if the task is pending and every dependency is
// in the succeeded set
func (t *Task) Ready(succeeded map[string]bool) bool {
	if t.Status != StatusPending {
		return false
	}
	for _, dep := range t.Dependencies {
		if !succeeded[dep] {
			return false
		}
	}
	return true
}

// Plan is the planner's output: tasks in execution order plus a
// summary of how the decomposition was chosen
type Plan struct {
	GoalID           string
	Tasks            []*Task
	Reasoning        string
	EstimatedTotal   time.Duration
	DecompositionKey string
}

// TaskByID returns the task with the given ID, or nil
func (p *Plan) TaskByID(id string) *Task {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}
