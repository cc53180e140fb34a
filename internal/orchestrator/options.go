package orchestrator

import "github.com/ekjot2727-png/ai-agent-sub001/internal/domain"

// Options control a single ProcessGoal call
type Options struct {
	// SkipExecution stops after a validated plan is produced
	SkipExecution bool
	// SkipReflection omits the reflection scoring phase
	SkipReflection bool
	// EnableOptimization runs independent tasks in parallel
	EnableOptimization bool
	// ProceedOnClarification continues past required clarification
	// requests instead of aborting the run
	ProceedOnClarification bool
	// Constraints are attached to the goal (e.g. "fast", "thorough")
	Constraints []string
}

// Event is emitted at every pipeline transition for live observers
type Event struct {
	Type     string       `json:"type"`
	RunID    string       `json:"run_id"`
	Phase    domain.Phase `json:"phase,omitempty"`
	TaskID   string       `json:"task_id,omitempty"`
	Status   string       `json:"status,omitempty"`
	Fraction float64      `json:"fraction,omitempty"`
	Message  string       `json:"message,omitempty"`
}

// Event types
const (
	EventPhaseStarted  = "phase_started"
	EventPhaseFinished = "phase_finished"
	EventTaskUpdate    = "task_update"
	EventTaskProgress  = "task_progress"
	EventRunFinished   = "run_finished"
)

// EventFunc observes pipeline events. It must not block.
type EventFunc func(Event)
