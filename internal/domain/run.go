package domain

import "time"

// PhaseRecord captures one pipeline phase with its duration
type PhaseRecord struct {
	Phase     Phase
	StartedAt time.Time
	Duration  time.Duration
	Err       string
}

// ExecutionSummary aggregates task outcomes for one run
type ExecutionSummary struct {
	Completed     int
	Failed        int
	Skipped       int
	TotalDuration time.Duration
	Errors        []string
}

// ExecutionRun is the aggregate of one goal, its plan, its results and
// its phase timeline. Created at goal acceptance, mutated through the
// phases, immutable once a terminal status is reached.
type ExecutionRun struct {
	ID         string
	Goal       *Goal
	Intent     *IntentClassification
	Safety     *SafetyVerdict
	Confidence *ConfidenceAssessment
	Plan       *Plan
	Summary    *ExecutionSummary
	Phases     []PhaseRecord
	Status     RunStatus
	Score      float64
	StartedAt  time.Time
	FinishedAt *time.Time
}

// RecordPhase appends a finished phase to the timeline
func (r *ExecutionRun) RecordPhase(phase Phase, startedAt time.Time, err error) {
	rec := PhaseRecord{Phase: phase, StartedAt: startedAt, Duration: time.Since(startedAt)}
	if err != nil {
		rec.Err = err.Error()
	}
	r.Phases = append(r.Phases, rec)
}

// Finalize marks the run terminal with the given status
func (r *ExecutionRun) Finalize(status RunStatus) {
	now := time.Now()
	r.Status = status
	r.FinishedAt = &now
}
