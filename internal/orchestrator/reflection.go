package orchestrator

import (
	"math"
	"time"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
)

const (
	completionWeight = 0.7
	efficiencyWeight = 0.3
)

// reflectionScore grades a finished run on how much of the plan completed
// and how close actual task durations came to the estimates. The result is
// clamped to [0, 1].
func reflectionScore(run *domain.ExecutionRun) float64 {
	if run.Plan == nil || len(run.Plan.Tasks) == 0 {
		if run.Status == domain.RunCompleted {
			return 1.0
		}
		return 0.0
	}

	var completed int
	var estimated, actual time.Duration
	for _, t := range run.Plan.Tasks {
		if t.Status == domain.StatusCompleted {
			completed++
			estimated += t.EstimatedDuration
			actual += t.ActualDuration
		}
	}

	completion := float64(completed) / float64(len(run.Plan.Tasks))

	// Efficiency compares estimated against actual time for completed
	// tasks. Finishing at or under budget scores 1.0; overruns decay
	// proportionally. With nothing completed there is no signal, so the
	// component stays neutral.
	efficiency := 0.5
	if completed > 0 && actual > 0 {
		efficiency = float64(estimated) / float64(actual)
		if efficiency > 1 {
			efficiency = 1
		}
	}

	score := completionWeight*completion + efficiencyWeight*efficiency
	return math.Round(math.Max(0, math.Min(1, score))*100) / 100
}
