package executor

import (
	"fmt"
	"math/rand"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
)

// OutcomeFunc decides the result of a task attempt. Injecting it
// keeps control flow identical between simulated, deterministic, and
// failure-injected execution.
type OutcomeFunc func(task *domain.Task) *domain.TaskResult

// SimulatedOutcome succeeds with the given probability using the
// supplied source, so demos stay lively and tests stay reproducible
func SimulatedOutcome(successRate float64, rng *rand.Rand) OutcomeFunc {
	return func(task *domain.Task) *domain.TaskResult {
		if rng.Float64() < successRate {
			return &domain.TaskResult{
				Success: true,
				Output:  fmt.Sprintf("%s finished", task.Title),
				Metrics: map[string]float64{"simulated": 1},
			}
		}
		return &domain.TaskResult{
			Success: false,
			Output:  fmt.Sprintf("%s did not complete", task.Title),
			Error:   "simulated task failure",
		}
	}
}

// AlwaysSucceed returns a deterministic all-success strategy
func AlwaysSucceed() OutcomeFunc {
	return func(task *domain.Task) *domain.TaskResult {
		return &domain.TaskResult{
			Success: true,
			Output:  fmt.Sprintf("%s finished", task.Title),
		}
	}
}

// FailTasks fails the listed task IDs and succeeds everything else
func FailTasks(ids ...string) OutcomeFunc {
	failing := make(map[string]bool, len(ids))
	for _, id := range ids {
		failing[id] = true
	}
	return func(task *domain.Task) *domain.TaskResult {
		if failing[task.ID] {
			return &domain.TaskResult{
				Success: false,
				Output:  fmt.Sprintf("%s did not complete", task.Title),
				Error:   fmt.Sprintf("task %s failed", task.ID),
			}
		}
		return &domain.TaskResult{
			Success: true,
			Output:  fmt.Sprintf("%s finished", task.Title),
		}
	}
}
