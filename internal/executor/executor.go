// Package executor walks a validated task graph, gating each task on
// its dependencies and applying skip or isolation policy on failure.
package executor

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
)

// progressSteps is how many increments of simulated work each task
// reports before its outcome is decided
const progressSteps = 4

const defaultStepDelay = 25 * time.Millisecond

// ProgressFunc receives incremental progress per task, fraction in (0,1]
type ProgressFunc func(task *domain.Task, fraction float64)

// FailureInjector is queried before each task start; a true return
// forces a failure result in place of normal execution
type FailureInjector interface {
	ShouldInject(phase string, taskID string) bool
}

// Config controls one execution pass
type Config struct {
	// Parallel runs independent tasks concurrently; sequential order
	// with skip-propagation is the default
	Parallel    bool
	MaxParallel int
	// StepDelay is the simulated work per progress increment
	StepDelay  time.Duration
	Outcome    OutcomeFunc
	OnProgress ProgressFunc
	Injector   FailureInjector
}

// Executor runs task graphs. It owns the task list and result map
// exclusively for the duration of one ExecuteAll call.
type Executor struct {
	log *zap.Logger
}

// New creates an Executor
func New(log *zap.Logger) *Executor {
	return &Executor{log: log.Named("executor")}
}

// ExecuteAll runs every task to a terminal status and returns the
// execution summary. Tasks are updated in place. The returned error
// is non-nil only for run-level failures (timeout, cancellation);
// individual task failures are reported through the summary.
func (e *Executor) ExecuteAll(ctx context.Context, tasks []*domain.Task, cfg Config) (*domain.ExecutionSummary, error) {
	if cfg.Outcome == nil {
		cfg.Outcome = SimulatedOutcome(0.9, rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	if cfg.StepDelay <= 0 {
		cfg.StepDelay = defaultStepDelay
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 3
	}

	started := time.Now()
	var err error
	if cfg.Parallel {
		err = e.runParallel(ctx, tasks, cfg)
	} else {
		err = e.runSequential(ctx, tasks, cfg)
	}

	summary := summarize(tasks, time.Since(started))
	e.log.Info("execution finished",
		zap.Int("completed", summary.Completed),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Duration("total", summary.TotalDuration))
	return summary, err
}

// runSequential processes tasks in planner order; the first failure
// skips everything after it
func (e *Executor) runSequential(ctx context.Context, tasks []*domain.Task, cfg Config) error {
	succeeded := make(map[string]bool, len(tasks))

	for i, task := range tasks {
		if ctx.Err() != nil {
			// Nothing here has started yet; only in-flight tasks fail
			skipFrom(tasks, i, "run timed out")
			e.log.Error("run timed out", zap.String("task_id", task.ID))
			return fmt.Errorf("execution timed out: %w", ctx.Err())
		}

		if !depsSatisfied(task, succeeded) {
			e.failTask(task, "dependencies not satisfied")
			skipFrom(tasks, i+1, fmt.Sprintf("upstream task %s failed", task.ID))
			return nil
		}

		e.runTask(ctx, task, cfg)

		if task.Status == domain.StatusFailed {
			if ctx.Err() != nil {
				skipFrom(tasks, i+1, "run timed out")
				return fmt.Errorf("execution timed out: %w", ctx.Err())
			}
			skipFrom(tasks, i+1, fmt.Sprintf("upstream task %s failed", task.ID))
			return nil
		}
		succeeded[task.ID] = true
	}
	return nil
}

// runParallel executes tasks in dependency waves. Tasks inside a wave
// share no edges, so they run concurrently up to MaxParallel; a
// failure skips only its transitive dependents.
func (e *Executor) runParallel(ctx context.Context, tasks []*domain.Task, cfg Config) error {
	var mu sync.Mutex
	succeeded := make(map[string]bool, len(tasks))
	dependents := dependentsOf(tasks)

	for {
		if ctx.Err() != nil {
			skipPending(tasks, "run timed out")
			return fmt.Errorf("execution timed out: %w", ctx.Err())
		}

		mu.Lock()
		var wave []*domain.Task
		for _, t := range tasks {
			if t.Ready(succeeded) {
				wave = append(wave, t)
			}
		}
		mu.Unlock()
		if len(wave) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.MaxParallel)
		for _, task := range wave {
			g.Go(func() error {
				e.runTask(gctx, task, cfg)

				mu.Lock()
				defer mu.Unlock()
				if task.Status == domain.StatusCompleted {
					succeeded[task.ID] = true
				} else {
					e.skipDependents(task.ID, tasks, dependents)
				}
				return nil
			})
		}
		// Workers only report through task state
		_ = g.Wait()

		if ctx.Err() != nil {
			skipPending(tasks, "run timed out")
			return fmt.Errorf("execution timed out: %w", ctx.Err())
		}
	}

	// Anything still pending has an unsatisfiable dependency that was
	// not part of a skip chain; fail it fast rather than leave it dangling
	for _, t := range tasks {
		if t.Status == domain.StatusPending {
			e.failTask(t, "dependencies not satisfied")
		}
	}
	return nil
}

// runTask drives one task from pending to a terminal status
func (e *Executor) runTask(ctx context.Context, task *domain.Task, cfg Config) {
	now := time.Now()
	task.Status = domain.StatusInProgress
	task.StartedAt = &now
	e.log.Info("task started", zap.String("task_id", task.ID), zap.String("title", task.Title))

	if cfg.Injector != nil && cfg.Injector.ShouldInject("execution", task.ID) {
		e.log.Warn("failure injected", zap.String("task_id", task.ID))
		e.completeTask(task, &domain.TaskResult{
			Success: false,
			Output:  fmt.Sprintf("%s aborted", task.Title),
			Error:   "injected failure",
		})
		return
	}

	// Simulated bounded work with incremental progress
	for step := 1; step <= progressSteps; step++ {
		select {
		case <-ctx.Done():
			e.finalizeTimeout(task)
			return
		case <-time.After(cfg.StepDelay):
		}
		if cfg.OnProgress != nil {
			cfg.OnProgress(task, float64(step)/progressSteps)
		}
		e.log.Debug("task progress",
			zap.String("task_id", task.ID),
			zap.Float64("fraction", float64(step)/progressSteps))
	}

	e.completeTask(task, cfg.Outcome(task))
}

// completeTask records the result and terminal status
func (e *Executor) completeTask(task *domain.Task, result *domain.TaskResult) {
	now := time.Now()
	task.Result = result
	task.CompletedAt = &now
	if task.StartedAt != nil {
		task.ActualDuration = now.Sub(*task.StartedAt)
	}
	if result.Success {
		task.Status = domain.StatusCompleted
		e.log.Info("task completed", zap.String("task_id", task.ID), zap.Duration("took", task.ActualDuration))
	} else {
		task.Status = domain.StatusFailed
		e.log.Error("task failed", zap.String("task_id", task.ID), zap.String("error", result.Error))
	}
}

// failTask fails a task without running it
func (e *Executor) failTask(task *domain.Task, reason string) {
	now := time.Now()
	task.Status = domain.StatusFailed
	task.Result = &domain.TaskResult{Success: false, Error: reason}
	task.CompletedAt = &now
	e.log.Error("task failed", zap.String("task_id", task.ID), zap.String("error", reason))
}

// finalizeTimeout converts an in-progress task into a terminal
// failure so no task is ever left in-progress after a timeout
func (e *Executor) finalizeTimeout(task *domain.Task) {
	now := time.Now()
	task.Status = domain.StatusFailed
	task.Result = &domain.TaskResult{Success: false, Error: "task timed out"}
	task.CompletedAt = &now
	if task.StartedAt != nil {
		task.ActualDuration = now.Sub(*task.StartedAt)
	}
	e.log.Error("task timed out", zap.String("task_id", task.ID))
}

// skipDependents marks every transitive dependent of failedID skipped
func (e *Executor) skipDependents(failedID string, tasks []*domain.Task, dependents map[string][]string) {
	byID := make(map[string]*domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	var mark func(id string)
	mark = func(id string) {
		for _, depID := range dependents[id] {
			t := byID[depID]
			if t.Status != domain.StatusPending {
				continue
			}
			t.Status = domain.StatusSkipped
			t.Result = &domain.TaskResult{
				Success: false,
				Error:   fmt.Sprintf("skipped: upstream task %s failed", failedID),
			}
			e.log.Warn("task skipped", zap.String("task_id", t.ID), zap.String("cause", failedID))
			mark(depID)
		}
	}
	mark(failedID)
}

func skipFrom(tasks []*domain.Task, start int, cause string) {
	for _, t := range tasks[start:] {
		if t.Status != domain.StatusPending {
			continue
		}
		t.Status = domain.StatusSkipped
		t.Result = &domain.TaskResult{Success: false, Error: "skipped: " + cause}
	}
}

func skipPending(tasks []*domain.Task, cause string) {
	skipFrom(tasks, 0, cause)
}

func depsSatisfied(task *domain.Task, succeeded map[string]bool) bool {
	for _, dep := range task.Dependencies {
		if !succeeded[dep] {
			return false
		}
	}
	return true
}

func dependentsOf(tasks []*domain.Task) map[string][]string {
	out := make(map[string][]string)
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			out[dep] = append(out[dep], t.ID)
		}
	}
	return out
}

func summarize(tasks []*domain.Task, wallClock time.Duration) *domain.ExecutionSummary {
	s := &domain.ExecutionSummary{TotalDuration: wallClock}
	for _, t := range tasks {
		switch t.Status {
		case domain.StatusCompleted:
			s.Completed++
		case domain.StatusFailed:
			s.Failed++
			if t.Result != nil && t.Result.Error != "" {
				s.Errors = append(s.Errors, fmt.Sprintf("%s: %s", t.ID, t.Result.Error))
			}
		case domain.StatusSkipped:
			s.Skipped++
		}
	}
	return s
}
