package observer

import (
	"sync"
	"time"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
)

// Monitor watches run outcomes and collects metrics
type Monitor struct {
	stuckThreshold time.Duration

	outcomes []outcome
	mu       sync.RWMutex
}

type outcome struct {
	RunID      string
	Status     domain.RunStatus
	Score      float64
	Duration   time.Duration
	Completed  int
	Failed     int
	FinishedAt time.Time
}

// Metrics holds aggregated metrics
type Metrics struct {
	TotalRuns           int           `json:"total_runs"`
	TotalCompleted      int           `json:"total_completed"`
	TotalBlocked        int           `json:"total_blocked"`
	TotalTasksCompleted int           `json:"total_tasks_completed"`
	TotalTasksFailed    int           `json:"total_tasks_failed"`
	AvgScore            float64       `json:"avg_score"`
	AvgDuration         time.Duration `json:"avg_duration"`
}

// NewMonitor creates a new Monitor
func NewMonitor(stuckThreshold time.Duration) *Monitor {
	return &Monitor{
		stuckThreshold: stuckThreshold,
	}
}

// IsStuck returns true if a task appears to be stuck
func (m *Monitor) IsStuck(task *domain.Task) bool {
	if task.Status != domain.StatusInProgress {
		return false
	}
	if task.StartedAt == nil {
		return false
	}
	return time.Since(*task.StartedAt) > m.stuckThreshold
}

// RecordRun records a finished run
func (m *Monitor) RecordRun(run *domain.ExecutionRun) {
	o := outcome{
		RunID:      run.ID,
		Status:     run.Status,
		Score:      run.Score,
		FinishedAt: time.Now(),
	}
	if run.FinishedAt != nil {
		o.Duration = run.FinishedAt.Sub(run.StartedAt)
	}
	if run.Summary != nil {
		o.Completed = run.Summary.Completed
		o.Failed = run.Summary.Failed
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, o)
}

// GetMetrics returns aggregated metrics
func (m *Monitor) GetMetrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var metrics Metrics
	var totalDuration time.Duration
	var totalScore float64

	for _, o := range m.outcomes {
		metrics.TotalRuns++
		switch o.Status {
		case domain.RunCompleted:
			metrics.TotalCompleted++
		case domain.RunBlocked:
			metrics.TotalBlocked++
		}
		metrics.TotalTasksCompleted += o.Completed
		metrics.TotalTasksFailed += o.Failed
		totalDuration += o.Duration
		totalScore += o.Score
	}

	if metrics.TotalRuns > 0 {
		metrics.AvgDuration = totalDuration / time.Duration(metrics.TotalRuns)
		metrics.AvgScore = totalScore / float64(metrics.TotalRuns)
	}

	return metrics
}

// RecentRunIDs returns runs finished within the last duration
func (m *Monitor) RecentRunIDs(since time.Duration) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := time.Now().Add(-since)
	var result []string

	for _, o := range m.outcomes {
		if o.FinishedAt.After(cutoff) {
			result = append(result, o.RunID)
		}
	}

	return result
}
