// Package planner decomposes an approved goal into a validated,
// dependency-ordered task graph.
package planner

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
)

// Duration scaling applied plan-wide by constraint keywords
const (
	fastFactor     = 0.7
	thoroughFactor = 1.5
)

// Decomposer turns a goal into a task graph. Implementations may
// produce any DAG; templates are just the built-in strategy.
type Decomposer interface {
	Decompose(goal *domain.Goal) ([]*domain.Task, string, error)
}

// Planner validates and orders decomposed task graphs
type Planner struct {
	decomposer Decomposer
	log        *zap.Logger
}

// New creates a Planner. A nil decomposer falls back to the built-in
// template strategy.
func New(decomposer Decomposer, log *zap.Logger) *Planner {
	if decomposer == nil {
		decomposer = TemplateDecomposer{}
	}
	return &Planner{decomposer: decomposer, log: log.Named("planner")}
}

// Plan decomposes the goal, validates the resulting graph, and
// returns the tasks in execution order
func (p *Planner) Plan(goal *domain.Goal) (*domain.Plan, error) {
	tasks, reasoning, err := p.decomposer.Decompose(goal)
	if err != nil {
		p.log.Error("decomposition failed", zap.Error(err))
		return nil, fmt.Errorf("decomposing goal: %w", err)
	}
	if len(tasks) == 0 {
		p.log.Error("decomposition produced no tasks", zap.String("goal_id", goal.ID))
		return nil, &ValidationError{Kind: "empty_plan", Message: "decomposition produced no tasks"}
	}

	scale := durationScale(goal.Constraints)
	if scale != 1.0 {
		for _, t := range tasks {
			t.EstimatedDuration = time.Duration(float64(t.EstimatedDuration) * scale)
		}
	}

	if err := Validate(tasks); err != nil {
		p.log.Error("task graph validation failed", zap.Error(err))
		return nil, err
	}

	ordered := Order(tasks)

	var total time.Duration
	for _, t := range ordered {
		total += t.EstimatedDuration
	}

	plan := &domain.Plan{
		GoalID:         goal.ID,
		Tasks:          ordered,
		Reasoning:      reasoning,
		EstimatedTotal: total,
	}

	p.log.Info("plan created",
		zap.String("goal_id", goal.ID),
		zap.Int("tasks", len(ordered)),
		zap.Duration("estimated_total", total))

	return plan, nil
}

// durationScale maps constraint keywords onto a plan-wide factor
func durationScale(constraints []string) float64 {
	scale := 1.0
	for _, c := range constraints {
		lower := strings.ToLower(c)
		if strings.Contains(lower, "fast") {
			scale *= fastFactor
		}
		if strings.Contains(lower, "thorough") {
			scale *= thoroughFactor
		}
	}
	return scale
}
