package planner

import (
	"errors"
	"testing"
	"time"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/logging"
)

func TestPlan_AutomationTemplate(t *testing.T) {
	p := New(nil, logging.Nop())
	goal := domain.NewGoal("Create a CI/CD pipeline for a Node.js application with automated testing and deployment", "AWS, GitHub Actions", nil)

	plan, err := p.Plan(goal)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(plan.Tasks) < 4 {
		t.Errorf("task count = %d, want >= 4", len(plan.Tasks))
	}
	if err := Validate(plan.Tasks); err != nil {
		t.Errorf("plan is not a valid DAG: %v", err)
	}
	if plan.EstimatedTotal <= 0 {
		t.Errorf("EstimatedTotal = %v, want > 0", plan.EstimatedTotal)
	}
	if plan.Reasoning == "" {
		t.Error("Reasoning missing")
	}
}

func TestPlan_DefaultTemplate(t *testing.T) {
	p := New(nil, logging.Nop())
	goal := domain.NewGoal("Rewrite the onboarding guide for clarity", "", nil)

	plan, err := p.Plan(goal)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(plan.Tasks) != 4 {
		t.Errorf("task count = %d, want 4 (default template)", len(plan.Tasks))
	}
}

func TestPlan_OrderRespectsDependencies(t *testing.T) {
	p := New(nil, logging.Nop())
	goal := domain.NewGoal("Integrate the billing API with the CRM via webhook sync", "", nil)

	plan, err := p.Plan(goal)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	seen := make(map[string]bool)
	for _, task := range plan.Tasks {
		for _, dep := range task.Dependencies {
			if !seen[dep] {
				t.Errorf("task %s ordered before its dependency %s", task.ID, dep)
			}
		}
		seen[task.ID] = true
	}
}

func TestPlan_ConstraintScaling(t *testing.T) {
	p := New(nil, logging.Nop())

	base, err := p.Plan(domain.NewGoal("Automate the nightly report workflow", "", nil))
	if err != nil {
		t.Fatal(err)
	}
	fast, err := p.Plan(domain.NewGoal("Automate the nightly report workflow", "", []string{"fast"}))
	if err != nil {
		t.Fatal(err)
	}
	thorough, err := p.Plan(domain.NewGoal("Automate the nightly report workflow", "", []string{"thorough"}))
	if err != nil {
		t.Fatal(err)
	}

	wantFast := time.Duration(float64(base.EstimatedTotal) * 0.7)
	if fast.EstimatedTotal != wantFast {
		t.Errorf("fast total = %v, want %v", fast.EstimatedTotal, wantFast)
	}
	wantThorough := time.Duration(float64(base.EstimatedTotal) * 1.5)
	if thorough.EstimatedTotal != wantThorough {
		t.Errorf("thorough total = %v, want %v", thorough.EstimatedTotal, wantThorough)
	}
}

// arbitraryDecomposer returns a fixed task set to exercise non-chain DAGs
type arbitraryDecomposer struct {
	tasks []*domain.Task
}

func (d arbitraryDecomposer) Decompose(*domain.Goal) ([]*domain.Task, string, error) {
	return d.tasks, "fixed graph", nil
}

func TestPlan_DiamondDAG(t *testing.T) {
	tasks := []*domain.Task{
		{ID: "a", Priority: domain.PriorityHigh, Status: domain.StatusPending},
		{ID: "b", Priority: domain.PriorityMedium, Dependencies: []string{"a"}, Status: domain.StatusPending},
		{ID: "c", Priority: domain.PriorityMedium, Dependencies: []string{"a"}, Status: domain.StatusPending},
		{ID: "d", Priority: domain.PriorityLow, Dependencies: []string{"b", "c"}, Status: domain.StatusPending},
	}
	p := New(arbitraryDecomposer{tasks: tasks}, logging.Nop())

	plan, err := p.Plan(domain.NewGoal("any goal text here", "", nil))
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	pos := make(map[string]int)
	for i, task := range plan.Tasks {
		pos[task.ID] = i
	}
	if pos["a"] > pos["b"] || pos["a"] > pos["c"] || pos["b"] > pos["d"] || pos["c"] > pos["d"] {
		t.Errorf("order violates dependencies: %v", pos)
	}
}

func TestValidate_Cycle(t *testing.T) {
	tasks := []*domain.Task{
		{ID: "a", Dependencies: []string{"c"}},
		{ID: "b", Dependencies: []string{"a"}},
		{ID: "c", Dependencies: []string{"b"}},
	}

	err := Validate(tasks)
	if err == nil {
		t.Fatal("Validate() = nil for cyclic graph, want error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if verr.Kind != "cycle_detected" {
		t.Errorf("Kind = %q, want cycle_detected", verr.Kind)
	}
}

func TestValidate_SelfCycle(t *testing.T) {
	tasks := []*domain.Task{{ID: "a", Dependencies: []string{"a"}}}
	err := Validate(tasks)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Kind != "cycle_detected" {
		t.Errorf("Validate() = %v, want cycle_detected", err)
	}
}

func TestValidate_DanglingDependency(t *testing.T) {
	tasks := []*domain.Task{
		{ID: "a"},
		{ID: "b", Dependencies: []string{"missing"}},
	}

	err := Validate(tasks)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if verr.Kind != "dangling_dependency" {
		t.Errorf("Kind = %q, want dangling_dependency", verr.Kind)
	}
}

func TestPlan_CyclicDecompositionFails(t *testing.T) {
	tasks := []*domain.Task{
		{ID: "x", Dependencies: []string{"y"}},
		{ID: "y", Dependencies: []string{"x"}},
	}
	p := New(arbitraryDecomposer{tasks: tasks}, logging.Nop())

	if _, err := p.Plan(domain.NewGoal("whatever the goal", "", nil)); err == nil {
		t.Error("Plan() = nil error for cyclic decomposition, want failure")
	}
}
