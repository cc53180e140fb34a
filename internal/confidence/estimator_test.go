package confidence

import (
	"testing"
	"time"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/logging"
)

func newTestEstimator() *Estimator {
	return NewEstimator(DefaultOptions(), logging.Nop())
}

func draftPlan(taskCount int, total time.Duration) *domain.Plan {
	tasks := make([]*domain.Task, taskCount)
	for i := range tasks {
		tasks[i] = &domain.Task{ID: "t", Status: domain.StatusPending}
	}
	return &domain.Plan{Tasks: tasks, EstimatedTotal: total}
}

func TestAssess_NoHistoryDefaults(t *testing.T) {
	e := newTestEstimator()
	goal := domain.NewGoal("Build a REST API in Go with Postgres", "", nil)

	a := e.Assess(goal, nil, nil)

	if a.Historical.SimilarSuccessRate != 0.7 {
		t.Errorf("SimilarSuccessRate = %v, want 0.7", a.Historical.SimilarSuccessRate)
	}
	if a.Historical.OverallSuccessRate != 0.7 {
		t.Errorf("OverallSuccessRate = %v, want 0.7", a.Historical.OverallSuccessRate)
	}
	if a.Historical.RecentTrend != 0.5 {
		t.Errorf("RecentTrend = %v, want 0.5", a.Historical.RecentTrend)
	}
	if a.Historical.Overall != 0.6 {
		t.Errorf("Historical.Overall = %v, want 0.6", a.Historical.Overall)
	}
}

func TestAssess_OverallWithinBounds(t *testing.T) {
	e := newTestEstimator()
	goals := []*domain.Goal{
		domain.NewGoal("x", "", nil),
		domain.NewGoal("Make it better", "", nil),
		domain.NewGoal("Deploy a Kubernetes cluster on AWS with automated testing, 3 nodes, uptime above 99.9 percent", "Terraform modules exist, team runs EKS in staging", nil),
	}
	for _, g := range goals {
		a := e.Assess(g, draftPlan(12, 200*time.Minute), nil)
		if a.Overall < 0 || a.Overall > 1 {
			t.Errorf("Overall = %v for %q, want within [0,1]", a.Overall, g.Description)
		}
	}
}

func TestAssess_CICDScenario(t *testing.T) {
	e := newTestEstimator()
	goal := domain.NewGoal(
		"Create a CI/CD pipeline for a Node.js application with automated testing and deployment",
		"Deploy target is AWS, repository uses GitHub Actions",
		nil,
	)

	a := e.Assess(goal, draftPlan(5, 150*time.Minute), nil)
	if a.Overall < 0.5 {
		t.Errorf("Overall = %v, want >= 0.5", a.Overall)
	}
	if !a.Proceed {
		t.Error("Proceed = false, want true")
	}
}

func TestAssess_LevelBuckets(t *testing.T) {
	cases := []struct {
		overall float64
		want    domain.ConfidenceLevel
	}{
		{0.90, domain.ConfidenceVeryHigh},
		{0.85, domain.ConfidenceVeryHigh},
		{0.75, domain.ConfidenceHigh},
		{0.60, domain.ConfidenceMedium},
		{0.40, domain.ConfidenceLow},
		{0.20, domain.ConfidenceVeryLow},
	}
	for _, c := range cases {
		if got := levelFor(c.overall); got != c.want {
			t.Errorf("levelFor(%v) = %s, want %s", c.overall, got, c.want)
		}
	}
}

func TestAssess_ComplexityDecreasesWithPlanSize(t *testing.T) {
	small := assessComplexity(draftPlan(3, 30*time.Minute))
	large := assessComplexity(draftPlan(10, 170*time.Minute))

	if large.Overall >= small.Overall {
		t.Errorf("complexity overall: large plan %v >= small plan %v, want lower", large.Overall, small.Overall)
	}
	if large.Overall < 0.3 {
		t.Errorf("Overall = %v, want floor of 0.3", large.Overall)
	}
}

func TestAssess_SimilarGoalHistory(t *testing.T) {
	e := newTestEstimator()
	goal := domain.NewGoal("Deploy the billing service to production", "", nil)

	history := []domain.RunRecord{
		{Goal: "Deploy the billing service to staging", Success: true, Score: 0.9},
		{Goal: "Deploy the payments service", Success: true, Score: 0.8},
		{Goal: "Summarize quarterly incident reports", Success: false, Score: 0.2},
	}

	a := e.Assess(goal, nil, history)
	// Both "deploy"-sharing runs succeeded
	if a.Historical.SimilarSuccessRate != 1.0 {
		t.Errorf("SimilarSuccessRate = %v, want 1.0", a.Historical.SimilarSuccessRate)
	}
	if a.Historical.SampleSize != 3 {
		t.Errorf("SampleSize = %d, want 3", a.Historical.SampleSize)
	}
}

func TestRecentTrend(t *testing.T) {
	improving := make([]domain.RunRecord, 0, 10)
	for i := 0; i < 5; i++ {
		improving = append(improving, domain.RunRecord{Score: 0.3})
	}
	for i := 0; i < 5; i++ {
		improving = append(improving, domain.RunRecord{Score: 0.9})
	}

	trend := recentTrend(improving)
	if trend <= 0.5 {
		t.Errorf("trend = %v for improving history, want > 0.5", trend)
	}

	declining := make([]domain.RunRecord, 0, 10)
	for i := 0; i < 5; i++ {
		declining = append(declining, domain.RunRecord{Score: 0.9})
	}
	for i := 0; i < 5; i++ {
		declining = append(declining, domain.RunRecord{Score: 0.3})
	}

	trend = recentTrend(declining)
	if trend >= 0.5 {
		t.Errorf("trend = %v for declining history, want < 0.5", trend)
	}
}

func TestAssess_LowConfidenceStops(t *testing.T) {
	e := newTestEstimator()
	goal := domain.NewGoal("stuff", "", nil)

	history := []domain.RunRecord{
		{Goal: "other", Success: false, Score: 0.1},
		{Goal: "different", Success: false, Score: 0.1},
	}

	a := e.Assess(goal, draftPlan(12, 200*time.Minute), history)
	if a.Proceed {
		t.Errorf("Proceed = true at overall %v, want false", a.Overall)
	}
	if a.CautionLevel != "high" {
		t.Errorf("CautionLevel = %q, want high", a.CautionLevel)
	}
	if a.Approach == "" {
		t.Error("Approach text missing")
	}
	if len(a.NegativeFactors) == 0 {
		t.Error("NegativeFactors empty, want several")
	}
}
