package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/confidence"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/logging"
)

func testRun(id, goal string, status domain.RunStatus, score float64, startedAt time.Time) *domain.ExecutionRun {
	finished := startedAt.Add(time.Minute)
	return &domain.ExecutionRun{
		ID:   id,
		Goal: &domain.Goal{ID: id + "-goal", Description: goal, CreatedAt: startedAt},
		Intent: &domain.IntentClassification{
			Input:      goal,
			Intent:     domain.IntentExecutionGoal,
			Confidence: 0.9,
		},
		Summary:    &domain.ExecutionSummary{Completed: 3},
		Status:     status,
		Score:      score,
		StartedAt:  startedAt,
		FinishedAt: &finished,
	}
}

func TestStore_SaveAndGetRun(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	run := testRun("run-1", "Deploy the billing service", domain.RunCompleted, 0.92, time.Now())
	if err := store.SaveRun(run); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetRun("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Goal.Description != run.Goal.Description {
		t.Errorf("Goal = %q, want %q", got.Goal.Description, run.Goal.Description)
	}
	if got.Status != domain.RunCompleted {
		t.Errorf("Status = %q, want %q", got.Status, domain.RunCompleted)
	}
	if got.Score != 0.92 {
		t.Errorf("Score = %v, want 0.92", got.Score)
	}
	if got.Intent == nil || got.Intent.Intent != domain.IntentExecutionGoal {
		t.Errorf("Intent = %+v, want %q", got.Intent, domain.IntentExecutionGoal)
	}
}

func TestStore_SaveRunUpsert(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	run := testRun("run-1", "Migrate the database", domain.RunRunning, 0, time.Now())
	if err := store.SaveRun(run); err != nil {
		t.Fatal(err)
	}

	run.Status = domain.RunCompleted
	run.Score = 0.8
	if err := store.SaveRun(run); err != nil {
		t.Fatal(err)
	}

	summaries, err := store.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 {
		t.Fatalf("ListRuns count = %d, want 1 after upsert", len(summaries))
	}
	if summaries[0].Status != string(domain.RunCompleted) {
		t.Errorf("Status = %q, want %q", summaries[0].Status, domain.RunCompleted)
	}
}

func TestStore_ListRunsNewestFirst(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	base := time.Now().Add(-time.Hour)
	runs := []*domain.ExecutionRun{
		testRun("run-1", "Build the API", domain.RunCompleted, 0.9, base),
		testRun("run-2", "Deploy to staging", domain.RunFailed, 0.2, base.Add(10*time.Minute)),
		testRun("run-3", "Set up monitoring", domain.RunCompleted, 0.85, base.Add(20*time.Minute)),
	}
	for _, run := range runs {
		if err := store.SaveRun(run); err != nil {
			t.Fatal(err)
		}
	}

	summaries, err := store.ListRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 {
		t.Fatalf("ListRuns count = %d, want 2", len(summaries))
	}
	if summaries[0].ID != "run-3" || summaries[1].ID != "run-2" {
		t.Errorf("order = [%s %s], want [run-3 run-2]", summaries[0].ID, summaries[1].ID)
	}
}

func TestStore_RecentRunsSuccessMapping(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	base := time.Now().Add(-time.Hour)

	clean := testRun("run-1", "Build the pipeline", domain.RunCompleted, 0.9, base)
	if err := store.SaveRun(clean); err != nil {
		t.Fatal(err)
	}

	degraded := testRun("run-2", "Deploy the service", domain.RunCompleted, 0.6, base.Add(time.Minute))
	degraded.Summary = &domain.ExecutionSummary{Completed: 2, Failed: 1}
	if err := store.SaveRun(degraded); err != nil {
		t.Fatal(err)
	}

	blocked := testRun("run-3", "Delete everything", domain.RunBlocked, 0, base.Add(2*time.Minute))
	if err := store.SaveRun(blocked); err != nil {
		t.Fatal(err)
	}

	records, err := store.RecentRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("RecentRuns count = %d, want 3", len(records))
	}

	bySuccess := make(map[string]bool, len(records))
	for _, rec := range records {
		bySuccess[rec.Goal] = rec.Success
	}
	if !bySuccess["Build the pipeline"] {
		t.Error("clean completed run should count as success")
	}
	if bySuccess["Deploy the service"] {
		t.Error("completed run with failed tasks should not count as success")
	}
	if bySuccess["Delete everything"] {
		t.Error("blocked run should not count as success")
	}
}

func TestStore_RecentRunsChronologicalOrder(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	base := time.Now().Add(-time.Hour)
	scores := []float64{0.2, 0.4, 0.6, 0.8}
	for i, score := range scores {
		run := testRun(fmt.Sprintf("run-%d", i+1), "Deploy the billing service",
			domain.RunCompleted, score, base.Add(time.Duration(i)*time.Minute))
		if err := store.SaveRun(run); err != nil {
			t.Fatal(err)
		}
	}

	records, err := store.RecentRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != len(scores) {
		t.Fatalf("RecentRuns count = %d, want %d", len(records), len(scores))
	}
	for i, rec := range records {
		if rec.Score != scores[i] {
			t.Errorf("records[%d].Score = %v, want %v (oldest first)", i, rec.Score, scores[i])
		}
	}
}

func TestStore_RecentRunsFeedTrendUpward(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	// Ten runs whose scores improve over time; the estimator must see
	// the improvement, not its mirror image
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 10; i++ {
		score := 0.3
		if i >= 5 {
			score = 0.9
		}
		run := testRun(fmt.Sprintf("run-%d", i+1), "Deploy the billing service",
			domain.RunCompleted, score, base.Add(time.Duration(i)*time.Minute))
		if err := store.SaveRun(run); err != nil {
			t.Fatal(err)
		}
	}

	records, err := store.RecentRuns(20)
	if err != nil {
		t.Fatal(err)
	}

	estimator := confidence.NewEstimator(confidence.DefaultOptions(), logging.Nop())
	goal := domain.NewGoal("Deploy the billing service to staging", "", nil)
	assessment := estimator.Assess(goal, nil, records)

	if assessment.Historical.RecentTrend <= 0.5 {
		t.Errorf("RecentTrend = %v for improving history, want > 0.5",
			assessment.Historical.RecentTrend)
	}
}

func TestStore_DecisionLog(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	records := []domain.DecisionRecord{
		{VerdictID: "v-1", Decision: domain.DecisionApproved, Level: domain.SafetySafe, Score: 100, At: time.Now()},
		{VerdictID: "v-2", Decision: domain.DecisionBlocked, Level: domain.SafetyBlocked, Score: 10, Reason: "critical violation", At: time.Now()},
	}
	for _, rec := range records {
		if err := store.LogDecision(rec); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.ListDecisions(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("ListDecisions count = %d, want 2", len(got))
	}
	if got[0].VerdictID != "v-2" {
		t.Errorf("newest decision = %q, want v-2", got[0].VerdictID)
	}
	if got[0].Decision != domain.DecisionBlocked || got[0].Reason != "critical violation" {
		t.Errorf("decision = %+v, want blocked with reason", got[0])
	}
}
