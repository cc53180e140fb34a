package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/config"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/executor"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/logging"
)

const pipelineGoal = "Set up automated deployment pipeline with CI/CD for the Go service"

type runSinkStub struct {
	runs []*domain.ExecutionRun
}

func (s *runSinkStub) SaveRun(run *domain.ExecutionRun) error {
	s.runs = append(s.runs, run)
	return nil
}

type failingSink struct{}

func (failingSink) SaveRun(*domain.ExecutionRun) error {
	return errors.New("sink unavailable")
}

type injectTask struct {
	id string
}

func (i injectTask) ShouldInject(phase, taskID string) bool {
	return taskID == i.id
}

func newTestOrchestrator(deps Deps) *Orchestrator {
	if deps.Outcome == nil {
		deps.Outcome = executor.AlwaysSucceed()
	}
	return New(config.Default(), logging.Nop(), deps)
}

func TestProcessGoalRejectsShortGoal(t *testing.T) {
	o := newTestOrchestrator(Deps{})

	run, err := o.ProcessGoal(context.Background(), "fix", "", Options{})
	if err == nil {
		t.Fatal("ProcessGoal accepted a goal below the minimum length")
	}
	if run != nil {
		t.Errorf("run = %+v, want nil for rejected input", run)
	}
	if kind := KindOf(err); kind != KindValidation {
		t.Errorf("KindOf(err) = %q, want %q", kind, KindValidation)
	}
}

func TestProcessGoalBlocksDestructiveGoal(t *testing.T) {
	sink := &runSinkStub{}
	o := newTestOrchestrator(Deps{Sink: sink})

	run, err := o.ProcessGoal(context.Background(), "Delete all production data right now", "", Options{})
	if err == nil {
		t.Fatal("ProcessGoal approved a destructive goal")
	}
	if kind := KindOf(err); kind != KindSafetyBlocked {
		t.Errorf("KindOf(err) = %q, want %q", kind, KindSafetyBlocked)
	}
	if run.Status != domain.RunBlocked {
		t.Errorf("run.Status = %q, want %q", run.Status, domain.RunBlocked)
	}
	if run.Safety == nil || run.Safety.Approved {
		t.Error("blocked run should carry an unapproved safety verdict")
	}
	if run.Plan != nil {
		t.Error("blocked run should not reach planning")
	}
	if len(sink.runs) != 1 {
		t.Errorf("persisted runs = %d, want 1", len(sink.runs))
	}
}

func TestProcessGoalHaltsOnRequiredClarification(t *testing.T) {
	o := newTestOrchestrator(Deps{})

	run, err := o.ProcessGoal(context.Background(), "Make it better", "", Options{})
	if err == nil {
		t.Fatal("ProcessGoal proceeded past a required clarification")
	}
	if kind := KindOf(err); kind != KindClarificationRequired {
		t.Errorf("KindOf(err) = %q, want %q", kind, KindClarificationRequired)
	}
	if run.Status != domain.RunBlocked {
		t.Errorf("run.Status = %q, want %q", run.Status, domain.RunBlocked)
	}
	if run.Safety == nil || !run.Safety.Approved {
		t.Error("clarification halt should keep the verdict approved")
	}
}

func TestProcessGoalProceedPastClarification(t *testing.T) {
	o := newTestOrchestrator(Deps{})

	run, err := o.ProcessGoal(context.Background(), "Make it better", "", Options{
		ProceedOnClarification: true,
	})
	if err != nil {
		t.Fatalf("ProcessGoal with explicit proceed failed: %v", err)
	}
	if run.Status != domain.RunCompleted {
		t.Errorf("run.Status = %q, want %q", run.Status, domain.RunCompleted)
	}
	if run.Plan == nil || len(run.Plan.Tasks) == 0 {
		t.Fatal("proceeded run should carry a plan")
	}
	if run.Summary == nil || run.Summary.Completed != len(run.Plan.Tasks) {
		t.Errorf("summary = %+v, want all %d tasks completed", run.Summary, len(run.Plan.Tasks))
	}
}

func TestProcessGoalPlanOnly(t *testing.T) {
	o := newTestOrchestrator(Deps{})

	run, err := o.ProcessGoal(context.Background(), pipelineGoal, "", Options{SkipExecution: true})
	if err != nil {
		t.Fatalf("ProcessGoal failed: %v", err)
	}
	if run.Status != domain.RunCompleted {
		t.Errorf("run.Status = %q, want %q", run.Status, domain.RunCompleted)
	}
	if run.Plan == nil || len(run.Plan.Tasks) == 0 {
		t.Fatal("plan-only run should carry a validated plan")
	}
	if run.Summary != nil {
		t.Error("plan-only run should not have an execution summary")
	}
	for _, rec := range run.Phases {
		if rec.Phase == domain.PhaseExecution {
			t.Error("plan-only run recorded an execution phase")
		}
	}
}

func TestProcessGoalCompletesPipeline(t *testing.T) {
	sink := &runSinkStub{}
	o := newTestOrchestrator(Deps{Sink: sink})

	run, err := o.ProcessGoal(context.Background(), pipelineGoal, "Repository uses GitHub Actions", Options{})
	if err != nil {
		t.Fatalf("ProcessGoal failed: %v", err)
	}
	if run.Status != domain.RunCompleted {
		t.Errorf("run.Status = %q, want %q", run.Status, domain.RunCompleted)
	}
	if run.Intent == nil || run.Intent.Intent != domain.IntentExecutionGoal {
		t.Errorf("intent = %+v, want %q", run.Intent, domain.IntentExecutionGoal)
	}
	if run.Summary == nil || run.Summary.Failed != 0 || run.Summary.Skipped != 0 {
		t.Errorf("summary = %+v, want no failures or skips", run.Summary)
	}
	if run.Score != 1.0 {
		t.Errorf("run.Score = %v, want 1.0 for a clean on-budget run", run.Score)
	}
	if run.FinishedAt == nil {
		t.Error("finished run should have FinishedAt set")
	}

	want := []domain.Phase{
		domain.PhaseIntent,
		domain.PhaseSafety,
		domain.PhaseConfidence,
		domain.PhasePlanning,
		domain.PhaseExecution,
		domain.PhaseReflection,
	}
	if len(run.Phases) != len(want) {
		t.Fatalf("len(run.Phases) = %d, want %d", len(run.Phases), len(want))
	}
	for i, rec := range run.Phases {
		if rec.Phase != want[i] {
			t.Errorf("phase[%d] = %q, want %q", i, rec.Phase, want[i])
		}
		if rec.Err != "" {
			t.Errorf("phase %q recorded error %q", rec.Phase, rec.Err)
		}
	}

	if len(sink.runs) != 1 || sink.runs[0].ID != run.ID {
		t.Errorf("persisted runs = %d, want exactly the finished run", len(sink.runs))
	}
}

func TestProcessGoalInformationQueryShortCircuits(t *testing.T) {
	o := newTestOrchestrator(Deps{})

	run, err := o.ProcessGoal(context.Background(),
		"What is the difference between staging and production deployments?", "", Options{})
	if err != nil {
		t.Fatalf("ProcessGoal failed: %v", err)
	}
	if run.Intent == nil || run.Intent.Intent != domain.IntentInformationQuery {
		t.Fatalf("intent = %+v, want %q", run.Intent, domain.IntentInformationQuery)
	}
	if run.Status != domain.RunCompleted {
		t.Errorf("run.Status = %q, want %q", run.Status, domain.RunCompleted)
	}
	if run.Safety != nil || run.Plan != nil || run.Summary != nil {
		t.Error("information query should not reach safety, planning, or execution")
	}
	if len(run.Phases) != 1 || run.Phases[0].Phase != domain.PhaseIntent {
		t.Errorf("phases = %+v, want intent only", run.Phases)
	}
}

func TestProcessGoalInjectedFailureSkipsDependents(t *testing.T) {
	o := newTestOrchestrator(Deps{Injector: injectTask{id: "task-2"}})

	run, err := o.ProcessGoal(context.Background(), pipelineGoal, "", Options{})
	if err != nil {
		t.Fatalf("ProcessGoal failed: %v", err)
	}
	if run.Summary == nil {
		t.Fatal("run has no execution summary")
	}
	if run.Summary.Failed != 1 {
		t.Errorf("Summary.Failed = %d, want 1", run.Summary.Failed)
	}
	failed := run.Plan.TaskByID("task-2")
	if failed == nil || failed.Status != domain.StatusFailed {
		t.Fatalf("task-2 status = %v, want %q", failed, domain.StatusFailed)
	}
	if failed.Result == nil || failed.Result.Error != "injected failure" {
		t.Errorf("task-2 result = %+v, want injected failure", failed.Result)
	}
	if got := run.Summary.Skipped; got != len(run.Plan.Tasks)-2 {
		t.Errorf("Summary.Skipped = %d, want %d downstream tasks skipped", got, len(run.Plan.Tasks)-2)
	}
	if run.Status != domain.RunCompleted {
		t.Errorf("run.Status = %q, want %q despite task failures", run.Status, domain.RunCompleted)
	}
}

func TestProcessGoalEmitsEvents(t *testing.T) {
	var events []Event
	o := newTestOrchestrator(Deps{Events: func(e Event) { events = append(events, e) }})

	run, err := o.ProcessGoal(context.Background(), pipelineGoal, "", Options{})
	if err != nil {
		t.Fatalf("ProcessGoal failed: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("no events emitted")
	}
	if events[0].Type != EventPhaseStarted || events[0].Phase != domain.PhaseIntent {
		t.Errorf("first event = %+v, want intent phase start", events[0])
	}
	last := events[len(events)-1]
	if last.Type != EventRunFinished || last.Status != string(domain.RunCompleted) {
		t.Errorf("last event = %+v, want run_finished with completed status", last)
	}

	counts := make(map[string]int)
	for _, e := range events {
		counts[e.Type]++
		if e.RunID != run.ID {
			t.Errorf("event %+v carries run ID %q, want %q", e, e.RunID, run.ID)
		}
	}
	if counts[EventPhaseStarted] != 6 || counts[EventPhaseFinished] != 6 {
		t.Errorf("phase events = %d started / %d finished, want 6 each",
			counts[EventPhaseStarted], counts[EventPhaseFinished])
	}
	// One announcement per planned task plus one final status each
	if counts[EventTaskUpdate] != 2*len(run.Plan.Tasks) {
		t.Errorf("task_update events = %d, want %d", counts[EventTaskUpdate], 2*len(run.Plan.Tasks))
	}
	if counts[EventTaskProgress] == 0 {
		t.Error("expected task_progress events during execution")
	}
}

func TestProcessGoalToleratesSinkError(t *testing.T) {
	o := newTestOrchestrator(Deps{Sink: failingSink{}})

	run, err := o.ProcessGoal(context.Background(), pipelineGoal, "", Options{SkipExecution: true})
	if err != nil {
		t.Fatalf("ProcessGoal failed on sink error: %v", err)
	}
	if run.Status != domain.RunCompleted {
		t.Errorf("run.Status = %q, want %q", run.Status, domain.RunCompleted)
	}
}
