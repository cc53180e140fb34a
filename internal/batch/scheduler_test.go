package batch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/logging"
)

func TestParseCron(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"0 22 * * *", false},   // 10 PM daily
		{"0 12 * * 1-5", false}, // noon weekdays
		{"*/5 * * * *", false},  // every 5 minutes
		{"invalid", true},
	}

	for _, tt := range tests {
		_, err := ParseCron(tt.expr)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCron(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
		}
	}
}

func TestBatchConfig_Validate(t *testing.T) {
	cfg := BatchConfig{
		Name: "overnight",
		Cron: "0 22 * * *",
		Goals: []GoalSpec{
			{Goal: "Generate the nightly usage report"},
		},
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Valid config should not error: %v", err)
	}
	if cfg.MaxGoals != 10 {
		t.Errorf("MaxGoals = %d, want default 10", cfg.MaxGoals)
	}

	cfg.Name = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Empty name should error")
	}

	cfg.Name = "overnight"
	cfg.Goals = nil
	if err := cfg.Validate(); err == nil {
		t.Error("Batch without goals should error")
	}
}

func TestLoadScheduleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batches.yaml")
	content := `batches:
  - name: overnight
    cron: "0 22 * * *"
    goals:
      - goal: Generate the nightly usage report
        constraints: [fast]
      - goal: Migrate pending records to the archive
        plan_only: true
  - name: weekly
    cron: "0 6 * * 1"
    max_goals: 3
    goals:
      - goal: Rotate the service credentials
        context: staging environment only
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadScheduleConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Batches) != 2 {
		t.Fatalf("Batches count = %d, want 2", len(cfg.Batches))
	}
	if cfg.Batches[0].Name != "overnight" || len(cfg.Batches[0].Goals) != 2 {
		t.Errorf("first batch = %+v, want overnight with 2 goals", cfg.Batches[0])
	}
	if !cfg.Batches[0].Goals[1].PlanOnly {
		t.Error("plan_only flag not parsed")
	}
	if cfg.Batches[1].MaxGoals != 3 {
		t.Errorf("MaxGoals = %d, want 3", cfg.Batches[1].MaxGoals)
	}
}

func TestLoadScheduleConfig_MissingFile(t *testing.T) {
	cfg, err := LoadScheduleConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should yield empty config, got %v", err)
	}
	if len(cfg.Batches) != 0 {
		t.Errorf("Batches count = %d, want 0", len(cfg.Batches))
	}
}

func testBatch(name, cronExpr string) BatchConfig {
	return BatchConfig{
		Name:  name,
		Cron:  cronExpr,
		Goals: []GoalSpec{{Goal: "Generate the nightly usage report"}},
	}
}

func TestScheduler_NextRun(t *testing.T) {
	sched, err := NewScheduler([]BatchConfig{testBatch("test", "0 22 * * *")}, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}

	next := sched.NextRun("test")
	if next.IsZero() {
		t.Error("NextRun should return a time")
	}
	if !next.After(time.Now()) {
		t.Error("NextRun should be in the future")
	}
}

func TestScheduler_ShouldRun(t *testing.T) {
	sched, err := NewScheduler([]BatchConfig{testBatch("test", "* * * * *")}, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}

	// Mark as last run two minutes ago
	sched.lastRun["test"] = time.Now().Add(-2 * time.Minute)

	if !sched.ShouldRun("test") {
		t.Error("Should run after cron interval passed")
	}

	sched.MarkRunning("test")
	if sched.ShouldRun("test") {
		t.Error("Running batch should not be scheduled again")
	}

	sched.MarkComplete("test")
	if sched.ShouldRun("test") {
		t.Error("Just-completed batch should wait for the next interval")
	}
}

func TestScheduler_ListBatches(t *testing.T) {
	sched, err := NewScheduler([]BatchConfig{
		testBatch("weekly", "0 6 * * 1"),
		testBatch("overnight", "0 22 * * *"),
	}, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}

	names := sched.ListBatches()
	if len(names) != 2 || names[0] != "overnight" || names[1] != "weekly" {
		t.Errorf("ListBatches() = %v, want [overnight weekly]", names)
	}
}
