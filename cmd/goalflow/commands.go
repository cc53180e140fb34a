package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/batch"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/config"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/history"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/logging"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/observer"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/orchestrator"
	"github.com/ekjot2727-png/ai-agent-sub001/tui"
	"github.com/ekjot2727-png/ai-agent-sub001/web/api"
)

var (
	runContext     string
	runConstraints []string
	runPlanOnly    bool
	runOptimize    bool
	runProceed     bool
	runMonitor     bool
	histLimit      int
	servePort      int
	batchNow       bool
	watchDir       string
)

func init() {
	// run command
	runCmd := &cobra.Command{
		Use:   "run GOAL",
		Short: "Run a goal through the full pipeline",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}
	runCmd.Flags().StringVar(&runContext, "context", "", "additional context for the goal")
	runCmd.Flags().StringArrayVar(&runConstraints, "constraint", nil, "goal constraint (e.g. fast, thorough)")
	runCmd.Flags().BoolVar(&runPlanOnly, "plan-only", false, "stop after planning")
	runCmd.Flags().BoolVar(&runOptimize, "optimize", false, "run independent tasks in parallel")
	runCmd.Flags().BoolVar(&runProceed, "proceed", false, "proceed past clarification requests")
	runCmd.Flags().BoolVar(&runMonitor, "monitor", false, "show the live TUI monitor")
	rootCmd.AddCommand(runCmd)

	// plan command
	planCmd := &cobra.Command{
		Use:   "plan GOAL",
		Short: "Decompose a goal into a task graph without executing",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlan,
	}
	planCmd.Flags().StringVar(&runContext, "context", "", "additional context for the goal")
	planCmd.Flags().StringArrayVar(&runConstraints, "constraint", nil, "goal constraint (e.g. fast, thorough)")
	rootCmd.AddCommand(planCmd)

	// classify command
	classifyCmd := &cobra.Command{
		Use:   "classify INPUT",
		Short: "Classify input intent without running the pipeline",
		Args:  cobra.ExactArgs(1),
		RunE:  runClassify,
	}
	rootCmd.AddCommand(classifyCmd)

	// validate command
	validateCmd := &cobra.Command{
		Use:   "validate GOAL",
		Short: "Check a goal against the safety rules",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
	rootCmd.AddCommand(validateCmd)

	// history command
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&histLimit, "limit", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)

	// serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web API server",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on")
	rootCmd.AddCommand(serveCmd)

	// watch command
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a drop directory for goal files",
		RunE:  runWatch,
	}
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "goal drop directory (defaults to config)")
	rootCmd.AddCommand(watchCmd)

	// batch command
	batchCmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Run scheduled goal batches from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&batchNow, "now", false, "run every batch once immediately and exit")
	rootCmd.AddCommand(batchCmd)
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.Load(path)
}

func newLogger(cfg *config.Config) *zap.Logger {
	return logging.New(logging.Options{
		Verbose: verbose || cfg.Executor.VerboseLogging,
		Format:  cfg.Logging.Format,
	})
}

// recordingSink fans saved runs out to the store and the metrics
// monitor
type recordingSink struct {
	store   *history.Store
	monitor *observer.Monitor
}

func (s recordingSink) SaveRun(run *domain.ExecutionRun) error {
	if s.monitor != nil {
		s.monitor.RecordRun(run)
	}
	return s.store.SaveRun(run)
}

func buildPipeline(cfg *config.Config, log *zap.Logger, monitor *observer.Monitor, events orchestrator.EventFunc) (*orchestrator.Orchestrator, *history.Store, error) {
	store, err := history.New(cfg.General.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history database: %w", err)
	}

	orch := orchestrator.New(cfg, log, orchestrator.Deps{
		History:      store,
		Sink:         recordingSink{store: store, monitor: monitor},
		DecisionSink: store,
		Events:       events,
	})
	return orch, store, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync()

	opts := orchestrator.Options{
		SkipExecution:          runPlanOnly,
		EnableOptimization:     runOptimize,
		ProceedOnClarification: runProceed,
		Constraints:            runConstraints,
	}

	if runMonitor {
		return runWithMonitor(cfg, log, args[0], runContext, opts)
	}

	orch, store, err := buildPipeline(cfg, log, nil, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := orch.ProcessGoal(context.Background(), args[0], runContext, opts)
	if run != nil {
		printRun(run)
	}
	if err != nil {
		return friendlyError(run, err)
	}
	return nil
}

// runWithMonitor executes the goal while the TUI renders its events
func runWithMonitor(cfg *config.Config, log *zap.Logger, goal, goalContext string, opts orchestrator.Options) error {
	events := make(chan orchestrator.Event, 64)
	orch, store, err := buildPipeline(cfg, log, nil, func(e orchestrator.Event) {
		events <- e
	})
	if err != nil {
		return err
	}
	defer store.Close()

	results := runGoalAsync(orch, goal, goalContext, opts, events)

	model := tui.NewModel(tui.ModelConfig{Goal: goal, Events: events})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	res := <-results
	if res.run != nil {
		printRun(res.run)
	}
	if res.err != nil {
		return friendlyError(res.run, res.err)
	}
	return nil
}

type goalResult struct {
	run *domain.ExecutionRun
	err error
}

// runGoalAsync runs the pipeline in the background. The event channel
// is closed before the result is delivered, so a reader that drains
// events and then receives the result never races the run.
func runGoalAsync(orch *orchestrator.Orchestrator, goal, goalContext string, opts orchestrator.Options, events chan orchestrator.Event) <-chan goalResult {
	results := make(chan goalResult, 1)
	go func() {
		run, err := orch.ProcessGoal(context.Background(), goal, goalContext, opts)
		close(events)
		results <- goalResult{run: run, err: err}
	}()
	return results
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync()

	orch, store, err := buildPipeline(cfg, log, nil, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := orch.ProcessGoal(context.Background(), args[0], runContext, orchestrator.Options{
		SkipExecution: true,
		Constraints:   runConstraints,
	})
	if run != nil {
		printRun(run)
	}
	if err != nil {
		return friendlyError(run, err)
	}
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync()

	orch, store, err := buildPipeline(cfg, log, nil, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	c := orch.Router().Classify(args[0])
	fmt.Printf("Intent:     %s\n", c.Intent)
	fmt.Printf("Confidence: %.2f\n", c.Confidence)
	if len(c.Keywords) > 0 {
		fmt.Printf("Keywords:   %v\n", c.Keywords)
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync()

	orch, store, err := buildPipeline(cfg, log, nil, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	verdict := orch.Gate().Validate(domain.NewGoal(args[0], runContext, nil))
	fmt.Printf("Level:    %s\n", verdict.Level)
	fmt.Printf("Score:    %d/100\n", verdict.Score)
	fmt.Printf("Decision: %s\n", verdict.Decision)

	if len(verdict.Violations) > 0 {
		fmt.Println("\nViolations:")
		for _, v := range verdict.Violations {
			fmt.Printf("  [%s/%s] %s\n", v.Category, v.Severity, v.Description)
			if v.Recommendation != "" {
				fmt.Printf("      %s\n", v.Recommendation)
			}
		}
	}
	printClarifications(verdict)

	if !verdict.Approved {
		return fmt.Errorf("goal blocked")
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := history.New(cfg.General.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(histLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGOAL\tSTATUS\tSCORE\tTASKS\tFINISHED")
	for _, r := range runs {
		finished := "-"
		if r.FinishedAt != nil {
			finished = humanize.Time(*r.FinishedAt)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%d/%d/%d\t%s\n",
			r.ID, truncate(r.Goal, 48), r.Status, r.Score,
			r.Completed, r.Failed, r.Skipped, finished)
	}
	w.Flush()

	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync()

	monitor := observer.NewMonitor(5 * time.Minute)

	var server *api.Server
	orch, store, err := buildPipeline(cfg, log, monitor, func(e orchestrator.Event) {
		if server != nil {
			server.Broadcast(api.SSEEvent{Type: e.Type, Data: e})
		}
	})
	if err != nil {
		return err
	}
	defer store.Close()

	port := servePort
	if port == 0 {
		port = cfg.Web.Port
	}
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, port)
	server = api.NewServer(orch, store, monitor, addr, log)

	fmt.Printf("Serving API at http://%s\n", addr)
	return server.Start()
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync()

	orch, store, err := buildPipeline(cfg, log, nil, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	dir := watchDir
	if dir == "" {
		dir = cfg.Watcher.GoalDir
	}

	watcher, err := observer.NewGoalWatcher(dir, func(path, goal, goalCtx string) {
		run, err := orch.ProcessGoal(context.Background(), goal, goalCtx, orchestrator.Options{})
		if err != nil {
			log.Error("dropped goal failed", zap.String("path", path), zap.Error(err))
			return
		}
		fmt.Printf("%s: %s (score %.2f)\n", path, run.Status, run.Score)
	}, log)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher.Start(ctx)

	fmt.Printf("Watching %s for goal files (Ctrl-C to stop)\n", dir)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync()

	schedule, err := batch.LoadScheduleConfig(args[0])
	if err != nil {
		return err
	}
	if len(schedule.Batches) == 0 {
		return fmt.Errorf("no batches defined in %s", args[0])
	}

	orch, store, err := buildPipeline(cfg, log, nil, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	runBatchGoals := func(b batch.BatchConfig) error {
		goals := b.Goals
		if len(goals) > b.MaxGoals {
			goals = goals[:b.MaxGoals]
		}
		for _, g := range goals {
			run, err := orch.ProcessGoal(context.Background(), g.Goal, g.Context, orchestrator.Options{
				SkipExecution: g.PlanOnly,
				Constraints:   g.Constraints,
			})
			if err != nil {
				log.Error("batch goal failed",
					zap.String("batch", b.Name),
					zap.String("goal", g.Goal),
					zap.Error(err))
				continue
			}
			fmt.Printf("[%s] %s: %s (score %.2f)\n", b.Name, truncate(g.Goal, 48), run.Status, run.Score)
		}
		return nil
	}

	if batchNow {
		for _, b := range schedule.Batches {
			if err := runBatchGoals(b); err != nil {
				return err
			}
		}
		return nil
	}

	sched, err := batch.NewScheduler(schedule.Batches, log)
	if err != nil {
		return err
	}
	for _, name := range sched.ListBatches() {
		fmt.Printf("%s: next run %s\n", name, humanize.Time(sched.NextRun(name)))
	}
	sched.Start(runBatchGoals)
	return nil
}

func printRun(run *domain.ExecutionRun) {
	fmt.Printf("Run:    %s\n", run.ID)
	fmt.Printf("Status: %s\n", run.Status)
	if run.Intent != nil {
		fmt.Printf("Intent: %s (%.2f)\n", run.Intent.Intent, run.Intent.Confidence)
	}
	if run.Safety != nil {
		fmt.Printf("Safety: %s, score %d/100\n", run.Safety.Level, run.Safety.Score)
		printClarifications(run.Safety)
	}
	if run.Confidence != nil {
		fmt.Printf("Confidence: %.2f (%s), approach: %s\n",
			run.Confidence.Overall, run.Confidence.Level, run.Confidence.Approach)
	}

	if run.Plan != nil {
		fmt.Printf("\nPlan (%s estimated):\n", run.Plan.EstimatedTotal)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  ID\tTITLE\tPRIORITY\tDEPENDS ON\tSTATUS")
		for _, t := range run.Plan.Tasks {
			deps := "-"
			if len(t.Dependencies) > 0 {
				deps = fmt.Sprintf("%v", t.Dependencies)
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Priority, deps, t.Status)
		}
		w.Flush()
	}

	if run.Summary != nil {
		fmt.Printf("\nExecuted: %d completed, %d failed, %d skipped in %s\n",
			run.Summary.Completed, run.Summary.Failed, run.Summary.Skipped,
			run.Summary.TotalDuration.Round(time.Millisecond))
	}
	if run.Status == domain.RunCompleted && run.Score > 0 {
		fmt.Printf("Score: %.2f\n", run.Score)
	}
}

func printClarifications(v *domain.SafetyVerdict) {
	if len(v.Clarifications) == 0 {
		return
	}
	fmt.Println("\nClarifications:")
	for _, c := range v.Clarifications {
		marker := "advisory"
		if c.Required {
			marker = "required"
		}
		fmt.Printf("  [%s] %s\n", marker, c.Question)
		for _, fix := range c.SuggestedFix {
			fmt.Printf("      e.g. %s\n", fix)
		}
	}
}

// friendlyError strips the run detail already printed and keeps the
// pipeline reason
func friendlyError(run *domain.ExecutionRun, err error) error {
	var perr *orchestrator.PipelineError
	if errors.As(err, &perr) {
		return fmt.Errorf("%s", perr.Message)
	}
	return err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
