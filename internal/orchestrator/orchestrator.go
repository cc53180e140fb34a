// Package orchestrator sequences the goal pipeline: intent routing,
// safety gating, confidence assessment, planning, dependency-gated
// execution, and reflection scoring.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/config"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/confidence"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/executor"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/intent"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/planner"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/safety"
)

// historyLimit caps how many prior runs feed the confidence estimator
const historyLimit = 20

// HistoryReader supplies prior run records to the confidence phase
type HistoryReader interface {
	RecentRuns(limit int) ([]domain.RunRecord, error)
}

// RunSink receives finished runs. Writes are fire-and-forget; a sink
// error never fails the run that produced it.
type RunSink interface {
	SaveRun(run *domain.ExecutionRun) error
}

// Deps are the external collaborators of the pipeline. All fields are
// optional.
type Deps struct {
	History      HistoryReader
	Sink         RunSink
	DecisionSink safety.DecisionSink
	Injector     executor.FailureInjector
	Outcome      executor.OutcomeFunc
	Decomposer   planner.Decomposer
	Events       EventFunc
}

// Orchestrator advances one goal at a time through ordered phases.
// Components are constructed per instance; nothing is shared globally.
type Orchestrator struct {
	cfg  *config.Config
	log  *zap.Logger
	deps Deps

	router    *intent.Router
	gate      *safety.Gate
	estimator *confidence.Estimator
	planner   *planner.Planner
	exec      *executor.Executor
}

// New creates an Orchestrator wired from config
func New(cfg *config.Config, log *zap.Logger, deps Deps) *Orchestrator {
	log = log.Named("orchestrator")

	gate := safety.NewGate(safety.Options{
		StrictMode:        cfg.Safety.StrictMode,
		AllowedCategories: cfg.Safety.AllowedCategories,
	}, log, deps.DecisionSink)

	estimator := confidence.NewEstimator(confidence.Options{
		ClarityWeight:    cfg.Confidence.ClarityWeight,
		HistoricalWeight: cfg.Confidence.HistoricalWeight,
		ComplexityWeight: cfg.Confidence.ComplexityWeight,
		MinConfidence:    cfg.Confidence.MinConfidence,
		CautionThreshold: cfg.Confidence.CautionThreshold,
	}, log)

	return &Orchestrator{
		cfg:       cfg,
		log:       log,
		deps:      deps,
		router:    intent.NewRouter(log),
		gate:      gate,
		estimator: estimator,
		planner:   planner.New(deps.Decomposer, log),
		exec:      executor.New(log),
	}
}

// Gate exposes the safety gate for the manual override path
func (o *Orchestrator) Gate() *safety.Gate {
	return o.gate
}

// Router exposes the intent router for direct classification
func (o *Orchestrator) Router() *intent.Router {
	return o.router
}

// ProcessGoal runs the full pipeline for one goal and returns the
// finalized run. The returned run is populated as far as the pipeline
// got, even when err is non-nil.
func (o *Orchestrator) ProcessGoal(ctx context.Context, goalText, contextText string, opts Options) (*domain.ExecutionRun, error) {
	trimmed := strings.TrimSpace(goalText)
	if len(trimmed) < o.cfg.General.MinGoalLength {
		err := pipelineErr(KindValidation,
			fmt.Sprintf("goal must be at least %d characters", o.cfg.General.MinGoalLength))
		o.log.Error("goal rejected", zap.Error(err))
		return nil, err
	}

	run := &domain.ExecutionRun{
		ID:        uuid.NewString(),
		Goal:      domain.NewGoal(trimmed, strings.TrimSpace(contextText), opts.Constraints),
		Status:    domain.RunRunning,
		StartedAt: time.Now(),
	}
	o.log.Info("run started", zap.String("run_id", run.ID), zap.String("goal", trimmed))

	// Phase: intent
	phaseStart := o.phaseStart(run, domain.PhaseIntent)
	classification := o.router.Classify(run.Goal.Text())
	run.Intent = &classification
	o.phaseEnd(run, domain.PhaseIntent, phaseStart, nil)

	if classification.Intent == domain.IntentInformationQuery {
		// Queries are answered elsewhere; nothing to plan or execute
		run.Finalize(domain.RunCompleted)
		o.emitFinished(run)
		o.persist(run)
		return run, nil
	}

	// Phase: safety
	phaseStart = o.phaseStart(run, domain.PhaseSafety)
	verdict := o.gate.Validate(run.Goal)
	run.Safety = verdict
	if !verdict.Approved {
		err := pipelineErr(KindSafetyBlocked,
			fmt.Sprintf("goal blocked at safety level %q with %d violation(s)", verdict.Level, len(verdict.Violations)))
		o.phaseEnd(run, domain.PhaseSafety, phaseStart, err)
		run.Finalize(domain.RunBlocked)
		o.emitFinished(run)
		o.persist(run)
		return run, err
	}
	o.phaseEnd(run, domain.PhaseSafety, phaseStart, nil)

	if requiresClarification(verdict) && !opts.ProceedOnClarification {
		err := pipelineErr(KindClarificationRequired,
			"goal needs clarification before execution; answer the required requests or proceed explicitly")
		o.log.Error("run halted pending clarification", zap.String("run_id", run.ID))
		run.Finalize(domain.RunBlocked)
		o.emitFinished(run)
		o.persist(run)
		return run, err
	}

	// Phase: confidence, fed by a draft decomposition and prior runs
	phaseStart = o.phaseStart(run, domain.PhaseConfidence)
	assessment := o.estimator.Assess(run.Goal, o.draftPlan(run.Goal), o.recentRuns())
	run.Confidence = assessment
	o.phaseEnd(run, domain.PhaseConfidence, phaseStart, nil)

	if !assessment.Proceed && !opts.ProceedOnClarification {
		err := pipelineErr(KindClarificationRequired,
			fmt.Sprintf("confidence %.2f is below the %.2f execution threshold", assessment.Overall, o.cfg.Confidence.MinConfidence))
		o.log.Error("run halted on low confidence",
			zap.String("run_id", run.ID),
			zap.Float64("confidence", assessment.Overall))
		run.Finalize(domain.RunBlocked)
		o.emitFinished(run)
		o.persist(run)
		return run, err
	}

	// Phase: planning
	phaseStart = o.phaseStart(run, domain.PhasePlanning)
	plan, err := o.planner.Plan(run.Goal)
	if err != nil {
		perr := wrapErr(KindPlanning, "task graph rejected", err)
		o.phaseEnd(run, domain.PhasePlanning, phaseStart, perr)
		run.Finalize(domain.RunFailed)
		o.emitFinished(run)
		o.persist(run)
		return run, perr
	}
	run.Plan = plan
	o.phaseEnd(run, domain.PhasePlanning, phaseStart, nil)
	for _, task := range plan.Tasks {
		o.emit(Event{
			Type:    EventTaskUpdate,
			RunID:   run.ID,
			TaskID:  task.ID,
			Status:  string(task.Status),
			Message: task.Title,
		})
	}

	if opts.SkipExecution {
		run.Finalize(domain.RunCompleted)
		o.emitFinished(run)
		o.persist(run)
		return run, nil
	}

	// Phase: execution
	phaseStart = o.phaseStart(run, domain.PhaseExecution)
	summary, execErr := o.executePlan(ctx, run, opts)
	run.Summary = summary
	if execErr != nil {
		perr := wrapErr(KindTimeout, "execution aborted", execErr)
		o.phaseEnd(run, domain.PhaseExecution, phaseStart, perr)
		run.Finalize(domain.RunTimedOut)
		o.emitFinished(run)
		o.persist(run)
		return run, perr
	}
	o.phaseEnd(run, domain.PhaseExecution, phaseStart, nil)

	// Phase: reflection
	if !opts.SkipReflection {
		phaseStart = o.phaseStart(run, domain.PhaseReflection)
		run.Score = reflectionScore(run)
		o.phaseEnd(run, domain.PhaseReflection, phaseStart, nil)
	}

	run.Finalize(domain.RunCompleted)
	o.emitFinished(run)
	o.persist(run)
	return run, nil
}

func (o *Orchestrator) executePlan(ctx context.Context, run *domain.ExecutionRun, opts Options) (*domain.ExecutionSummary, error) {
	timeout := time.Duration(o.cfg.Executor.TimeoutSeconds) * time.Second
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cfg := executor.Config{
		Parallel:    o.cfg.Executor.Parallel || opts.EnableOptimization,
		MaxParallel: o.cfg.Executor.MaxParallelTasks,
		Outcome:     o.deps.Outcome,
		Injector:    o.deps.Injector,
		OnProgress: func(task *domain.Task, fraction float64) {
			o.emit(Event{
				Type:     EventTaskProgress,
				RunID:    run.ID,
				TaskID:   task.ID,
				Fraction: fraction,
			})
		},
	}
	summary, err := o.exec.ExecuteAll(ctx, run.Plan.Tasks, cfg)
	for _, task := range run.Plan.Tasks {
		event := Event{
			Type:   EventTaskUpdate,
			RunID:  run.ID,
			TaskID: task.ID,
			Status: string(task.Status),
		}
		if task.Result != nil && task.Result.Error != "" {
			event.Message = task.Result.Error
		}
		o.emit(event)
	}
	return summary, err
}

// draftPlan produces an unvalidated decomposition purely to size the
// complexity component of the confidence assessment
func (o *Orchestrator) draftPlan(goal *domain.Goal) *domain.Plan {
	decomposer := o.deps.Decomposer
	if decomposer == nil {
		decomposer = planner.TemplateDecomposer{}
	}
	tasks, _, err := decomposer.Decompose(goal)
	if err != nil || len(tasks) == 0 {
		return nil
	}
	var total time.Duration
	for _, t := range tasks {
		total += t.EstimatedDuration
	}
	return &domain.Plan{GoalID: goal.ID, Tasks: tasks, EstimatedTotal: total}
}

func (o *Orchestrator) recentRuns() []domain.RunRecord {
	if o.deps.History == nil {
		return nil
	}
	records, err := o.deps.History.RecentRuns(historyLimit)
	if err != nil {
		o.log.Error("history read failed", zap.Error(err))
		return nil
	}
	return records
}

func (o *Orchestrator) persist(run *domain.ExecutionRun) {
	if o.deps.Sink == nil {
		return
	}
	if err := o.deps.Sink.SaveRun(run); err != nil {
		o.log.Error("run persistence failed", zap.String("run_id", run.ID), zap.Error(err))
	}
}

func (o *Orchestrator) phaseStart(run *domain.ExecutionRun, phase domain.Phase) time.Time {
	o.emit(Event{Type: EventPhaseStarted, RunID: run.ID, Phase: phase})
	o.log.Debug("phase started", zap.String("run_id", run.ID), zap.String("phase", string(phase)))
	return time.Now()
}

func (o *Orchestrator) phaseEnd(run *domain.ExecutionRun, phase domain.Phase, startedAt time.Time, err error) {
	run.RecordPhase(phase, startedAt, err)
	o.emit(Event{Type: EventPhaseFinished, RunID: run.ID, Phase: phase})
	if err != nil {
		o.log.Error("phase failed",
			zap.String("run_id", run.ID),
			zap.String("phase", string(phase)),
			zap.Error(err))
	}
}

func (o *Orchestrator) emitFinished(run *domain.ExecutionRun) {
	o.emit(Event{Type: EventRunFinished, RunID: run.ID, Status: string(run.Status)})
	o.log.Info("run finished",
		zap.String("run_id", run.ID),
		zap.String("status", string(run.Status)),
		zap.Float64("score", run.Score))
}

func (o *Orchestrator) emit(event Event) {
	if o.deps.Events != nil {
		o.deps.Events(event)
	}
}

func requiresClarification(v *domain.SafetyVerdict) bool {
	for _, c := range v.Clarifications {
		if c.Required {
			return true
		}
	}
	return false
}
