package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
)

// templateStep is one step of a decomposition template
type templateStep struct {
	title       string
	description string
	taskType    string
	priority    domain.Priority
	minutes     int
}

// template is a keyword-selected decomposition strategy. Steps are
// instantiated as a linear chain; richer decomposers can produce any
// DAG the validator accepts.
type template struct {
	name     string
	keywords []string
	steps    []templateStep
}

var templates = []template{
	{
		name:     "data",
		keywords: []string{"data", "etl", "dataset", "database", "warehouse", "ingest"},
		steps: []templateStep{
			{"Profile data sources", "Inventory the source systems and sample their data", "analysis", domain.PriorityHigh, 20},
			{"Design target schema", "Model the destination schema and mapping rules", "design", domain.PriorityHigh, 30},
			{"Build extraction", "Implement extraction from each source", "implementation", domain.PriorityMedium, 40},
			{"Transform and load", "Implement transformation rules and load the target", "implementation", domain.PriorityMedium, 40},
			{"Validate output", "Reconcile row counts and spot-check transformed records", "verification", domain.PriorityMedium, 20},
		},
	},
	{
		name:     "automation",
		keywords: []string{"automate", "automation", "pipeline", "ci/cd", "workflow", "deploy", "schedule"},
		steps: []templateStep{
			{"Map the manual process", "Document the steps being automated and their inputs", "analysis", domain.PriorityHigh, 15},
			{"Define triggers", "Choose the events or schedule that start the automation", "design", domain.PriorityHigh, 15},
			{"Implement automation steps", "Build each step of the automated flow", "implementation", domain.PriorityMedium, 45},
			{"Add failure handling", "Define retries, alerts, and manual fallback", "implementation", domain.PriorityMedium, 25},
			{"Test end to end", "Run the automation against a realistic scenario", "verification", domain.PriorityMedium, 30},
		},
	},
	{
		name:     "analysis",
		keywords: []string{"analyze", "analysis", "investigate", "report", "metrics", "research"},
		steps: []templateStep{
			{"Gather inputs", "Collect the data and documents in scope", "analysis", domain.PriorityHigh, 20},
			{"Explore and measure", "Compute the relevant metrics and look for patterns", "analysis", domain.PriorityMedium, 40},
			{"Synthesize findings", "Condense observations into conclusions", "analysis", domain.PriorityMedium, 25},
			{"Write summary", "Produce the report with recommendations", "documentation", domain.PriorityLow, 20},
		},
	},
	{
		name:     "integration",
		keywords: []string{"integrate", "integration", "connect", "api", "webhook", "sync"},
		steps: []templateStep{
			{"Review interface contracts", "Read the API specs and auth requirements on both sides", "analysis", domain.PriorityHigh, 20},
			{"Design data mapping", "Map fields and define conflict resolution", "design", domain.PriorityHigh, 25},
			{"Implement adapter", "Build the client and translation layer", "implementation", domain.PriorityMedium, 45},
			{"Handle errors and retries", "Add backoff, idempotency, and dead-letter handling", "implementation", domain.PriorityMedium, 25},
			{"Verify round trip", "Exercise the integration with real payloads in both directions", "verification", domain.PriorityMedium, 25},
		},
	},
}

var defaultTemplate = template{
	name: "default",
	steps: []templateStep{
		{"Clarify requirements", "Pin down what done means for this goal", "analysis", domain.PriorityHigh, 15},
		{"Design approach", "Sketch the solution and its risks", "design", domain.PriorityHigh, 20},
		{"Implement", "Carry out the planned work", "implementation", domain.PriorityMedium, 45},
		{"Verify", "Check the result against the requirements", "verification", domain.PriorityMedium, 20},
	},
}

// TemplateDecomposer picks a domain template by keyword match and
// instantiates its steps as a linear task chain
type TemplateDecomposer struct{}

// Decompose implements Decomposer
func (TemplateDecomposer) Decompose(goal *domain.Goal) ([]*domain.Task, string, error) {
	lower := strings.ToLower(goal.Text())

	selected := defaultTemplate
	for _, tpl := range templates {
		if matchesAny(lower, tpl.keywords) {
			selected = tpl
			break
		}
	}

	tasks := make([]*domain.Task, len(selected.steps))
	for i, step := range selected.steps {
		t := &domain.Task{
			ID:                fmt.Sprintf("task-%d", i+1),
			Title:             step.title,
			Description:       step.description,
			Type:              step.taskType,
			Priority:          step.priority,
			EstimatedDuration: time.Duration(step.minutes) * time.Minute,
			Status:            domain.StatusPending,
		}
		if i > 0 {
			t.Dependencies = []string{tasks[i-1].ID}
		}
		tasks[i] = t
	}

	reasoning := fmt.Sprintf("matched %q decomposition template (%d steps)", selected.name, len(selected.steps))
	return tasks, reasoning, nil
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
