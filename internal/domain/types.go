package domain

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
	StatusSkipped    TaskStatus = "skipped"
)

// Terminal returns true if the status cannot change again
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusSkipped
}

// Priority represents task priority
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Phase identifies a stage of the orchestration pipeline
type Phase string

const (
	PhaseIntent     Phase = "intent"
	PhaseSafety     Phase = "safety"
	PhaseConfidence Phase = "confidence"
	PhasePlanning   Phase = "planning"
	PhaseExecution  Phase = "execution"
	PhaseReflection Phase = "reflection"
)

// RunStatus represents the overall state of an execution run
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunBlocked   RunStatus = "blocked"
	RunTimedOut  RunStatus = "timed_out"
)

// IntentType classifies what the user wants from a raw input
type IntentType string

const (
	IntentExecutionGoal    IntentType = "execution_goal"
	IntentInformationQuery IntentType = "information_query"
	IntentAmbiguous        IntentType = "ambiguous"
)

// SafetyLevel is the aggregate verdict of a safety validation
type SafetyLevel string

const (
	SafetySafe    SafetyLevel = "safe"
	SafetyCaution SafetyLevel = "caution"
	SafetyWarning SafetyLevel = "warning"
	SafetyBlocked SafetyLevel = "blocked"
)

// Severity grades an individual safety violation
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ViolationCategory groups safety rules by the kind of risk they detect
type ViolationCategory string

const (
	CategoryAmbiguity   ViolationCategory = "ambiguity"
	CategorySecurity    ViolationCategory = "security"
	CategoryDestructive ViolationCategory = "destructive"
	CategoryResource    ViolationCategory = "resource"
	CategoryExternal    ViolationCategory = "external"
	CategoryScope       ViolationCategory = "scope"
)

// ConfidenceLevel buckets an overall confidence score
type ConfidenceLevel string

const (
	ConfidenceVeryHigh ConfidenceLevel = "very-high"
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceMedium   ConfidenceLevel = "medium"
	ConfidenceLow      ConfidenceLevel = "low"
	ConfidenceVeryLow  ConfidenceLevel = "very-low"
)

// SafetyDecision tags an entry in the safety decision log
type SafetyDecision string

const (
	DecisionApproved              SafetyDecision = "approved"
	DecisionClarificationRequired SafetyDecision = "clarification_required"
	DecisionModified              SafetyDecision = "modified"
	DecisionBlocked               SafetyDecision = "blocked"
)
