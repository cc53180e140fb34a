package domain

import "time"

// SafetyViolation is a detected risk pattern with a remediation hint
type SafetyViolation struct {
	Category       ViolationCategory
	Severity       Severity
	Description    string
	Recommendation string
}

// ClarificationRequest asks the caller for more detail before a goal
// is executed. Required requests must be answered; advisory ones may
// be ignored.
type ClarificationRequest struct {
	Category     ViolationCategory
	Question     string
	Rationale    string
	SuggestedFix []string
	Required     bool
}

// SafetyVerdict is the aggregate result of validating one goal
type SafetyVerdict struct {
	ID             string
	Approved       bool
	Level          SafetyLevel
	Score          int
	Violations     []SafetyViolation
	Clarifications []ClarificationRequest
	Decision       SafetyDecision
	EvaluatedAt    time.Time
}

// HasCritical returns true if any violation is critical
func (v *SafetyVerdict) HasCritical() bool {
	for _, viol := range v.Violations {
		if viol.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// DecisionRecord is an entry in the append-only safety decision log
type DecisionRecord struct {
	VerdictID string
	Decision  SafetyDecision
	Level     SafetyLevel
	Score     int
	Reason    string
	At        time.Time
}
