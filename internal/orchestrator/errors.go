package orchestrator

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable classification of a pipeline error
type ErrorKind string

const (
	KindValidation            ErrorKind = "validation_error"
	KindSafetyBlocked         ErrorKind = "safety_blocked"
	KindClarificationRequired ErrorKind = "clarification_required"
	KindPlanning              ErrorKind = "planning_error"
	KindTimeout               ErrorKind = "timeout_error"
)

// PipelineError carries a kind for machines and a message for humans
type PipelineError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

func pipelineErr(kind ErrorKind, message string) *PipelineError {
	return &PipelineError{Kind: kind, Message: message}
}

func wrapErr(kind ErrorKind, message string, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the error kind, or "" for non-pipeline errors
func KindOf(err error) ErrorKind {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return ""
}
