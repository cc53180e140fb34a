package domain

import (
	"time"

	"github.com/google/uuid"
)

// Goal is a user-supplied objective to be decomposed and executed.
// It is immutable once created; the orchestrator owns it for one run.
type Goal struct {
	ID          string
	Description string
	Context     string
	Constraints []string
	CreatedAt   time.Time
}

// NewGoal creates a Goal with a fresh ID
func NewGoal(description, context string, constraints []string) *Goal {
	return &Goal{
		ID:          uuid.NewString(),
		Description: description,
		Context:     context,
		Constraints: constraints,
		CreatedAt:   time.Now(),
	}
}

// Text returns description and context joined for pattern matching
func (g *Goal) Text() string {
	if g.Context == "" {
		return g.Description
	}
	return g.Description + " " + g.Context
}

// IntentClassification is the result of routing a raw input
type IntentClassification struct {
	Input      string
	Intent     IntentType
	Confidence float64
	Keywords   []string
	At         time.Time
}
