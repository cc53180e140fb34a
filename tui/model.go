// Package tui renders a live run monitor: the pipeline phases across
// the top, the task table underneath, fed by orchestrator events.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/orchestrator"
)

// PhaseState is the display state of one pipeline phase
type PhaseState int

const (
	PhasePending PhaseState = iota
	PhaseActive
	PhaseDone
	PhaseFailed
)

// phaseOrder fixes the ribbon layout
var phaseOrder = []domain.Phase{
	domain.PhaseIntent,
	domain.PhaseSafety,
	domain.PhaseConfidence,
	domain.PhasePlanning,
	domain.PhaseExecution,
	domain.PhaseReflection,
}

// TaskView represents a task row in the monitor
type TaskView struct {
	ID       string
	Title    string
	Status   domain.TaskStatus
	Progress float64
}

// Model is the TUI application model
type Model struct {
	goal   string
	runID  string
	status string

	phases    map[domain.Phase]PhaseState
	tasks     []*TaskView
	taskIndex map[string]int

	events <-chan orchestrator.Event

	width  int
	height int
	done   bool
}

// ModelConfig holds initial data for the TUI model
type ModelConfig struct {
	Goal   string
	Tasks  []*domain.Task
	Events <-chan orchestrator.Event
}

// NewModel creates a new TUI model
func NewModel(cfg ModelConfig) Model {
	m := Model{
		goal:      cfg.Goal,
		status:    string(domain.RunRunning),
		phases:    make(map[domain.Phase]PhaseState, len(phaseOrder)),
		taskIndex: make(map[string]int),
		events:    cfg.Events,
	}
	for _, phase := range phaseOrder {
		m.phases[phase] = PhasePending
	}
	for _, task := range cfg.Tasks {
		m.taskIndex[task.ID] = len(m.tasks)
		m.tasks = append(m.tasks, &TaskView{
			ID:     task.ID,
			Title:  task.Title,
			Status: task.Status,
		})
	}
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// EventMsg wraps one pipeline event
type EventMsg orchestrator.Event

func waitForEvent(events <-chan orchestrator.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return EventMsg(event)
	}
}
