package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/orchestrator"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case EventMsg:
		m.apply(orchestrator.Event(msg))
		if m.done {
			return m, tea.Quit
		}
		return m, waitForEvent(m.events)
	}

	return m, nil
}

func (m *Model) apply(event orchestrator.Event) {
	if m.runID == "" {
		m.runID = event.RunID
	}

	switch event.Type {
	case orchestrator.EventPhaseStarted:
		m.phases[event.Phase] = PhaseActive

	case orchestrator.EventPhaseFinished:
		m.phases[event.Phase] = PhaseDone

	case orchestrator.EventTaskUpdate:
		m.applyTask(event)

	case orchestrator.EventTaskProgress:
		if i, ok := m.taskIndex[event.TaskID]; ok {
			m.tasks[i].Progress = event.Fraction
			m.tasks[i].Status = domain.StatusInProgress
		}

	case orchestrator.EventRunFinished:
		m.status = event.Status
		m.done = true
		for phase, state := range m.phases {
			if state == PhaseActive {
				m.phases[phase] = PhaseFailed
			}
		}
	}
}

func (m *Model) applyTask(event orchestrator.Event) {
	i, ok := m.taskIndex[event.TaskID]
	if !ok {
		// First sight of a planned task; the title rides in Message
		m.taskIndex[event.TaskID] = len(m.tasks)
		m.tasks = append(m.tasks, &TaskView{
			ID:     event.TaskID,
			Title:  event.Message,
			Status: domain.TaskStatus(event.Status),
		})
		return
	}

	m.tasks[i].Status = domain.TaskStatus(event.Status)
	if m.tasks[i].Status.Terminal() {
		m.tasks[i].Progress = 1
		if m.tasks[i].Status == domain.StatusSkipped {
			m.tasks[i].Progress = 0
		}
	}
}
