package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
)

var (
	headerStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("236")).
		Foreground(lipgloss.Color("255")).
		Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	phaseDoneStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	phaseActiveStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("214"))

	phaseFailedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	phasePendingStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	completedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	failedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	skippedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	inProgressStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	statusBarStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("236")).
		Foreground(lipgloss.Color("255"))
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	header := fmt.Sprintf(" Goalflow │ %s ", m.goal)
	b.WriteString(headerStyle.Width(m.width).Render(header))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Width(m.width - 2).Render(m.renderPhases()))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Width(m.width - 2).Render(m.renderTasks()))
	b.WriteString("\n")

	footer := fmt.Sprintf(" %s │ q: quit ", m.status)
	b.WriteString(statusBarStyle.Width(m.width).Render(footer))

	return b.String()
}

func (m Model) renderPhases() string {
	parts := make([]string, 0, len(phaseOrder))
	for _, phase := range phaseOrder {
		label := string(phase)
		switch m.phases[phase] {
		case PhaseDone:
			parts = append(parts, phaseDoneStyle.Render("✓ "+label))
		case PhaseActive:
			parts = append(parts, phaseActiveStyle.Render("▶ "+label))
		case PhaseFailed:
			parts = append(parts, phaseFailedStyle.Render("✗ "+label))
		default:
			parts = append(parts, phasePendingStyle.Render("· "+label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderTasks() string {
	if len(m.tasks) == 0 {
		return "No tasks planned yet"
	}

	var b strings.Builder
	for i, task := range m.tasks {
		if i > 0 {
			b.WriteString("\n")
		}
		line := fmt.Sprintf("%-10s %s %s", task.ID, renderBar(task.Progress), task.Title)
		switch task.Status {
		case domain.StatusCompleted:
			b.WriteString(completedStyle.Render(line))
		case domain.StatusFailed:
			b.WriteString(failedStyle.Render(line))
		case domain.StatusSkipped:
			b.WriteString(skippedStyle.Render(line))
		case domain.StatusInProgress:
			b.WriteString(inProgressStyle.Render(line))
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}

// renderBar draws a ten-cell progress bar
func renderBar(fraction float64) string {
	filled := int(fraction * 10)
	if filled > 10 {
		filled = 10
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + "]"
}
