package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.headerView(), m.tabBarView()}
	if len(m.tables) > 0 {
		sections = append(sections, m.theme.RoundedBox.Render(m.tables[m.active].View()))
	}
	sections = append(sections, m.help.View(m.keymap))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	if m.report == nil || m.report.Metrics == nil {
		return m.theme.Title.Render("Inspection")
	}
	metrics := m.report.Metrics

	title := m.theme.Title.Render(fmt.Sprintf("%s · %s", metrics.BuildingName, metrics.InspectionDate))
	stats := strings.Join([]string{
		m.theme.Normal.Render(fmt.Sprintf("%d units", metrics.TotalUnits)),
		m.theme.Normal.Render(fmt.Sprintf("%d defects", metrics.TotalDefects)),
		m.theme.StatusOK.Render(fmt.Sprintf("%.1f%% ready", metrics.ReadyPct)),
		m.theme.StatusError.Render(fmt.Sprintf("%d urgent", metrics.UrgentDefects)),
		m.theme.StatusWarn.Render(fmt.Sprintf("%d high priority", metrics.HighPriorityDefects)),
	}, m.theme.Subtitle.Render(" | "))

	return lipgloss.JoinVertical(lipgloss.Left, title, stats)
}

func (m Model) tabBarView() string {
	rendered := make([]string, len(m.tabs))
	for i, tab := range m.tabs {
		label := fmt.Sprintf("%s (%d)", tab.Name, len(tab.Rows))
		if i == m.active {
			rendered[i] = m.theme.ActiveTab.Render(label)
		} else {
			rendered[i] = m.theme.InactiveTab.Render(label)
		}
	}
	return lipgloss.NewStyle().Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
}
