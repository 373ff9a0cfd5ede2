// Package tui renders an interactive dashboard for one processed inspection.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/punchlist/internal/report"
	"github.com/Veraticus/punchlist/internal/service"
	"github.com/Veraticus/punchlist/internal/tui/themes"
)

const (
	maxColumnWidth = 32
	// chromeHeight is the space taken by the header, tab bar and help line.
	chromeHeight = 8
)

// Model holds the dashboard state.
type Model struct {
	theme    themes.Theme
	report   *service.InspectionReport
	help     help.Model
	keymap   KeyMap
	tabs     []report.Tab
	tables   []table.Model
	active   int
	width    int
	height   int
	quitting bool
}

// NewModel builds a dashboard over r.
func NewModel(r *service.InspectionReport, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	tabs := report.BuildTabs(r)
	m := Model{
		theme:  cfg.Theme,
		report: r,
		help:   help.New(),
		keymap: DefaultKeyMap(),
		tabs:   tabs,
		tables: make([]table.Model, len(tabs)),
		width:  cfg.Width,
		height: cfg.Height,
	}
	for i, tab := range tabs {
		m.tables[i] = m.newTable(tab)
	}
	m.focus(0)
	return m
}

func (m Model) newTable(tab report.Tab) table.Model {
	rows := make([]table.Row, len(tab.Rows))
	widths := make([]int, len(tab.Header))
	for i, h := range tab.Header {
		widths[i] = len(h)
	}
	for r, values := range tab.Rows {
		row := make(table.Row, len(tab.Header))
		for c := range row {
			if c < len(values) {
				row[c] = fmt.Sprint(values[c])
			}
			widths[c] = max(widths[c], len(row[c]))
		}
		rows[r] = row
	}

	columns := make([]table.Column, len(tab.Header))
	for i, h := range tab.Header {
		columns[i] = table.Column{Title: h, Width: min(widths[i], maxColumnWidth)}
	}

	styles := table.DefaultStyles()
	styles.Header = m.theme.Header
	styles.Selected = m.theme.Selected

	return table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(m.tableHeight()),
		table.WithWidth(m.width),
		table.WithStyles(styles),
	)
}

func (m Model) tableHeight() int {
	return max(m.height-chromeHeight, 3)
}

func (m *Model) focus(i int) {
	if len(m.tables) == 0 {
		return
	}
	m.tables[m.active].Blur()
	m.active = (i + len(m.tables)) % len(m.tables)
	m.tables[m.active].Focus()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		for i := range m.tables {
			m.tables[i].SetWidth(msg.Width)
			m.tables[i].SetHeight(m.tableHeight())
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keymap.NextTab):
			m.focus(m.active + 1)
			return m, nil
		case key.Matches(msg, m.keymap.PrevTab):
			m.focus(m.active - 1)
			return m, nil
		}
	}

	if len(m.tables) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.tables[m.active], cmd = m.tables[m.active].Update(msg)
	return m, cmd
}

// ActiveTab returns the name of the tab being shown.
func (m Model) ActiveTab() string {
	if len(m.tabs) == 0 {
		return ""
	}
	return m.tabs[m.active].Name
}

// SelectedRow returns the highlighted row of the active tab.
func (m Model) SelectedRow() table.Row {
	if len(m.tables) == 0 {
		return nil
	}
	return m.tables[m.active].SelectedRow()
}
