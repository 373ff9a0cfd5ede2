// Package themes holds the color schemes for the inspection dashboard.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Normal      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	Selected    lipgloss.Style
	Header      lipgloss.Style
	RoundedBox  lipgloss.Style
	StatusError lipgloss.Style
	StatusWarn  lipgloss.Style
	StatusOK    lipgloss.Style
	Primary     lipgloss.Color
	Muted       lipgloss.Color
	Border      lipgloss.Color
}

func build(primary, foreground, muted, border, success, warning, danger, selectedFg string) Theme {
	return Theme{
		Primary: lipgloss.Color(primary),
		Muted:   lipgloss.Color(muted),
		Border:  lipgloss.Color(border),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(foreground)),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(muted)),
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color(foreground)),
		ActiveTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(selectedFg)).
			Background(lipgloss.Color(primary)).
			Padding(0, 1),
		InactiveTab: lipgloss.NewStyle().
			Foreground(lipgloss.Color(muted)).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(selectedFg)).
			Background(lipgloss.Color(primary)),
		Header: lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color(border)),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(border)).
			Padding(0, 1),
		StatusOK: lipgloss.NewStyle().
			Foreground(lipgloss.Color(success)).
			Bold(true),
		StatusWarn: lipgloss.NewStyle().
			Foreground(lipgloss.Color(warning)).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(lipgloss.Color(danger)).
			Bold(true),
	}
}

// Default is the default theme.
var Default = build("#FF8C42", "#fafafa", "#737373", "#404040", "#10b981", "#f59e0b", "#ef4444", "#1a1a1a")

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build("#cba6f7", "#cdd6f4", "#6c7086", "#45475a", "#a6e3a1", "#f9e2af", "#f38ba8", "#1e1e2e")

// ByName returns the named theme, falling back to Default.
func ByName(name string) Theme {
	if name == "catppuccin" {
		return CatppuccinMocha
	}
	return Default
}
