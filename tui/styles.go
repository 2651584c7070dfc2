package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	statusBar lipgloss.Style
	statusKey lipgloss.Style
	stagnant  lipgloss.Style
	errText   lipgloss.Style
	cursor    lipgloss.Style
	dim       lipgloss.Style
}

func defaultStyles() styles {
	brand := lipgloss.AdaptiveColor{Light: "26", Dark: "81"}
	subtle := lipgloss.AdaptiveColor{Light: "245", Dark: "244"}
	return styles{
		statusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("236")),
		statusKey: lipgloss.NewStyle().Bold(true).Foreground(brand),
		stagnant:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		errText:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		cursor:    lipgloss.NewStyle().Reverse(true),
		dim:       lipgloss.NewStyle().Foreground(subtle),
	}
}
