package main

import "github.com/charmbracelet/lipgloss"

// stageTheme bundles the styles one theme id maps to. Unknown ids fall back
// to the default theme, so re-applying or mistyping a theme never breaks the
// view.
type stageTheme struct {
	header   lipgloss.Style
	idle     lipgloss.Style
	talking  lipgloss.Style
	active   lipgloss.Style
	line     lipgloss.Style
	status   lipgloss.Style
	help     lipgloss.Style
	finished lipgloss.Style
}

func themeFor(themeID string) stageTheme {
	if theme, ok := themes[themeID]; ok {
		return theme
	}

	return themes["default"]
}

var themes = map[string]stageTheme{
	"default": {
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		idle:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		talking:  lipgloss.NewStyle().Foreground(lipgloss.Color("84")),
		active:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		line:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")).PaddingLeft(2),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		finished: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("247")),
	},
	"midnight": {
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		idle:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		talking:  lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		active:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51")),
		line:     lipgloss.NewStyle().Foreground(lipgloss.Color("189")).PaddingLeft(2),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("61")),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		finished: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("103")),
	},
	"dawn": {
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("209")),
		idle:     lipgloss.NewStyle().Foreground(lipgloss.Color("246")),
		talking:  lipgloss.NewStyle().Foreground(lipgloss.Color("215")),
		active:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226")),
		line:     lipgloss.NewStyle().Foreground(lipgloss.Color("230")).PaddingLeft(2),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("173")),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		finished: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("180")),
	},
}
