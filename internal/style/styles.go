package style

import "github.com/charmbracelet/lipgloss"

// Shared text styles used by Table and by the cw CLI's human-readable
// output (cw sessions, cw tasks, cw teams, cw doctor).
var (
	Bold    = lipgloss.NewStyle().Bold(true)
	Dim     = lipgloss.NewStyle().Faint(true)
	Warn    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	Danger  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
)
