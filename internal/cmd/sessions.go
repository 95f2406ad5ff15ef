package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fernglen/crewdeck/internal/session"
	"github.com/fernglen/crewdeck/internal/style"
)

var sessionsIncludeClosed bool

func init() {
	sessionsCmd.Flags().BoolVar(&sessionsIncludeClosed, "all", false, "include closed sessions")
	rootCmd.AddCommand(sessionsCmd)
}

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	GroupID: GroupCore,
	Short:   "List tracked terminal sessions",
	RunE:    runSessions,
}

func runSessions(cmd *cobra.Command, args []string) error {
	root := resolveRoot()
	recs, err := session.List(root)
	if err != nil {
		return fmt.Errorf("sessions: %w", err)
	}

	now := time.Now()
	t := style.NewTable(
		style.Column{Name: "SESSION", Width: 10},
		style.Column{Name: "STATUS", Width: 10},
		style.Column{Name: "PROJECT", Width: 16},
		style.Column{Name: "CURRENT TASK", Width: 14},
		style.Column{Name: "LAST ACTIVE", Width: 20},
	)
	for _, r := range recs {
		status := session.Derive(r, now)
		if !sessionsIncludeClosed && status == session.StatusClosed {
			continue
		}
		t.AddRow(r.Session, statusStyle(status).Render(string(status)), r.Project, r.CurrentTask, r.LastActive.Format(time.RFC3339))
	}
	fmt.Print(t.Render())
	return nil
}

func statusStyle(s session.Status) lipgloss.Style {
	switch s {
	case session.StatusActive:
		return style.Success
	case session.StatusStale:
		return style.Warn
	default:
		return style.Dim
	}
}
