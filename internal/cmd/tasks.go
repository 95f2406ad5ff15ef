package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fernglen/crewdeck/internal/style"
	"github.com/fernglen/crewdeck/internal/task"
)

var (
	tasksStatus   string
	tasksAssignee string
)

func init() {
	tasksCmd.Flags().StringVar(&tasksStatus, "status", "", "filter by status")
	tasksCmd.Flags().StringVar(&tasksAssignee, "assignee", "", "filter by assignee")
	rootCmd.AddCommand(tasksCmd)
}

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	GroupID: GroupCore,
	Short:   "List task board entries",
	RunE:    runTasks,
}

func runTasks(cmd *cobra.Command, args []string) error {
	root := resolveRoot()
	list, err := task.ListSorted(root, task.ListFilter{
		Status:   task.Status(tasksStatus),
		Assignee: tasksAssignee,
	})
	if err != nil {
		return fmt.Errorf("tasks: %w", err)
	}

	t := style.NewTable(
		style.Column{Name: "TASK", Width: 10},
		style.Column{Name: "STATUS", Width: 12},
		style.Column{Name: "PRIORITY", Width: 8},
		style.Column{Name: "ASSIGNEE", Width: 10},
		style.Column{Name: "SUBJECT", Width: 40},
		style.Column{Name: "BLOCKED BY", Width: 14},
	)
	for _, r := range list {
		t.AddRow(r.TaskID, taskStatusStyle(r.Status).Render(string(r.Status)),
			string(r.Priority), r.Assignee, r.Subject, strings.Join(r.BlockedBy, ","))
	}
	fmt.Print(t.Render())
	return nil
}

func taskStatusStyle(s task.Status) lipgloss.Style {
	switch s {
	case task.StatusInProgress:
		return style.Success
	case task.StatusCancelled:
		return style.Dim
	case task.StatusPending:
		return style.Warn
	default:
		return style.Bold
	}
}
