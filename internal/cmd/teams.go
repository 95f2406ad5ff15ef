package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fernglen/crewdeck/internal/style"
	"github.com/fernglen/crewdeck/internal/team"
)

func init() {
	rootCmd.AddCommand(teamsCmd)
}

var teamsCmd = &cobra.Command{
	Use:     "teams",
	GroupID: GroupCore,
	Short:   "List registered teams",
	RunE:    runTeams,
}

func runTeams(cmd *cobra.Command, args []string) error {
	root := resolveRoot()
	list, err := team.List(root)
	if err != nil {
		return fmt.Errorf("teams: %w", err)
	}

	t := style.NewTable(
		style.Column{Name: "TEAM", Width: 16},
		style.Column{Name: "PROJECT", Width: 16},
		style.Column{Name: "MEMBERS", Width: 8},
		style.Column{Name: "DESCRIPTION", Width: 36},
	)
	for _, r := range list {
		t.AddRow(r.TeamName, r.Project, strconv.Itoa(len(r.Members)), r.Description)
	}
	fmt.Print(t.Render())
	return nil
}
