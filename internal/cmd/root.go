// Package cmd wires crewdeck's cobra subcommands: the coordinator loop
// (serve), the five hook roles, a few human-facing table views, and a
// doctor command, all layered over the same on-disk state root.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fernglen/crewdeck/internal/statepath"
)

const (
	GroupCore  = "core"
	GroupHooks = "hooks"
	GroupDiag  = "diag"
)

var rootRoot string

var rootCmd = &cobra.Command{
	Use:   "cw",
	Short: "crewdeck: a file-based coordinator for multi-agent terminal workstations",
	Long: `crewdeck coordinates multiple coding-agent terminal sessions working in
the same workspace: it tracks session liveness, routes inbox messages and
directives, detects file conflicts between concurrently-edited sessions,
and spawns worker and pipeline subprocesses — all through a single
owner-restricted state root on disk, with no always-on daemon.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core:"},
		&cobra.Group{ID: GroupHooks, Title: "Hook roles:"},
		&cobra.Group{ID: GroupDiag, Title: "Diagnostics:"},
	)
	rootCmd.PersistentFlags().StringVar(&rootRoot, "root", "", "state root directory (default: $CREWDECK_HOME or ~/.crewdeck)")
}

// resolveRoot honors --root over the CREWDECK_HOME/default resolution
// in internal/statepath, without requiring every subcommand to repeat
// the same three-way fallback.
func resolveRoot() string {
	if rootRoot != "" {
		return rootRoot
	}
	return statepath.Root()
}

// Execute runs the parsed command and returns a process exit code
// (0 on success, 1 on any reported error) for main to pass to os.Exit.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
