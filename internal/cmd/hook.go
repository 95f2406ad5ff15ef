package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fernglen/crewdeck/internal/hookrun"
)

func init() {
	rootCmd.AddCommand(hookCmd)
	hookCmd.AddCommand(
		hookRegisterCmd,
		hookHeartbeatCmd,
		hookEndCmd,
		hookNotifyCmd,
		hookConflictAdviseCmd,
	)
}

var hookCmd = &cobra.Command{
	Use:     "hook",
	GroupID: GroupHooks,
	Short:   "Hook roles invoked by the host agent around every tool call",
	Long: `hook implements the five synchronous roles spec.md §4.7 describes:
register, heartbeat, end, notify and conflict-advise. Each reads a JSON
payload on stdin (session_id, cwd, tool_name, tool_input, ...) and never
blocks a tool call except by exiting 2 ("BLOCKED") when the session id
fails validation.

Example hook configuration (.claude/settings.json):

  {
    "hooks": {
      "SessionStart":  [{"hooks": [{"type": "command", "command": "cw hook register"}]}],
      "PostToolUse":   [{"hooks": [{"type": "command", "command": "cw hook heartbeat"}]}],
      "SessionEnd":    [{"hooks": [{"type": "command", "command": "cw hook end"}]}],
      "PreToolUse":    [{"hooks": [
        {"type": "command", "command": "cw hook notify"},
        {"type": "command", "command": "cw hook conflict-advise"}
      ]}]
    }
  }`,
}

func readPayload() (hookrun.Payload, error) {
	var p hookrun.Payload
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return p, fmt.Errorf("reading stdin: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parsing hook payload: %w", err)
	}
	return p, nil
}

// blockedExit implements the exit-code-2 BLOCKED contract (spec §6.2):
// a *hookrun.Blocked is not a normal error, it's an instruction to the
// host agent to reject the tool call.
func blockedExit(err error) {
	if _, ok := err.(*hookrun.Blocked); ok {
		fmt.Fprintln(os.Stderr, "BLOCKED:", err)
		os.Exit(2)
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

var hookRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "SessionStart hook: records a new active session",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer restrictUmask()()
		p, err := readPayload()
		if err != nil {
			return err
		}
		title, err := hookrun.Register(resolveRoot(), p, time.Now())
		if err != nil {
			blockedExit(err)
			return nil
		}
		fmt.Print(title)
		return nil
	},
}

var hookHeartbeatCmd = &cobra.Command{
	Use:   "heartbeat",
	Short: "PostToolUse hook: records activity and refreshes liveness",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer restrictUmask()()
		p, err := readPayload()
		if err != nil {
			return err
		}
		if err := hookrun.Heartbeat(resolveRoot(), p, time.Now()); err != nil {
			blockedExit(err)
		}
		return nil
	},
}

var hookEndCmd = &cobra.Command{
	Use:   "end",
	Short: "SessionEnd hook: marks the session closed",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer restrictUmask()()
		p, err := readPayload()
		if err != nil {
			return err
		}
		if err := hookrun.End(resolveRoot(), p, time.Now()); err != nil {
			blockedExit(err)
		}
		return nil
	},
}

var hookNotifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "PreToolUse hook: surfaces queued inbox messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer restrictUmask()()
		p, err := readPayload()
		if err != nil {
			return err
		}
		text, err := hookrun.InboxSurface(resolveRoot(), p)
		if err != nil {
			blockedExit(err)
			return nil
		}
		if text != "" {
			fmt.Fprint(os.Stderr, text)
		}
		return nil
	},
}

var hookConflictAdviseCmd = &cobra.Command{
	Use:   "conflict-advise",
	Short: "PreToolUse hook: warns about other sessions editing the same file",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer restrictUmask()()
		p, err := readPayload()
		if err != nil {
			return err
		}
		if advisory := hookrun.ConflictAdvise(resolveRoot(), p, time.Now()); advisory != "" {
			fmt.Fprintln(os.Stderr, advisory)
		}
		return nil
	},
}
