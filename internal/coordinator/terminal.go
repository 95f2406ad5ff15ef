package coordinator

import (
	"fmt"
	"runtime"

	"github.com/fernglen/crewdeck/internal/launch"
)

// spawnTerminal implements spawn_terminal: the lightest of the
// launch-backed operations, with no meta file or lifecycle tracking —
// it opens a terminal tab/split running the agent binary, optionally
// seeded with an initial prompt, and forgets about it (spec §6.1).
func spawnTerminal(directory, initialPrompt string, layout launch.Layout) error {
	command := "cd " + launch.SingleQuote(directory) + " && claude"
	if initialPrompt != "" {
		command = "cd " + launch.SingleQuote(directory) + " && claude " + launch.SingleQuote(initialPrompt)
	}
	if runtime.GOOS == "windows" {
		command = "cd /d \"" + directory + "\" && claude"
		if initialPrompt != "" {
			command += " " + initialPrompt
		}
	}

	app := launch.DetectApp()
	plan, err := launch.Build(runtime.GOOS, app, command, layout)
	if err != nil {
		return fmt.Errorf("spawn_terminal: %w", err)
	}
	if err := launch.Exec(plan); err != nil {
		return fmt.Errorf("spawn_terminal: launch failed: %w", err)
	}
	return nil
}
