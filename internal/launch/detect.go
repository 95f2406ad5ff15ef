package launch

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// ProbeTimeout bounds the terminal-application process-table probe
// (spec.md §5: "Terminal-application probes carry a 5 s timeout").
const ProbeTimeout = 5 * time.Second

// DetectApp best-effort-identifies the terminal application hosting the
// current process tree, by scanning the local process table for a known
// terminal's process name. Returns AppNone if nothing recognizable is
// running (or the probe fails/times out), which callers treat as "fall
// back to a detached background shell".
func DetectApp() App {
	switch runtime.GOOS {
	case "darwin":
		return detectFromProcessNames(map[string]App{
			"iTerm2":  AppITerm2,
			"Terminal": AppTerminalApp,
		}, AppNone)
	case "windows":
		return detectFromProcessNames(map[string]App{
			"WindowsTerminal.exe": AppWindowsTerminal,
			"cmd.exe":             AppCmd,
		}, AppNone)
	case "linux":
		return detectFromProcessNames(map[string]App{
			"gnome-terminal-server": AppGnomeTerminal,
			"konsole":               AppKonsole,
			"alacritty":             AppAlacritty,
			"kitty":                 AppKitty,
		}, AppNone)
	default:
		return AppNone
	}
}

func detectFromProcessNames(candidates map[string]App, fallback App) App {
	listing, err := listProcessNames()
	if err != nil {
		return fallback
	}
	for name, app := range candidates {
		if strings.Contains(listing, name) {
			return app
		}
	}
	return fallback
}

// listProcessNames returns a newline-joined listing of running process
// names via the platform's own enumeration tool, bounded by ProbeTimeout.
func listProcessNames() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), ProbeTimeout)
	defer cancel()

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.CommandContext(ctx, "tasklist")
	default:
		cmd = exec.CommandContext(ctx, "ps", "-A", "-o", "comm=")
	}
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
