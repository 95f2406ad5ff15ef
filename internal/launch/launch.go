// Package launch maps a (platform, terminal app, command, layout) tuple
// to an argv to execute — and nothing else. Build is a pure function;
// Exec (in exec.go) is the only thing that actually spawns a process, and
// it never goes through a shell interpreter (C5 in the design doc).
package launch

// Layout is where a new command should appear relative to the caller's
// terminal.
type Layout string

const (
	LayoutTab   Layout = "tab"
	LayoutSplit Layout = "split"
)

// App identifies a terminal application. "" means "no known terminal
// app" and falls back to a detached background shell.
type App string

const (
	AppNone            App = ""
	AppITerm2          App = "iterm2"
	AppTerminalApp     App = "terminal.app"
	AppWindowsTerminal App = "windows-terminal"
	AppCmd             App = "cmd"
	AppGnomeTerminal   App = "gnome-terminal"
	AppKonsole         App = "konsole"
	AppAlacritty       App = "alacritty"
	AppKitty           App = "kitty"
)

// Plan is what Build returns: the program to execute and its argv (argv[0]
// is the program name by convention, matching os/exec.Cmd.Args). Detached
// indicates the process should be started without a controlling terminal
// attachment to the caller (used for the "no known terminal app" fallback).
type Plan struct {
	Program  string
	Argv     []string
	Detached bool
}

// Build computes the argv for launching command on platform using
// terminalApp, in the given layout. It performs no I/O and starts no
// process — see Exec.
func Build(platform string, terminalApp App, command string, layout Layout) (*Plan, error) {
	switch platform {
	case "darwin":
		return planDarwin(terminalApp, command, layout)
	case "windows":
		return planWindows(terminalApp, command, layout)
	case "linux":
		return planLinux(terminalApp, command, layout)
	default:
		return planFallbackShell(command), nil
	}
}

func planFallbackShell(command string) *Plan {
	return &Plan{Program: "bash", Argv: []string{"bash", "-lc", command}, Detached: true}
}
