package launch

import "fmt"

// planLinux implements the linux row of the §4.5 launch table.
func planLinux(app App, command string, layout Layout) (*Plan, error) {
	switch app {
	case AppGnomeTerminal:
		return &Plan{Program: "gnome-terminal", Argv: []string{"gnome-terminal", "--", "bash", "-c", command}}, nil

	case AppKonsole:
		return &Plan{Program: "konsole", Argv: []string{"konsole", "-e", "bash", "-c", command}}, nil

	case AppAlacritty:
		return &Plan{Program: "alacritty", Argv: []string{"alacritty", "-e", "bash", "-c", command}}, nil

	case AppKitty:
		launchType := "tab"
		if layout == LayoutSplit {
			launchType = "window"
		}
		return &Plan{Program: "kitty", Argv: []string{"kitty", "@", "launch", "--type=" + launchType, "bash", "-c", command}}, nil

	case AppNone:
		return planFallbackShell(command), nil

	default:
		return nil, fmt.Errorf("launch: unsupported terminal app %q on linux", app)
	}
}
