package launch

import (
	"fmt"
	"strings"
)

// planWindows implements the win32 row of the §4.5 launch table.
func planWindows(app App, command string, layout Layout) (*Plan, error) {
	switch app {
	case AppWindowsTerminal:
		sub := "nt"
		if layout == LayoutSplit {
			sub = "sp"
			return &Plan{Program: "wt", Argv: []string{"wt", "-w", "0", sub, "-V", "cmd", "/c", command}}, nil
		}
		return &Plan{Program: "wt", Argv: []string{"wt", "-w", "0", sub, "cmd", "/c", command}}, nil

	case AppCmd:
		return &Plan{Program: "cmd", Argv: []string{"cmd", "/c", "start", "\"\"", "cmd", "/c", command}}, nil

	case AppNone:
		return &Plan{Program: "cmd", Argv: []string{"cmd", "/c", command}, Detached: true}, nil

	default:
		return nil, fmt.Errorf("launch: unsupported terminal app %q on windows", app)
	}
}

// batMetachars are the cmd.exe characters BatQuote escapes with a caret.
// The caret itself must be escaped first, or re-escaping would double it.
var batMetachars = []byte{'^', '&', '|', '>', '<', '!', '%'}

// BatQuote escapes a string for safe inclusion inside a generated .bat
// script, per the design notes: "Windows scripts must use the batQuote
// helper (cmd.exe metacharacters & | > < ^ ! % and ^ itself)." Caller is
// still responsible for wrapping the result in double quotes where cmd's
// own tokenizer requires it.
func BatQuote(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		for _, m := range batMetachars {
			if c == m {
				b.WriteByte('^')
				break
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
