package launch

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// ExecTimeout bounds how long a launch subprocess (osascript, wt, the
// terminal emulator's own CLI) is given to start the new tab/window
// before Exec gives up — per spec.md §5, external commands carry a hard
// 5-10s timeout.
const ExecTimeout = 10 * time.Second

// Exec runs p.Program with p.Argv, with no shell interpretation — argv is
// handed directly to exec.Command, so nothing in a user-supplied prompt
// or file path can be interpreted as a shell metacharacter. A detached
// plan (no controlling terminal app found) is started and immediately
// released rather than waited on.
func Exec(p *Plan) error {
	if p.Detached {
		return exec.Command(p.Program, p.Argv[1:]...).Start()
	}

	ctx, cancel := context.WithTimeout(context.Background(), ExecTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.Program, p.Argv[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("launching %s: %w (%s)", p.Program, err, string(out))
	}
	return nil
}

// SingleQuote produces a POSIX shell-safe single-quoted string by
// escaping embedded single quotes with the standard '\'' trick (design
// notes: "POSIX scripts must single-quote with '\'' escape"). The result
// includes the surrounding quotes.
func SingleQuote(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'', '\\', '\'', '\'')
			continue
		}
		out = append(out, s[i])
	}
	out = append(out, '\'')
	return string(out)
}
