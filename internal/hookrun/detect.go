package hookrun

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/term"
)

const detectTimeout = 5 * time.Second

// detectBranch best-effort-reads the current VCS branch via `git`. An
// empty string means "no branch detected", not an error — the register
// hook never fails on this.
func detectBranch(cwd string) string {
	ctx, cancel := context.WithTimeout(context.Background(), detectTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, "git", "-C", cwd, "rev-parse", "--abbrev-ref", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	branch := strings.TrimSpace(string(out))
	if branch == "HEAD" {
		return ""
	}
	return branch
}

// detectTTY best-effort-identifies the controlling TTY of this process.
// It first checks with term.IsTerminal whether stdin is even a terminal
// (a hook run from a pipe or redirect isn't, and the readlink below would
// just resolve to a pipe or /dev/null) and only then resolves the device
// path via the /proc/self/fd/0 readlink (Linux only); returns "" when it
// can't be determined, including on macOS and Windows, which have no
// /proc.
func detectTTY() string {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ""
	}
	if link, err := os.Readlink("/proc/self/fd/0"); err == nil {
		if strings.HasPrefix(link, "/dev/") {
			return link
		}
	}
	return ""
}
