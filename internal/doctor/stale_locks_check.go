package doctor

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fernglen/crewdeck/internal/statepath"
)

// staleLockAge is well past the staleTTL lock callers pass to
// lock.Acquire (lock.DefaultStaleTTL, 5m) — a *.lock file older
// than this almost certainly belongs to a process that crashed without
// releasing it.
const staleLockAge = 15 * time.Minute

// StaleLocksCheck walks the state root for *.lock files whose mtime is
// old enough that they are very likely abandoned.
type StaleLocksCheck struct{ BaseCheck }

func NewStaleLocksCheck() *StaleLocksCheck {
	return &StaleLocksCheck{BaseCheck{CheckName: "stale-locks"}}
}

func (c *StaleLocksCheck) Run(ctx *CheckContext) *CheckResult {
	var stale []string
	now := time.Now()
	root := statepath.Terminals(ctx.Root)
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".lock") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if now.Sub(info.ModTime()) > staleLockAge {
			stale = append(stale, path)
		}
		return nil
	})

	if len(stale) > 0 {
		return &CheckResult{
			Name: c.Name(), Status: StatusWarning,
			Message: fmt.Sprintf("%d lock file(s) older than %s", len(stale), staleLockAge),
			Details: stale,
		}
	}
	return &CheckResult{Name: c.Name(), Status: StatusOK, Message: "no stale locks found"}
}
