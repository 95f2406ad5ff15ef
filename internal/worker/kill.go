package worker

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fernglen/crewdeck/internal/proc"
	"github.com/fernglen/crewdeck/internal/statepath"
	"github.com/fernglen/crewdeck/internal/util"
)

// Kill implements kill_worker (spec §4.11): a soft cancel that requests
// termination and always records the terminal state, regardless of
// whether the OS signal actually reached the process.
func Kill(root, taskID string, now time.Time) error {
	pidPath := statepath.WorkerPIDFile(root, taskID)
	donePath := statepath.WorkerDoneFile(root, taskID)

	pidData, pidErr := os.ReadFile(pidPath)
	if pidErr != nil {
		if _, err := os.Stat(donePath); err == nil {
			return nil // already completed, nothing to do
		}
	} else if pid := strings.TrimSpace(string(pidData)); proc.IsAlive(pid) {
		_ = proc.Kill(pid) // best-effort; cancellation is recorded regardless
	}

	if err := util.WriteJSONAtomic(donePath, map[string]any{
		"status":   StatusCancelled,
		"finished": now,
	}, statepath.FileMode); err != nil {
		return fmt.Errorf("worker: writing done marker: %w", err)
	}

	m, err := LoadMeta(root, taskID)
	if err != nil {
		return err
	}
	if m != nil {
		m.Status = StatusCancelled
		cancelled := now
		m.Cancelled = &cancelled
		if err := m.Save(root); err != nil {
			return fmt.Errorf("worker: updating meta: %w", err)
		}
	}

	_ = os.Remove(pidPath)
	return nil
}
