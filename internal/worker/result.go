package worker

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fernglen/crewdeck/internal/proc"
	"github.com/fernglen/crewdeck/internal/statepath"
)

// MaxTailLines is the default and hard cap on get_result's tail (spec
// §4.11: "min(tail_lines, 500) ... default 100").
const (
	DefaultTailLines = 100
	MaxTailLines     = 500
)

// Result is the rendered response of get_result.
type Result struct {
	TaskID    string
	Status    Status
	Truncated bool
	Output    string
}

// GetResult implements get_result: loads the meta, determines the live
// status (done-marker wins, then a live PID, else "unknown"-rendered as
// the meta's own status), and returns the tail of the captured output.
func GetResult(root, taskID string, tailLines int) (*Result, error) {
	m, err := LoadMeta(root, taskID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("worker: task %q not found", taskID)
	}

	status := m.Status
	if _, err := os.Stat(statepath.WorkerDoneFile(root, taskID)); err == nil {
		status = StatusCompleted
		if m.Status == StatusCancelled {
			status = StatusCancelled
		}
	} else if pidData, err := os.ReadFile(statepath.WorkerPIDFile(root, taskID)); err == nil && proc.IsAlive(strings.TrimSpace(string(pidData))) {
		status = StatusRunning
	}

	if tailLines <= 0 {
		tailLines = DefaultTailLines
	}
	if tailLines > MaxTailLines {
		tailLines = MaxTailLines
	}

	output, truncated := tailFile(statepath.WorkerOutFile(root, taskID), tailLines)
	return &Result{TaskID: taskID, Status: status, Truncated: truncated, Output: output}, nil
}

// tailFile reads the last n lines of path. A missing file returns an
// empty, non-truncated result.
func tailFile(path string, n int) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	var lines []string
	truncated := false
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > n {
			lines = lines[1:]
			truncated = true
		}
	}
	return strings.Join(lines, "\n"), truncated
}
