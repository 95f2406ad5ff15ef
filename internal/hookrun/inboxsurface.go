package hookrun

import (
	"fmt"
	"os"
	"strings"

	"github.com/fernglen/crewdeck/internal/inbox"
	"github.com/fernglen/crewdeck/internal/lock"
	"github.com/fernglen/crewdeck/internal/statepath"
	"github.com/fernglen/crewdeck/internal/worker"
)

// stripControlChars strips C0 and C1 control characters from drained inbox
// content before it is displayed to the host agent (spec §4.7).
func stripControlChars(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x20 && r != '\n' && r != '\t' {
			continue
		}
		if r >= 0x7f && r <= 0x9f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// InboxSurface implements the pre-tool-use inbox surfacing hook (spec
// §4.7): first routes completed-worker notifications to their
// notify_session_id, then crash-safely drains this session's own inbox.
func InboxSurface(root string, p Payload) (string, error) {
	sid, err := shortID(p)
	if err != nil {
		return "", err
	}

	surfaceCompletedWorkerNotifications(root)

	result, err := inbox.CheckInbox(root, sid)
	if err != nil {
		return "", fmt.Errorf("hookrun: inbox surface: %w", err)
	}
	if len(result.Items) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("--- INCOMING MESSAGES FROM COORDINATOR ---\n")
	for _, raw := range result.Items {
		b.WriteString(stripControlChars(string(raw)))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// surfaceCompletedWorkerNotifications scans results/*.meta.json.done for
// workers that declared a notify_session_id and have not yet had their
// completion routed, using a per-task route lock so the check is
// idempotent even if called concurrently from multiple sessions.
func surfaceCompletedWorkerNotifications(root string) {
	dir := statepath.ResultsDir(root)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".meta.json.done") {
			continue
		}
		taskID := strings.TrimSuffix(name, ".meta.json.done")
		reportedPath := statepath.WorkerReportedFile(root, taskID)
		if _, err := os.Stat(reportedPath); err == nil {
			continue
		}

		m, err := worker.LoadMeta(root, taskID)
		if err != nil || m == nil || m.NotifySessionID == "" {
			continue
		}

		routeLock := lock.NewMkdirLock(reportedPath + ".routing")
		acquired, err := routeLock.TryLock()
		if err != nil || !acquired {
			continue
		}

		tail, _ := tailLastLines(statepath.WorkerOutFile(root, taskID), 15)
		msg := fmt.Sprintf("[WORKER COMPLETED] %s\n%s", taskID, tail)
		_ = inbox.Send(root, "coordinator", m.NotifySessionID, msg, inbox.PriorityNormal, true)

		_ = os.WriteFile(reportedPath, nil, statepath.FileMode)
		_ = routeLock.Unlock()
	}
}

func tailLastLines(path string, n int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n"), nil
}
