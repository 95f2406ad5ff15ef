package session

import (
	"bufio"
	"encoding/json"
	"os"
	"time"

	"github.com/fernglen/crewdeck/internal/statepath"
	"github.com/fernglen/crewdeck/internal/util"
)

// logTruncateThreshold and logTruncateKeep implement the register hook's
// "truncate sessions.jsonl to the most recent 150 lines when it exceeds
// 200" rule (spec §4.7).
const (
	logTruncateThreshold = 200
	logTruncateKeep      = 150
)

type logEvent struct {
	T       time.Time `json:"t"`
	Event   string    `json:"event"`
	Session string    `json:"session"`
}

// AppendStartEvent appends a start event to sessions.jsonl and truncates
// the log if it has grown past logTruncateThreshold lines.
func AppendStartEvent(root, sessionID string, now time.Time) error {
	return appendLogEvent(root, sessionID, "start", now)
}

// AppendEndEvent appends an end event to sessions.jsonl.
func AppendEndEvent(root, sessionID string, now time.Time) error {
	return appendLogEvent(root, sessionID, "end", now)
}

func appendLogEvent(root, sessionID, event string, now time.Time) error {
	path := statepath.SessionsLog(root)
	line, err := json.Marshal(logEvent{T: now, Event: event, Session: sessionID})
	if err != nil {
		return err
	}
	if err := util.AppendLineLocked(path, string(line), statepath.FileMode); err != nil {
		return err
	}
	return truncateIfLarge(path, logTruncateThreshold, logTruncateKeep)
}

// truncateIfLarge rewrites path to keep only its last `keep` lines once
// it exceeds `threshold` lines. Used by both the session event log and
// (with different constants) the activity log's heartbeat-driven cap.
func truncateIfLarge(path string, threshold, keep int) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	f.Close()
	if len(lines) <= threshold {
		return nil
	}
	kept := lines[len(lines)-keep:]
	tmp := path + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, statepath.FileMode)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(out)
	for _, l := range kept {
		w.WriteString(l)
		w.WriteString("\n")
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
