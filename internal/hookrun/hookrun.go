// Package hookrun implements the five hook roles (C7): small synchronous
// procedures invoked by the host agent around every tool call. Each
// reads a JSON payload on stdin and writes advisory text to stdout or
// stderr; none ever blocks a tool call except on validator rejection.
package hookrun

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fernglen/crewdeck/internal/lock"
	"github.com/fernglen/crewdeck/internal/session"
	"github.com/fernglen/crewdeck/internal/statepath"
	"github.com/fernglen/crewdeck/internal/validate"
)

// Payload is the JSON object every hook reads on stdin (spec §6.2).
type Payload struct {
	SessionID      string `json:"session_id"`
	CWD            string `json:"cwd"`
	ToolName       string `json:"tool_name"`
	ToolInput      struct {
		FilePath string `json:"file_path"`
		Command  string `json:"command"`
	} `json:"tool_input"`
	Source         string `json:"source"`
	TranscriptPath string `json:"transcript_path"`
}

// Blocked is returned by a hook when the session id fails validation; it
// carries the exit-code-2 "BLOCKED" contract (spec §6.2).
type Blocked struct{ Reason string }

func (b *Blocked) Error() string { return "BLOCKED: " + b.Reason }

// shortID validates and shortens p.SessionID, or returns a *Blocked.
func shortID(p Payload) (string, error) {
	id, err := validate.ShortSessionID(p.SessionID)
	if err != nil {
		return "", &Blocked{Reason: err.Error()}
	}
	return id, nil
}

// Register implements the session-start hook (spec §4.7).
func Register(root string, p Payload, now time.Time) (string, error) {
	sid, err := shortID(p)
	if err != nil {
		return "", err
	}

	r := &session.Record{
		Session:       sid,
		Status:        session.StatusActive,
		Project:       filepath.Base(p.CWD),
		Branch:        detectBranch(p.CWD),
		CWD:           p.CWD,
		TTY:           detectTTY(),
		Started:       now,
		LastActive:    now,
		SchemaVersion: session.SchemaVersion,
	}
	if err := r.Save(root); err != nil {
		return "", fmt.Errorf("hookrun: register: %w", err)
	}
	if err := session.AppendStartEvent(root, sid, now); err != nil {
		return "", fmt.Errorf("hookrun: register: %w", err)
	}
	// Terminal title escape sequence enabling title-based wake (spec §6.5).
	return fmt.Sprintf("\x1b]0;agent-%s\x07", sid), nil
}

// Heartbeat implements the post-tool-use hook (spec §4.7). It always
// appends an activity line, then — subject to a 5s cooldown — updates
// the session record and, at most once per 60s, sweeps all sessions for
// an active→stale transition.
func Heartbeat(root string, p Payload, now time.Time) error {
	sid, err := shortID(p)
	if err != nil {
		return err
	}

	if err := session.AppendActivity(root, session.ActivityEntry{
		T: now, Session: sid, Tool: p.ToolName, File: p.ToolInput.FilePath,
	}); err != nil {
		return fmt.Errorf("hookrun: heartbeat: activity append: %w", err)
	}

	cooldownPath := filepath.Join(statepath.Terminals(root), ".hb-cooldown-"+sid)
	ok, err := lock.TryCooldown(cooldownPath, lock.HeartbeatCooldown)
	if err != nil {
		return fmt.Errorf("hookrun: heartbeat: cooldown: %w", err)
	}
	if !ok {
		return nil
	}

	if err := updateSessionOnHeartbeat(root, sid, p, now); err != nil {
		return err
	}

	staleMarker := filepath.Join(statepath.Terminals(root), ".stale-sweep")
	if ok, err := lock.TryCooldown(staleMarker, lock.StaleCheckCooldown); err == nil && ok {
		sweepStale(root, now)
	}
	return nil
}

func updateSessionOnHeartbeat(root, sid string, p Payload, now time.Time) error {
	r, err := session.Load(root, sid)
	if err != nil {
		return fmt.Errorf("hookrun: heartbeat: load: %w", err)
	}
	if r == nil {
		r = &session.Record{
			Session:       sid,
			Status:        session.StatusActive,
			Project:       filepath.Base(p.CWD),
			CWD:           p.CWD,
			Started:       now,
			SchemaVersion: session.SchemaVersion,
			Source:        "heartbeat-fallback",
		}
	}

	r.LastActive = now
	r.LastTool = p.ToolName
	r.LastFile = filepath.Base(p.ToolInput.FilePath)
	r.SchemaVersion = session.SchemaVersion
	if r.ToolCounts == nil {
		r.ToolCounts = map[string]int{}
	}
	r.ToolCounts[p.ToolName]++

	if p.ToolInput.FilePath != "" && (p.ToolName == "Write" || p.ToolName == "Edit") {
		r.PushFileTouched(p.ToolInput.FilePath)
	}
	r.PushRecentOp(session.Op{T: now, Tool: p.ToolName, File: filepath.Base(p.ToolInput.FilePath)})

	if tty := detectTTY(); tty != "" {
		r.TTY = tty
	}
	if p.ToolInput.FilePath != "" && session.IsPlanArtifact(p.ToolInput.FilePath) {
		r.PlanFile = p.ToolInput.FilePath
	}

	return r.Save(root)
}

// sweepStale transitions every active session whose last_active is
// older than 1h to stale. Unreadable records are skipped.
func sweepStale(root string, now time.Time) {
	recs, err := session.List(root)
	if err != nil {
		return
	}
	for _, r := range recs {
		if r.Status == session.StatusActive && now.Sub(r.LastActive) > time.Hour {
			r.Status = session.StatusStale
			_ = r.Save(root)
		}
	}
}

// End implements the session-end hook: marks the record closed and
// removes this session's per-session guard state.
func End(root string, p Payload, now time.Time) error {
	sid, err := shortID(p)
	if err != nil {
		return err
	}
	r, err := session.Load(root, sid)
	if err != nil {
		return fmt.Errorf("hookrun: end: load: %w", err)
	}
	if r == nil {
		return nil
	}
	r.Status = session.StatusClosed
	ended := now
	r.Ended = &ended
	if err := r.Save(root); err != nil {
		return fmt.Errorf("hookrun: end: save: %w", err)
	}
	if err := session.AppendEndEvent(root, sid, now); err != nil {
		return fmt.Errorf("hookrun: end: %w", err)
	}
	_ = os.Remove(filepath.Join(statepath.Terminals(root), ".hb-cooldown-"+sid))
	return nil
}

// ConflictAdvise implements the fast-path pre-Edit/Write advisor (spec
// §4.7): it scans other non-closed sessions' files_touched for an exact
// match and returns an advisory string (empty if none), never an error
// that would block the tool call.
func ConflictAdvise(root string, p Payload, now time.Time) string {
	sid, err := shortID(p)
	if err != nil || p.ToolInput.FilePath == "" {
		return ""
	}
	target := p.ToolInput.FilePath
	recs, err := session.List(root)
	if err != nil {
		return ""
	}
	var warnings []string
	for _, r := range recs {
		if r.Session == sid {
			continue
		}
		if session.Derive(r, now) == session.StatusClosed {
			continue
		}
		for _, f := range r.FilesTouched {
			if f == target {
				warnings = append(warnings, fmt.Sprintf("session %s also touched %s", r.Session, f))
				break
			}
		}
	}
	if len(warnings) == 0 {
		return ""
	}
	return "conflict advisory: " + strings.Join(warnings, "; ")
}
