// Package inbox implements the inbox/mailbox service (C9): per-session
// JSONL mailboxes, a crash-safe drain, broadcast, directives that wake a
// stale recipient, and the shared sliding-window rate limiter (§4.9.1)
// also used by the wake service.
package inbox

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fernglen/crewdeck/internal/jsonl"
	"github.com/fernglen/crewdeck/internal/session"
	"github.com/fernglen/crewdeck/internal/statepath"
	"github.com/fernglen/crewdeck/internal/util"
)

// Priority is the message urgency sum type.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityUrgent Priority = "urgent"
)

// MaxContentBytes bounds a message body (spec §4.9).
const MaxContentBytes = 8 * 1024

// DefaultRateCap is the default sliding-window cap (spec §4.9.1).
const DefaultRateCap = 120

// Message is one line of a recipient's inbox JSONL file.
type Message struct {
	TS       time.Time `json:"ts"`
	From     string    `json:"from"`
	Priority Priority  `json:"priority"`
	Content  string    `json:"content"`
}

// Waker is implemented by the wake service; SendDirective calls it for a
// stale/idle/long-silent target. Kept as an interface here to avoid an
// import cycle between inbox and wake (wake itself sends messages via
// inbox.Send as its fallback path).
type Waker interface {
	Wake(root, sessionID, message string) error
}

// CheckInbox drains a session's inbox crash-safely (rename then read);
// on rename failure it falls back to reading in place. Applies the C4
// caps and clears has_messages on the session record.
func CheckInbox(root, sessionID string) (*jsonl.Result, error) {
	path := statepath.InboxFile(root, sessionID)
	drainPath := statepath.InboxDrainFile(root, sessionID, time.Now().UnixNano())

	readPath := path
	if err := os.Rename(path, drainPath); err == nil {
		readPath = drainPath
		defer os.Remove(drainPath)
	} else if !os.IsNotExist(err) {
		// Rename failed for a reason other than "nothing to drain":
		// fall back to reading in place, per §4.9.
		readPath = path
	}

	result, err := jsonl.Read(readPath, jsonl.DefaultMaxBytes, jsonl.DefaultMaxLines)
	if err != nil {
		return nil, fmt.Errorf("inbox: check: %w", err)
	}

	if readPath == path {
		_ = os.Remove(path)
	}

	if r, lerr := session.Load(root, sessionID); lerr == nil && r != nil && r.HasMessages {
		r.HasMessages = false
		_ = r.Save(root)
	}

	return result, nil
}

// Send validates and appends content to the recipient's inbox, enforcing
// the rate limit and the offline-target policy. If the target session
// file does not exist, Send fails unless allowOffline is true (spec's
// decided variant, §9 open question).
func Send(root, from, to, content string, priority Priority, allowOffline bool) error {
	if content == "" {
		return fmt.Errorf("inbox: message content must not be empty")
	}
	if len(content) > MaxContentBytes {
		return fmt.Errorf("inbox: message content exceeds %d bytes", MaxContentBytes)
	}

	target, err := session.Load(root, to)
	if err != nil {
		return fmt.Errorf("inbox: loading target session: %w", err)
	}
	if target == nil && !allowOffline {
		return fmt.Errorf("inbox: unknown session %q (allow_offline not set)", to)
	}

	ok, err := checkRateLimit(root, to, DefaultRateCap)
	if err != nil {
		return fmt.Errorf("inbox: rate limit: %w", err)
	}
	if !ok {
		return fmt.Errorf("inbox: rate limit exceeded for %q", to)
	}

	if err := appendMessage(root, to, Message{TS: time.Now(), From: from, Priority: priority, Content: content}); err != nil {
		return err
	}

	if target != nil {
		target.HasMessages = true
		_ = target.Save(root)
	}
	return nil
}

// Broadcast enumerates all non-closed sessions and performs an
// independent append per recipient, each prefixed with "[BROADCAST] ".
func Broadcast(root, from, content string, priority Priority) (int, error) {
	recs, err := session.List(root)
	if err != nil {
		return 0, fmt.Errorf("inbox: broadcast: listing sessions: %w", err)
	}
	sent := 0
	now := time.Now()
	for _, r := range recs {
		if session.Derive(r, now) == session.StatusClosed {
			continue
		}
		if err := Send(root, from, r.Session, "[BROADCAST] "+content, priority, true); err != nil {
			continue
		}
		sent++
	}
	return sent, nil
}

// SendDirective behaves like Send, plus: if the target is stale/idle or
// its last_active is older than 120s, it invokes waker to re-focus it.
func SendDirective(root, from, to, content string, priority Priority, waker Waker) error {
	if err := Send(root, from, to, content, priority, false); err != nil {
		return err
	}
	r, err := session.Load(root, to)
	if err != nil || r == nil {
		return nil
	}
	now := time.Now()
	status := session.Derive(r, now)
	if status == session.StatusStale || status == session.StatusIdle || now.Sub(r.LastActive) > 120*time.Second {
		if waker != nil {
			_ = waker.Wake(root, to, content)
		}
	}
	return nil
}

func appendMessage(root, to string, m Message) error {
	path := statepath.InboxFile(root, to)
	line, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("inbox: marshaling message: %w", err)
	}
	if err := util.AppendLineLocked(path, string(line), statepath.FileMode); err != nil {
		return fmt.Errorf("inbox: appending to %s: %w", to, err)
	}
	return nil
}
