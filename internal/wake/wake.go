// Package wake implements the wake service (C15): best-effort terminal
// attention for a session, falling back to an urgent inbox message when
// direct attention isn't possible. The coordinator adapts Wake to
// inbox.Waker so inbox.SendDirective can invoke it without an import
// cycle.
package wake

import (
	"fmt"
	"runtime"

	"github.com/fernglen/crewdeck/internal/inbox"
	"github.com/fernglen/crewdeck/internal/session"
	"github.com/fernglen/crewdeck/internal/validate"
)

// rateCap mirrors inbox.DefaultRateCap; wakes share the recipient's
// sliding window with ordinary messages (spec §4.15 step 1).
const rateCap = inbox.DefaultRateCap

// Wake implements wake_session (spec §4.15): rate-limit, existence
// check, store the message, then attempt a platform-specific attention
// signal. On any failure of direct attention, an urgent [WAKE]-prefixed
// copy of the message is also appended to the inbox.
func Wake(root, sessionID, message string) error {
	ok, err := inbox.CheckRateLimit(root, sessionID, rateCap)
	if err != nil {
		return fmt.Errorf("wake: rate limit check: %w", err)
	}
	if !ok {
		return fmt.Errorf("wake: rate limit exceeded for %q", sessionID)
	}

	r, err := session.Load(root, sessionID)
	if err != nil {
		return fmt.Errorf("wake: loading session %q: %w", sessionID, err)
	}
	if r == nil {
		return fmt.Errorf("wake: session %q not found", sessionID)
	}

	if err := inbox.Send(root, "system", sessionID, message, inbox.PriorityNormal, true); err != nil {
		return fmt.Errorf("wake: storing message: %w", err)
	}

	if attemptAttention(runtime.GOOS, r) {
		return nil
	}

	if err := inbox.Send(root, "system", sessionID, "[WAKE] "+message, inbox.PriorityUrgent, true); err != nil {
		return fmt.Errorf("wake: urgent fallback: %w", err)
	}
	return nil
}

// attemptAttention dispatches to the platform-specific attention signal.
// It never passes message content through the terminal — only an Enter
// keystroke or an empty write, per spec §4.15's explicit injection ban.
func attemptAttention(platform string, r *session.Record) bool {
	switch platform {
	case "linux":
		return attentionLinux(r)
	case "windows":
		return attentionWindows(r)
	case "darwin":
		return attentionDarwin(r)
	default:
		return false
	}
}

func safeTTY(r *session.Record) (string, bool) {
	if r.TTY == "" {
		return "", false
	}
	p, err := validate.SafeTTYPath(r.TTY)
	if err != nil {
		return "", false
	}
	return p, true
}
