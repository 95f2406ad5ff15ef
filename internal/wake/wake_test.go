package wake

import (
	"strings"
	"testing"
	"time"

	"github.com/fernglen/crewdeck/internal/inbox"
	"github.com/fernglen/crewdeck/internal/session"
)

func seedSession(t *testing.T, root, id, tty string) {
	t.Helper()
	r := &session.Record{Session: id, Status: session.StatusActive, CWD: t.TempDir(), TTY: tty, Started: time.Now(), LastActive: time.Now()}
	if err := r.Save(root); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

// TestWakeFallsBackToInboxOnPlatformMiss implements scenario S8: a
// session with no TTY and no matching terminal window still gets the
// message, now prefixed [WAKE].
func TestWakeFallsBackToInboxOnPlatformMiss(t *testing.T) {
	root := t.TempDir()
	seedSession(t, root, "cccc3333", "")

	if err := Wake(root, "cccc3333", "hey"); err != nil {
		t.Fatalf("Wake: %v", err)
	}

	res, err := inbox.CheckInbox(root, "cccc3333")
	if err != nil {
		t.Fatalf("CheckInbox: %v", err)
	}
	if len(res.Items) != 2 {
		t.Fatalf("len(items) = %d, want 2 (plain store + urgent fallback)", len(res.Items))
	}
	foundWake := false
	for _, raw := range res.Items {
		if strings.Contains(string(raw), "[WAKE] hey") {
			foundWake = true
		}
	}
	if !foundWake {
		t.Fatalf("expected a [WAKE]-prefixed message among %v", res.Items)
	}
}

func TestWakeErrorsOnUnknownSession(t *testing.T) {
	root := t.TempDir()
	if err := Wake(root, "nosuch", "hey"); err == nil {
		t.Fatalf("expected error for unknown session")
	}
}

func TestWakeRejectsWhenRateLimited(t *testing.T) {
	root := t.TempDir()
	seedSession(t, root, "dddd4444", "")
	for i := 0; i < rateCap; i++ {
		if _, err := inbox.CheckRateLimit(root, "dddd4444", rateCap); err != nil {
			t.Fatalf("CheckRateLimit: %v", err)
		}
	}
	if err := Wake(root, "dddd4444", "hey"); err == nil {
		t.Fatalf("expected rate-limit error")
	}
}
