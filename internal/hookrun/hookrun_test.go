package hookrun

import (
	"os"
	"testing"
	"time"

	"github.com/fernglen/crewdeck/internal/session"
	"github.com/fernglen/crewdeck/internal/statepath"
)

func payload(sid, cwd, tool, file string) Payload {
	p := Payload{SessionID: sid, CWD: cwd, ToolName: tool}
	p.ToolInput.FilePath = file
	return p
}

func TestRegisterWritesSessionAndEvent(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	title, err := Register(root, payload("abcd1234efgh", "/p/proj", "", ""), now)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if title == "" {
		t.Fatalf("expected a terminal title escape sequence")
	}
	r, err := session.Load(root, "abcd1234")
	if err != nil || r == nil {
		t.Fatalf("expected session record, got %v, err=%v", r, err)
	}
	if r.Project != "proj" {
		t.Fatalf("project = %q, want proj", r.Project)
	}
}

func TestRegisterRejectsShortSessionID(t *testing.T) {
	root := t.TempDir()
	if _, err := Register(root, payload("short", "/p", "", ""), time.Now()); err == nil {
		t.Fatalf("expected Blocked error for short session id")
	}
}

func TestHeartbeatUpdatesToolCountsAndFilesTouched(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	if _, err := Register(root, payload("abcd1234", "/p/proj", "", ""), now); err != nil {
		t.Fatal(err)
	}
	if err := Heartbeat(root, payload("abcd1234", "/p/proj", "Write", "/p/proj/a.go"), now.Add(time.Second)); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	r, err := session.Load(root, "abcd1234")
	if err != nil || r == nil {
		t.Fatalf("Load: %v", err)
	}
	if r.ToolCounts["Write"] != 1 {
		t.Fatalf("tool_counts[Write] = %d, want 1", r.ToolCounts["Write"])
	}
	if len(r.FilesTouched) != 1 || r.FilesTouched[0] != "/p/proj/a.go" {
		t.Fatalf("files_touched = %v", r.FilesTouched)
	}
}

func TestHeartbeatFallbackCreatesSessionWithSource(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	if err := Heartbeat(root, payload("zzzz9999", "/p/proj", "Read", ""), now); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	r, err := session.Load(root, "zzzz9999")
	if err != nil || r == nil {
		t.Fatalf("expected fallback record, got %v, err=%v", r, err)
	}
	if r.Source != "heartbeat-fallback" {
		t.Fatalf("source = %q, want heartbeat-fallback", r.Source)
	}
}

func TestEndClosesSession(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	if _, err := Register(root, payload("abcd1234", "/p", "", ""), now); err != nil {
		t.Fatal(err)
	}
	if err := End(root, payload("abcd1234", "/p", "", ""), now.Add(time.Minute)); err != nil {
		t.Fatalf("End: %v", err)
	}
	r, err := session.Load(root, "abcd1234")
	if err != nil || r == nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Status != session.StatusClosed {
		t.Fatalf("status = %q, want closed", r.Status)
	}
}

func TestConflictAdviseFindsOverlap(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	other := &session.Record{Session: "bbbb2222", Status: session.StatusActive, LastActive: now, FilesTouched: []string{"/p/src/x.ts"}}
	if err := other.Save(root); err != nil {
		t.Fatal(err)
	}
	mine := &session.Record{Session: "aaaa1111", Status: session.StatusActive, LastActive: now}
	if err := mine.Save(root); err != nil {
		t.Fatal(err)
	}

	warning := ConflictAdvise(root, payload("aaaa1111", "/p", "Edit", "/p/src/x.ts"), now)
	if warning == "" {
		t.Fatalf("expected a conflict warning")
	}
}

// TestInboxSurfaceCrashSafety implements scenario S1 from spec.md §8.2.
func TestInboxSurfaceCrashSafety(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(statepath.InboxDir(root), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(statepath.InboxFile(root, "abcd1234"), []byte(`{"from":"lead","content":"hi"}`+"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := InboxSurface(root, payload("abcd1234", "/p", "", ""))
	if err != nil {
		t.Fatalf("InboxSurface: %v", err)
	}
	if !contains(out, "hi") {
		t.Fatalf("expected output to contain %q, got %q", "hi", out)
	}
	if _, err := os.Stat(statepath.InboxFile(root, "abcd1234")); !os.IsNotExist(err) {
		t.Fatalf("expected original inbox file to be gone")
	}

	out2, err := InboxSurface(root, payload("abcd1234", "/p", "", ""))
	if err != nil {
		t.Fatalf("InboxSurface (again): %v", err)
	}
	if out2 != "" {
		t.Fatalf("expected empty output on second drain, got %q", out2)
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && (func() bool {
		for i := 0; i+len(needle) <= len(haystack); i++ {
			if haystack[i:i+len(needle)] == needle {
				return true
			}
		}
		return false
	})()
}
