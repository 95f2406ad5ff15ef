package conflict

import (
	"strings"
	"testing"
	"time"

	"github.com/fernglen/crewdeck/internal/session"
)

func seed(t *testing.T, root, sid, cwd string, filesTouched []string) {
	t.Helper()
	r := &session.Record{Session: sid, Status: session.StatusActive, CWD: cwd, LastActive: time.Now(), FilesTouched: filesTouched}
	if err := r.Save(root); err != nil {
		t.Fatal(err)
	}
}

// TestDetectTwoSessions implements scenario S2.
func TestDetectTwoSessions(t *testing.T) {
	root := t.TempDir()
	seed(t, root, "aaaa1111", "/p", []string{"/p/src/x.ts"})
	seed(t, root, "bbbb2222", "/p", []string{"/p/src/x.ts", "/p/src/y.ts"})

	report, err := Detect(root, "aaaa1111", []string{"/p/src/x.ts"})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if report.Empty() {
		t.Fatalf("expected conflicts, got none")
	}
	found := false
	for _, o := range report.Overlaps {
		if o.Session == "bbbb2222" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected overlap with bbbb2222, got %+v", report.Overlaps)
	}
}

// TestDetectNoFalsePositiveAcrossProjects implements scenario S3.
func TestDetectNoFalsePositiveAcrossProjects(t *testing.T) {
	root := t.TempDir()
	seed(t, root, "p1sess01", "/p1", []string{"/p1/src/a.ts"})
	seed(t, root, "p2sess02", "/p2", []string{"/p2/src/a.ts"})

	report, err := Detect(root, "p1sess01", []string{"/p1/src/a.ts"})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if !report.Empty() {
		t.Fatalf("expected no conflicts, got %+v", report)
	}
}

// TestDetectDisjointFilesNoConflict implements property P6.
func TestDetectDisjointFilesNoConflict(t *testing.T) {
	root := t.TempDir()
	seed(t, root, "aaaa1111", "/p", []string{"/p/src/x.ts"})
	seed(t, root, "bbbb2222", "/p", []string{"/p/src/y.ts"})

	report, err := Detect(root, "aaaa1111", []string{"/p/src/z.ts"})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if !report.Empty() {
		t.Fatalf("expected no conflicts, got %+v", report)
	}
}

func TestDetectUnknownSessionErrors(t *testing.T) {
	root := t.TempDir()
	if _, err := Detect(root, "nosuch01", []string{"/p/a.ts"}); err == nil {
		t.Fatalf("expected error for unknown session")
	}
}

func TestReportRenderEmpty(t *testing.T) {
	r := &Report{}
	if got := r.Render(); got != "No conflicts detected" {
		t.Fatalf("Render() = %q, want %q", got, "No conflicts detected")
	}
}

func TestReportRenderNamesSessionAndFile(t *testing.T) {
	r := &Report{Overlaps: []SessionOverlap{{Session: "bbbb2222", Files: []string{"/p/src/x.ts"}}}}
	got := r.Render()
	if got == "No conflicts detected" {
		t.Fatalf("Render() returned the empty-case text for a non-empty report")
	}
	for _, want := range []string{"CONFLICTS DETECTED", "bbbb2222", "x.ts"} {
		if !strings.Contains(got, want) {
			t.Fatalf("Render() = %q, missing %q", got, want)
		}
	}
}
