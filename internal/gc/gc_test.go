package gc

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fernglen/crewdeck/internal/session"
	"github.com/fernglen/crewdeck/internal/statepath"
)

func touch(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-age)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}
}

func TestRunRemovesStaleSessionPastTTL(t *testing.T) {
	root := t.TempDir()
	r := &session.Record{Session: "old1", Status: session.StatusStale, CWD: t.TempDir(), Started: time.Now(), LastActive: time.Now()}
	if err := r.Save(root); err != nil {
		t.Fatal(err)
	}
	path := r.Path(root)
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	r2 := &session.Record{Session: "active1", Status: session.StatusActive, CWD: t.TempDir(), Started: time.Now(), LastActive: time.Now()}
	if err := r2.Save(root); err != nil {
		t.Fatal(err)
	}

	c := Run(root, 24*time.Hour, time.Now())
	if c.Sessions != 1 {
		t.Fatalf("Sessions removed = %d, want 1", c.Sessions)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected stale session file removed")
	}
	if _, err := os.Stat(r2.Path(root)); err != nil {
		t.Fatalf("active session should survive: %v", err)
	}
}

func TestRunKeepsSessionsWithinTTL(t *testing.T) {
	root := t.TempDir()
	r := &session.Record{Session: "recent1", Status: session.StatusClosed, CWD: t.TempDir(), Started: time.Now(), LastActive: time.Now()}
	if err := r.Save(root); err != nil {
		t.Fatal(err)
	}
	c := Run(root, 24*time.Hour, time.Now())
	if c.Sessions != 0 {
		t.Fatalf("Sessions removed = %d, want 0 (within TTL)", c.Sessions)
	}
}

func TestRunRemovesCompletedWorkerArtifactSet(t *testing.T) {
	root := t.TempDir()
	dir := statepath.ResultsDir(root)
	taskID := "T1"
	touch(t, filepath.Join(dir, taskID+".meta.json"), 48*time.Hour)
	touch(t, filepath.Join(dir, taskID+".meta.json.done"), 48*time.Hour)
	touch(t, filepath.Join(dir, taskID+".txt"), 48*time.Hour)
	touch(t, filepath.Join(dir, taskID+".prompt"), 48*time.Hour)
	touch(t, filepath.Join(dir, taskID+".worker.sh"), 48*time.Hour)

	c := Run(root, 24*time.Hour, time.Now())
	if c.Workers != 1 {
		t.Fatalf("Workers removed = %d, want 1", c.Workers)
	}
	for _, ext := range []string{".meta.json", ".meta.json.done", ".txt", ".prompt", ".worker.sh"} {
		if _, err := os.Stat(filepath.Join(dir, taskID+ext)); !os.IsNotExist(err) {
			t.Fatalf("expected %s removed", ext)
		}
	}
}

func TestRunSkipsRunningWorker(t *testing.T) {
	root := t.TempDir()
	dir := statepath.ResultsDir(root)
	taskID := "T2"
	touch(t, filepath.Join(dir, taskID+".meta.json"), 1*time.Hour)

	c := Run(root, 24*time.Hour, time.Now())
	if c.Workers != 0 {
		t.Fatalf("Workers removed = %d, want 0 (no done marker)", c.Workers)
	}
	if _, err := os.Stat(filepath.Join(dir, taskID+".meta.json")); err != nil {
		t.Fatalf("running worker meta should survive: %v", err)
	}
}

func TestRunRemovesFinishedPipelineDirPastTTL(t *testing.T) {
	root := t.TempDir()
	dir := statepath.PipelineDir(root, "P1")
	touch(t, filepath.Join(dir, "pipeline.done"), 48*time.Hour)
	touch(t, filepath.Join(dir, "pipeline.meta.json"), 48*time.Hour)

	c := Run(root, 24*time.Hour, time.Now())
	if c.Pipelines != 1 {
		t.Fatalf("Pipelines removed = %d, want 1", c.Pipelines)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected pipeline dir removed")
	}
}

func TestRunOnceOnlyRunsFirstCall(t *testing.T) {
	ranThisBootMu.Lock()
	ranThisBoot = false
	ranThisBootMu.Unlock()

	root := t.TempDir()
	r := &session.Record{Session: "old2", Status: session.StatusStale, CWD: t.TempDir(), Started: time.Now(), LastActive: time.Now()}
	if err := r.Save(root); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(r.Path(root), old, old); err != nil {
		t.Fatal(err)
	}

	c1 := RunOnce(root, 24*time.Hour)
	if c1.Sessions != 1 {
		t.Fatalf("first RunOnce Sessions = %d, want 1", c1.Sessions)
	}

	r2 := &session.Record{Session: "old3", Status: session.StatusStale, CWD: t.TempDir(), Started: time.Now(), LastActive: time.Now()}
	if err := r2.Save(root); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(r2.Path(root), old, old); err != nil {
		t.Fatal(err)
	}
	c2 := RunOnce(root, 24*time.Hour)
	if c2.Sessions != 0 {
		t.Fatalf("second RunOnce should be a no-op, got Sessions = %d", c2.Sessions)
	}
}
