package worker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fernglen/crewdeck/internal/statepath"
)

func TestSpawnRejectsEmptyPrompt(t *testing.T) {
	root := t.TempDir()
	dir := t.TempDir()
	_, err := Spawn(root, Spec{Directory: dir, Prompt: "  "}, time.Now())
	if err == nil {
		t.Fatalf("expected error for empty prompt")
	}
}

func TestSpawnRejectsMissingDirectory(t *testing.T) {
	root := t.TempDir()
	_, err := Spawn(root, Spec{Directory: filepath.Join(root, "nope"), Prompt: "hi"}, time.Now())
	if err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestSpawnRejectsDuplicateTaskID(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(statepath.ResultsDir(root), 0700); err != nil {
		t.Fatal(err)
	}
	m := &Meta{TaskID: "T1", Status: StatusRunning}
	if err := m.Save(root); err != nil {
		t.Fatal(err)
	}
	_, err := Spawn(root, Spec{Directory: t.TempDir(), Prompt: "hi", TaskID: "T1"}, time.Now())
	if err == nil {
		t.Fatalf("expected error for duplicate task id")
	}
}

func TestGetResultNotFound(t *testing.T) {
	root := t.TempDir()
	if _, err := GetResult(root, "nosuch", 10); err == nil {
		t.Fatalf("expected error for unknown task")
	}
}

func TestKillWritesDoneMarkerWithoutPID(t *testing.T) {
	root := t.TempDir()
	m := &Meta{TaskID: "T2", Status: StatusRunning}
	if err := m.Save(root); err != nil {
		t.Fatal(err)
	}

	if err := Kill(root, "T2", time.Now()); err != nil {
		t.Fatalf("Kill: %v", err)
	}

	if _, err := os.Stat(statepath.WorkerDoneFile(root, "T2")); err != nil {
		t.Fatalf("expected done marker to exist: %v", err)
	}
	reloaded, err := LoadMeta(root, "T2")
	if err != nil || reloaded == nil {
		t.Fatalf("LoadMeta: %v", err)
	}
	if reloaded.Status != StatusCancelled {
		t.Fatalf("status = %q, want cancelled", reloaded.Status)
	}
}

func TestKillOnAlreadyCompletedIsNoop(t *testing.T) {
	root := t.TempDir()
	m := &Meta{TaskID: "T3", Status: StatusCompleted}
	if err := m.Save(root); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(statepath.WorkerDoneFile(root, "T3"), []byte(`{"status":"completed"}`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := Kill(root, "T3", time.Now()); err != nil {
		t.Fatalf("Kill: %v", err)
	}
}

func TestGetResultAfterKillReportsTerminal(t *testing.T) {
	root := t.TempDir()
	m := &Meta{TaskID: "T4", Status: StatusRunning}
	if err := m.Save(root); err != nil {
		t.Fatal(err)
	}
	if err := Kill(root, "T4", time.Now()); err != nil {
		t.Fatal(err)
	}
	res, err := GetResult(root, "T4", 10)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if res.Status != StatusCancelled {
		t.Fatalf("status = %q, want cancelled", res.Status)
	}
}
