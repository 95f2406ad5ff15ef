package session

import (
	"testing"
	"time"
)

func TestDeriveActiveIdleStale(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name   string
		rec    Record
		want   Status
	}{
		{"fresh is active", Record{LastActive: now.Add(-10 * time.Second)}, StatusActive},
		{"mid age is idle", Record{LastActive: now.Add(-300 * time.Second)}, StatusIdle},
		{"old age is stale", Record{LastActive: now.Add(-700 * time.Second)}, StatusStale},
		{"no last_active is unknown", Record{}, StatusUnknown},
		{"persisted closed sticks", Record{Status: StatusClosed, LastActive: now}, StatusClosed},
		{"persisted stale sticks", Record{Status: StatusStale, LastActive: now}, StatusStale},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Derive(&c.rec, now); got != c.want {
				t.Fatalf("Derive() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestPushFileTouchedDedupsAndBounds(t *testing.T) {
	r := &Record{}
	for i := 0; i < MaxFilesTouched+5; i++ {
		r.PushFileTouched("/p/a")
		r.PushFileTouched("/p/b")
	}
	if len(r.FilesTouched) != 2 {
		t.Fatalf("len = %d, want 2 after dedup", len(r.FilesTouched))
	}
	if r.FilesTouched[len(r.FilesTouched)-1] != "/p/b" {
		t.Fatalf("last entry = %q, want /p/b", r.FilesTouched[len(r.FilesTouched)-1])
	}
}

func TestPushFileTouchedBoundsLength(t *testing.T) {
	r := &Record{}
	for i := 0; i < MaxFilesTouched+10; i++ {
		r.PushFileTouched(string(rune('a' + i%26)))
	}
	if len(r.FilesTouched) > MaxFilesTouched {
		t.Fatalf("len = %d, want <= %d", len(r.FilesTouched), MaxFilesTouched)
	}
}

func TestPushRecentOpBoundsLength(t *testing.T) {
	r := &Record{}
	for i := 0; i < MaxRecentOps+5; i++ {
		r.PushRecentOp(Op{Tool: "Edit"})
	}
	if len(r.RecentOps) != MaxRecentOps {
		t.Fatalf("len = %d, want %d", len(r.RecentOps), MaxRecentOps)
	}
}

func TestIsPlanArtifact(t *testing.T) {
	if !IsPlanArtifact("/home/u/proj/PLAN.md") {
		t.Fatalf("expected PLAN.md to match")
	}
	if IsPlanArtifact("/home/u/proj/main.go") {
		t.Fatalf("did not expect main.go to match")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	r := &Record{Session: "abcd1234", Status: StatusActive, SchemaVersion: SchemaVersion, LastActive: time.Now()}
	if err := r.Save(root); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(root, "abcd1234")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil || loaded.Session != "abcd1234" {
		t.Fatalf("loaded = %+v", loaded)
	}
}

func TestLoadMissingReturnsNilNoError(t *testing.T) {
	r, err := Load(t.TempDir(), "nosuch01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != nil {
		t.Fatalf("expected nil record for missing session")
	}
}
