package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Default()
	if *c != *want {
		t.Fatalf("Load(missing) = %+v, want defaults %+v", c, want)
	}
}

func TestLoadOverridesSelectedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
agent_binary = "codex"
rate_limit_per_min = 30
gc_ttl = "1h"
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.AgentBinary != "codex" {
		t.Fatalf("AgentBinary = %q, want codex", c.AgentBinary)
	}
	if c.RateLimitPerMin != 30 {
		t.Fatalf("RateLimitPerMin = %d, want 30", c.RateLimitPerMin)
	}
	if c.GCTTL.Duration() != time.Hour {
		t.Fatalf("GCTTL = %v, want 1h", c.GCTTL.Duration())
	}
	// Untouched fields keep their defaults.
	if c.LockTimeout.Duration() != Default().LockTimeout.Duration() {
		t.Fatalf("LockTimeout changed unexpectedly: %v", c.LockTimeout.Duration())
	}
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`gc_ttl = "not-a-duration"`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed duration")
	}
}
