package proc

import (
	"os"
	"strconv"
	"testing"
)

func TestParsePIDRejectsNonInteger(t *testing.T) {
	if _, err := ParsePID("abc"); err == nil {
		t.Fatalf("expected error for non-integer pid")
	}
}

func TestParsePIDRejectsNonPositive(t *testing.T) {
	for _, s := range []string{"0", "-1"} {
		if _, err := ParsePID(s); err == nil {
			t.Fatalf("expected error for pid %q", s)
		}
	}
}

func TestParsePIDAcceptsPositive(t *testing.T) {
	pid, err := ParsePID("42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pid != 42 {
		t.Fatalf("pid = %d, want 42", pid)
	}
}

func TestIsAliveMalformedReturnsFalse(t *testing.T) {
	if IsAlive("not-a-pid") {
		t.Fatalf("expected malformed pid to be treated as not alive")
	}
}

func TestIsAliveSelf(t *testing.T) {
	self := strconv.Itoa(os.Getpid())
	if !IsAlive(self) {
		t.Fatalf("expected own process to be alive")
	}
}

func TestKillRejectsMalformedPID(t *testing.T) {
	if err := Kill("nope"); err == nil {
		t.Fatalf("expected error for malformed pid")
	}
}
