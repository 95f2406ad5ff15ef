package jsonl

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func writeLines(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadBasic(t *testing.T) {
	path := writeLines(t, []string{`{"a":1}`, `{"a":2}`, `not json`, `{"a":3}`})
	res, err := Read(path, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 3 {
		t.Fatalf("expected 3 parsed items (skipping bad line), got %d", len(res.Items))
	}
	if res.Truncated {
		t.Fatalf("should not be truncated")
	}
}

func TestReadMissingFile(t *testing.T) {
	res, err := Read(filepath.Join(t.TempDir(), "nope.jsonl"), 0, 0)
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(res.Items) != 0 || res.Truncated {
		t.Fatalf("expected empty non-truncated result, got %+v", res)
	}
}

func TestReadLineCap(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = `{"i":` + strconv.Itoa(i) + `}`
	}
	path := writeLines(t, lines)
	res, err := Read(path, 0, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Truncated {
		t.Fatalf("expected truncation flag when line cap exceeded")
	}
	if len(res.Items) != 5 {
		t.Fatalf("expected 5 items (tail kept), got %d", len(res.Items))
	}
	// Tail kept means the last lines survive.
	if string(res.Items[len(res.Items)-1]) != `{"i":9}` {
		t.Fatalf("expected tail line to be the most recent, got %s", res.Items[len(res.Items)-1])
	}
}

func TestReadByteCap(t *testing.T) {
	line := `{"payload":"` + strings.Repeat("x", 100) + `"}`
	lines := make([]string, 20)
	for i := range lines {
		lines[i] = line
	}
	path := writeLines(t, lines)
	res, err := Read(path, 500, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Truncated {
		t.Fatalf("expected truncation flag when byte cap exceeded")
	}
}

func TestReadIntoTyped(t *testing.T) {
	type item struct {
		Name string `json:"name"`
	}
	path := writeLines(t, []string{`{"name":"a"}`, `{"name":"b"}`})
	items, truncated, err := ReadInto[item](path, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if truncated {
		t.Fatalf("should not be truncated")
	}
	if len(items) != 2 || items[0].Name != "a" || items[1].Name != "b" {
		t.Fatalf("unexpected items: %+v", items)
	}
}
