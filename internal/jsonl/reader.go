// Package jsonl provides the bounded line/byte-capped JSONL reader used
// by the inbox service and the conflict detector (C4).
package jsonl

import (
	"bytes"
	"encoding/json"
	"os"
)

// Defaults matching spec.md §4.4.
const (
	DefaultMaxBytes = 256 * 1024
	DefaultMaxLines = 500
)

// Result is what Read returns: parsed items (unparseable lines are
// skipped, not reported as an error), whether either cap fired, and the
// total number of newline-delimited lines seen (post byte-truncation).
type Result struct {
	Items     []json.RawMessage
	Truncated bool
	Total     int
}

// Read reads path, enforces maxBytes (truncating from the tail if
// exceeded — keeping the most recent data, since every caller wants
// recent activity first), splits on newlines, enforces maxLines (keeping
// the last maxLines lines), and parses each line as JSON, skipping
// unparseable ones. A missing file is reported as an empty, non-
// truncated Result rather than an error (spec.md's error-handling design:
// unreadable JSON is swallowed at read sites).
func Read(path string, maxBytes, maxLines int) (*Result, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Result{}, nil
		}
		return &Result{}, nil
	}

	truncatedBytes := false
	if len(data) > maxBytes {
		data = data[len(data)-maxBytes:]
		truncatedBytes = true
		// Drop a possibly-partial first line left over from truncation.
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			data = data[i+1:]
		}
	}

	lines := bytes.Split(bytes.TrimRight(data, "\n"), []byte("\n"))
	if len(lines) == 1 && len(lines[0]) == 0 {
		lines = nil
	}

	total := len(lines)
	truncatedLines := false
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
		truncatedLines = true
	}

	items := make([]json.RawMessage, 0, len(lines))
	for _, line := range lines {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			continue
		}
		items = append(items, json.RawMessage(append([]byte(nil), line...)))
	}

	return &Result{
		Items:     items,
		Truncated: truncatedBytes || truncatedLines,
		Total:     total,
	}, nil
}

// ReadInto behaves like Read but unmarshals each line into a freshly
// allocated *T, skipping lines that don't match T's shape (counted the
// same as unparseable JSON — both are "skip, don't fail").
func ReadInto[T any](path string, maxBytes, maxLines int) ([]*T, bool, error) {
	res, err := Read(path, maxBytes, maxLines)
	if err != nil {
		return nil, false, err
	}
	out := make([]*T, 0, len(res.Items))
	for _, raw := range res.Items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		out = append(out, &v)
	}
	return out, res.Truncated, nil
}
