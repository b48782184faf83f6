package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLogExchangeWritesJSONLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.jsonl")
	l := NewLogger(DefaultConfig(path))
	defer l.Close()

	l.LogExchange("pod-1", "bolus", true, "", "")
	l.LogExchange("pod-1", "bolus", false, "POD_RESPONSE_UNEXPECTED", "pod still requests nonce resync after retry")

	entries := readEntries(t, path)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Outcome != "SUCCESS" {
		t.Fatalf("expected first entry SUCCESS, got %s", entries[0].Outcome)
	}
	if entries[1].Outcome != "FAILURE" || entries[1].ErrorKind != "POD_RESPONSE_UNEXPECTED" {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestLogOperationRecordsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.jsonl")
	l := NewLogger(DefaultConfig(path))
	defer l.Close()

	l.LogOperation("pod-2", "Pair", nil)
	l.LogOperation("pod-2", "Pair", errors.New("already paired"))

	entries := readEntries(t, path)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Outcome != "SUCCESS" {
		t.Fatalf("expected SUCCESS, got %s", entries[0].Outcome)
	}
	if entries[1].Outcome != "FAILURE" || entries[1].Detail != "already paired" {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestNilLoggerIsSafeNoOp(t *testing.T) {
	var l *Logger
	l.LogExchange("pod-3", "status", true, "", "")
	if err := l.Close(); err != nil {
		t.Fatalf("expected nil error from nil logger close, got %v", err)
	}
}

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("unmarshal entry: %v", err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return entries
}
