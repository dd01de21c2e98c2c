package logging

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

const sampleLog = `{"time":"2026-01-02T10:00:02Z","level":"WARN","msg":"dispatch failed","session_id":"abc123","slot":2,"model":"k2","phase":"debate","reason":"timeout"}
not json at all
{"time":"2026-01-02T10:00:01Z","level":"INFO","msg":"phase changed","session_id":"abc123","phase":"private","to":"debate"}
{"time":"2026-01-02T10:00:03Z","level":"DEBUG","msg":"context assembled","session_id":"zzz999","slot":1,"model":"gpt"}
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, LogFileName), []byte(sampleLog), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestReadEntries(t *testing.T) {
	entries, err := ReadEntries(writeSample(t))
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Message != "phase changed" {
		t.Errorf("entries not sorted by time: first = %q", entries[0].Message)
	}
	if entries[1].Slot != 2 || entries[1].Model != "k2" {
		t.Errorf("slot fields not parsed: %+v", entries[1])
	}
	if entries[1].Attrs["reason"] != "timeout" {
		t.Errorf("extra attrs not kept: %v", entries[1].Attrs)
	}
}

func TestReadEntries_Missing(t *testing.T) {
	if _, err := ReadEntries(t.TempDir()); err == nil {
		t.Error("ReadEntries on empty dir should fail")
	}
}

func TestFilter_Apply(t *testing.T) {
	entries, err := ReadEntries(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"empty", Filter{}, 3},
		{"min level", Filter{MinLevel: "info"}, 2},
		{"session prefix", Filter{SessionID: "abc"}, 2},
		{"slot", Filter{Slot: 1}, 1},
		{"since", Filter{Since: time.Date(2026, 1, 2, 10, 0, 2, 0, time.UTC)}, 2},
		{"pattern", Filter{Pattern: regexp.MustCompile("fail")}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(tt.filter.Apply(entries)); got != tt.want {
				t.Errorf("Apply() returned %d entries, want %d", got, tt.want)
			}
		})
	}
}

func TestEntry_Format(t *testing.T) {
	e := Entry{
		Time:    time.Date(2026, 1, 2, 10, 0, 2, 0, time.UTC),
		Level:   "WARN",
		Message: "dispatch failed",
		Slot:    2,
		Model:   "k2",
		Phase:   "debate",
		Attrs:   map[string]any{"reason": "timeout"},
	}
	got := e.Format()
	for _, want := range []string{"10:00:02.000", "WARN", "[debate]", "[slot 2 k2]", "dispatch failed", "reason=timeout"} {
		if !strings.Contains(got, want) {
			t.Errorf("Format() = %q, missing %q", got, want)
		}
	}
}
