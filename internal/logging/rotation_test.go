package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingWriter_Rotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LogFileName)

	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer rw.Close()

	chunk := []byte(strings.Repeat("x", 600*1024))
	for i := 0; i < 3; i++ {
		if _, err := rw.Write(chunk); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("expected backup .1: %v", err)
	}
	if _, err := os.Stat(path + ".2"); err != nil {
		t.Errorf("expected backup .2: %v", err)
	}
	if rw.Size() != int64(len(chunk)) {
		t.Errorf("Size() = %d, want %d", rw.Size(), len(chunk))
	}
}

func TestRotatingWriter_NoBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LogFileName)

	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1, MaxBackups: 0})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer rw.Close()

	chunk := []byte(strings.Repeat("y", 700*1024))
	for i := 0; i < 2; i++ {
		if _, err := rw.Write(chunk); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Errorf("no backup expected, stat err = %v", err)
	}
	if rw.Size() != int64(len(chunk)) {
		t.Errorf("Size() = %d, want %d", rw.Size(), len(chunk))
	}
}

func TestRotatingWriter_Disabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), LogFileName)
	rw, err := NewRotatingWriter(path, RotationConfig{})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := rw.Write([]byte("line\n")); err != nil {
			t.Fatal(err)
		}
	}
	if err := rw.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := rw.Write([]byte("late")); err == nil {
		t.Error("Write after Close should fail")
	}
	if rw.Path() != path {
		t.Errorf("Path() = %q, want %q", rw.Path(), path)
	}
}
