package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRealExistsReturnsFalseForMissingPath(t *testing.T) {
	t.Parallel()

	real := NewReal()
	dir := t.TempDir()

	exists, err := real.Exists(filepath.Join(dir, "does-not-exist.db"))
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}

	if exists {
		t.Fatal("expected exists=false for a path that was never created")
	}
}

func TestRealExistsReturnsTrueForFile(t *testing.T) {
	t.Parallel()

	real := NewReal()
	path := filepath.Join(t.TempDir(), "jinn.db")

	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	exists, err := real.Exists(path)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}

	if !exists {
		t.Fatal("expected exists=true for a file that was just created")
	}
}

// TestRealOpenFileCreatesThenReopensWithoutTruncating creates a file through
// OpenFile, then reopens it with O_RDWR alone (the flag ensureFileExists
// opens a block file with) and checks the earlier content is still there.
func TestRealOpenFileCreatesThenReopensWithoutTruncating(t *testing.T) {
	t.Parallel()

	real := NewReal()
	path := filepath.Join(t.TempDir(), "jinn.db")

	f, err := real.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	if _, err := f.Write([]byte("block-0")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := real.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		t.Fatalf("reopen OpenFile: %v", err)
	}
	defer reopened.Close()

	buf := make([]byte, len("block-0"))
	if _, err := reopened.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}

	if string(buf) != "block-0" {
		t.Fatalf("got %q, want %q", buf, "block-0")
	}
}

func TestRealRenameMovesFile(t *testing.T) {
	t.Parallel()

	real := NewReal()
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "copy.tmp")
	newPath := filepath.Join(dir, "copy.db")

	if err := os.WriteFile(oldPath, []byte("payload"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := real.Rename(oldPath, newPath); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	if exists, _ := real.Exists(oldPath); exists {
		t.Fatal("expected the old path to be gone after Rename")
	}

	if exists, _ := real.Exists(newPath); !exists {
		t.Fatal("expected the new path to exist after Rename")
	}
}

func TestRealRemoveDeletesFile(t *testing.T) {
	t.Parallel()

	real := NewReal()
	path := filepath.Join(t.TempDir(), "jinn.db")

	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := real.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	_, err := os.Stat(path)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected the file to be gone, stat err=%v", err)
	}
}
