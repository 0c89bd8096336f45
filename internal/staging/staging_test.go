package staging_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gearbox/internal/staging"
	"gearbox/internal/testsupport"
)

func TestGuardBlocksSecondAcquire(t *testing.T) {
	guard := staging.NewGuard(t.TempDir())

	release, err := guard.Acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	if _, err := guard.Acquire(); !errors.Is(err, staging.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	release()

	release2, err := guard.Acquire()
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}

func TestClearEmptiesDirectoryButKeepsIt(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "car_a", "car_a.ee"), "x")
	testsupport.WriteFile(t, filepath.Join(dir, "loose.xml"), "x")

	if err := staging.Clear(dir, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, got %d entries", len(entries))
	}
}

func TestClearCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "absent")
	if err := staging.Clear(dir, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory created, err=%v", err)
	}
}

func TestRemoveStrayEE(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "intermediate.ee"), "x")
	testsupport.WriteFile(t, filepath.Join(dir, "EasiEdit.exe"), "x")
	testsupport.WriteFile(t, filepath.Join(dir, "To Edit", "nested.ee"), "x")

	removed, err := staging.RemoveStrayEE(dir, nil)
	if err != nil {
		t.Fatalf("remove stray: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, "EasiEdit.exe")); err != nil {
		t.Fatalf("non-ee file removed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "To Edit", "nested.ee")); err != nil {
		t.Fatalf("nested file should survive: %v", err)
	}
}
