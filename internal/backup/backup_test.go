package backup_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gearbox/internal/backup"
	"gearbox/internal/services"
	"gearbox/internal/testsupport"
)

func TestEnsureBackupCopiesOnce(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "car.ee")
	testsupport.WriteFile(t, original, "pristine")

	mgr := backup.NewManager(".backup")
	first, err := mgr.EnsureBackup(original)
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if first.Existing {
		t.Fatal("first backup should not report Existing")
	}
	if got := testsupport.ReadFile(t, first.BackupPath); got != "pristine" {
		t.Fatalf("backup content = %q, want pristine", got)
	}

	// Mutate the original; a second ensure must not refresh the backup.
	testsupport.WriteFile(t, original, "modified")
	second, err := mgr.EnsureBackup(original)
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if !second.Existing {
		t.Fatal("second backup should report Existing")
	}
	if got := testsupport.ReadFile(t, second.BackupPath); got != "pristine" {
		t.Fatalf("backup overwritten: got %q, want pristine", got)
	}
}

func TestEnsureBackupMissingOriginal(t *testing.T) {
	mgr := backup.NewManager(".backup")
	_, err := mgr.EnsureBackup(filepath.Join(t.TempDir(), "absent.ee"))
	if !errors.Is(err, services.ErrMissingSource) {
		t.Fatalf("expected ErrMissingSource, got %v", err)
	}
}

func TestBackupPathUsesConfiguredSuffix(t *testing.T) {
	mgr := backup.NewManager(".orig")
	if got := mgr.BackupPath("/tmp/car.ee"); got != "/tmp/car.ee.orig" {
		t.Fatalf("backup path = %q", got)
	}
}

func TestRestoreAllOverwritesExistingOriginals(t *testing.T) {
	root := t.TempDir()
	original := filepath.Join(root, "01_land", "car_a", "car_a.ee")
	testsupport.WriteFile(t, original, "pristine")

	mgr := backup.NewManager(".backup")
	if _, err := mgr.EnsureBackup(original); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	testsupport.WriteFile(t, original, "deployed mod")

	result, err := mgr.RestoreAll(root)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(result.Restored) != 1 || len(result.Failed) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if got := testsupport.ReadFile(t, original); got != "pristine" {
		t.Fatalf("original = %q, want pristine", got)
	}
	if _, err := os.Stat(original + ".backup"); err != nil {
		t.Fatalf("backup removed by restore: %v", err)
	}
}

func TestRestoreAllSkipsOrphanedBackups(t *testing.T) {
	root := t.TempDir()
	orphan := filepath.Join(root, "01_land", "car_b", "car_b.ee.backup")
	testsupport.WriteFile(t, orphan, "pristine")

	mgr := backup.NewManager(".backup")
	result, err := mgr.RestoreAll(root)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(result.Restored) != 0 {
		t.Fatalf("unexpected restores %v", result.Restored)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != orphan {
		t.Fatalf("expected orphan skipped, got %+v", result.Skipped)
	}
}
