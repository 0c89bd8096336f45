// Package backup copies original vehicle files aside before deployment
// overwrites them.
package backup

import (
	"errors"
	"os"
	"time"

	"gearbox/internal/fileutil"
	"gearbox/internal/services"
)

// File describes a backup copy of an original file.
type File struct {
	OriginalPath string
	BackupPath   string
	CreatedAt    time.Time
	// Existing is true when the backup predates this call and was left as-is.
	Existing bool
}

// Manager derives backup paths from a fixed suffix and performs the copies.
type Manager struct {
	suffix string
}

// NewManager returns a Manager appending suffix to original paths.
func NewManager(suffix string) *Manager {
	return &Manager{suffix: suffix}
}

// BackupPath returns the derived backup location for an original file.
func (m *Manager) BackupPath(originalPath string) string {
	return originalPath + m.suffix
}

// EnsureBackup copies originalPath aside unless a backup already exists. An
// existing backup is never overwritten, so the oldest known-good original is
// what a later restore brings back. The copy is written to a temporary name
// and renamed into place so a crash cannot leave a truncated backup.
func (m *Manager) EnsureBackup(originalPath string) (File, error) {
	info, err := os.Stat(originalPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return File{}, services.Wrap(services.ErrMissingSource, "backup", "ensure", "original file not found: "+originalPath, err)
		}
		return File{}, services.Wrap(services.ErrBackup, "backup", "ensure", "stat original", err)
	}
	if info.IsDir() {
		return File{}, services.Wrap(services.ErrBackup, "backup", "ensure", "original is a directory: "+originalPath, nil)
	}

	backupPath := m.BackupPath(originalPath)
	if existing, err := os.Stat(backupPath); err == nil {
		if existing.IsDir() {
			return File{}, services.Wrap(services.ErrBackup, "backup", "ensure", "backup path occupied by a directory: "+backupPath, nil)
		}
		return File{
			OriginalPath: originalPath,
			BackupPath:   backupPath,
			CreatedAt:    existing.ModTime(),
			Existing:     true,
		}, nil
	}

	if err := fileutil.CopyFileAtomic(originalPath, backupPath); err != nil {
		return File{}, services.Wrap(services.ErrBackup, "backup", "ensure", "copy original aside", err)
	}
	return File{
		OriginalPath: originalPath,
		BackupPath:   backupPath,
		CreatedAt:    time.Now(),
	}, nil
}
