package backup

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gearbox/internal/fileutil"
	"gearbox/internal/services"
)

// RestoreResult summarizes a restore pass over a vehicles tree.
type RestoreResult struct {
	Restored []string
	Skipped  []string
	Failed   map[string]error
}

// ListBackups walks root and returns every backup file path, sorted by the
// walk order (lexical within each directory).
func (m *Manager) ListBackups(root string) ([]string, error) {
	var backups []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), m.suffix) {
			backups = append(backups, path)
		}
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrBackup, "backup", "list", "walk vehicles tree", err)
	}
	return backups, nil
}

// RestoreAll copies every backup under root over its original file. Backups
// whose original no longer exists are skipped rather than recreated, and one
// failed restore does not stop the rest. Backup files themselves are kept.
func (m *Manager) RestoreAll(root string) (RestoreResult, error) {
	result := RestoreResult{Failed: make(map[string]error)}

	backups, err := m.ListBackups(root)
	if err != nil {
		return result, err
	}

	for _, backupPath := range backups {
		originalPath := strings.TrimSuffix(backupPath, m.suffix)
		if _, statErr := os.Stat(originalPath); statErr != nil {
			result.Skipped = append(result.Skipped, backupPath)
			continue
		}
		if copyErr := fileutil.CopyFileAtomic(backupPath, originalPath); copyErr != nil {
			result.Failed[backupPath] = copyErr
			continue
		}
		result.Restored = append(result.Restored, originalPath)
	}
	return result, nil
}
