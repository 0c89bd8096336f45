// Package staging manages the converter's staging directories and enforces
// single-conversion exclusivity over them.
package staging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"gearbox/internal/logging"
)

// LockFileName is the advisory lock file placed beside the converter.
const LockFileName = ".gearbox.lock"

// ErrBusy indicates the staging area is already held by a conversion, either
// in this process or another one.
var ErrBusy = errors.New("staging area busy: a conversion is already running")

// Guard serializes access to the converter's staging directories. The atomic
// flag blocks concurrent use inside the process; the file lock blocks other
// processes sharing the same converter install.
type Guard struct {
	lockPath string
	lock     *flock.Flock
	busy     atomic.Bool
}

// NewGuard returns a Guard locking within converterDir.
func NewGuard(converterDir string) *Guard {
	lockPath := filepath.Join(converterDir, LockFileName)
	return &Guard{
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
}

// Acquire claims the staging area and returns a release function. It fails
// with ErrBusy when another conversion holds the area.
func (g *Guard) Acquire() (func(), error) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	ok, err := g.lock.TryLock()
	if err != nil {
		g.busy.Store(false)
		return nil, fmt.Errorf("acquire staging lock: %w", err)
	}
	if !ok {
		g.busy.Store(false)
		return nil, ErrBusy
	}

	return func() {
		_ = g.lock.Unlock()
		g.busy.Store(false)
	}, nil
}

// LockPath returns the lock file location.
func (g *Guard) LockPath() string {
	return g.lockPath
}

// Clear removes the contents of dir while keeping the directory itself, so
// each conversion starts from an empty staging area. A missing directory is
// created instead.
func Clear(dir string, logger *slog.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dir, 0o755)
		}
		return fmt.Errorf("read staging dir: %w", err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("clear staging entry %s: %w", entry.Name(), err)
		}
		if logger != nil {
			logger.Debug("removed staging entry", logging.String("path", path))
		}
	}
	return nil
}

// RemoveStrayEE deletes loose .ee files sitting directly in dir. The
// converter drops intermediates beside its executable; leaving them behind
// pollutes the next run's output scan.
func RemoveStrayEE(dir string, logger *slog.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read converter dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".ee") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("remove stray file %s: %w", entry.Name(), err)
		}
		removed++
		if logger != nil {
			logger.Debug("removed stray converter output", logging.String("path", path))
		}
	}
	return removed, nil
}
