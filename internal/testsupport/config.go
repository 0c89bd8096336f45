package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"gearbox/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	converterDir := filepath.Join(base, "easiedit")
	cfgVal.Paths.ConverterPath = filepath.Join(converterDir, "EasiEdit.exe")
	cfgVal.Paths.VehiclesDir = filepath.Join(base, "vehicles")
	cfgVal.Paths.StagingInputDir = filepath.Join(converterDir, "To Edit")
	cfgVal.Paths.StagingPackedDir = filepath.Join(converterDir, "Packed Files")
	cfgVal.Paths.StagingWorkDir = filepath.Join(converterDir, "Unpacked Files")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithConverterStub writes a stub executable at the configured converter path
// so existence checks pass.
func WithConverterStub() ConfigOption {
	return func(b *configBuilder) {
		if err := os.MkdirAll(filepath.Dir(b.cfg.Paths.ConverterPath), 0o755); err != nil {
			b.t.Fatalf("mkdir converter dir: %v", err)
		}
		if err := os.WriteFile(b.cfg.Paths.ConverterPath, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			b.t.Fatalf("write converter stub: %v", err)
		}
	}
}

// WithBackupSuffix overrides the backup suffix on the test config.
func WithBackupSuffix(suffix string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Deploy.BackupSuffix = suffix
	}
}

// WithConverterTimeout overrides the conversion timeout on the test config.
func WithConverterTimeout(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Converter.TimeoutSeconds = seconds
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.VehiclesDir)
}
