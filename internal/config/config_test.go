package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gearbox/internal/services"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, result, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if result.Exists {
		t.Fatal("file should not exist")
	}
	if result.Warning != "" {
		t.Fatalf("unexpected warning %q", result.Warning)
	}
	if cfg.Converter.TimeoutSeconds != defaultTimeoutSeconds {
		t.Fatalf("expected default timeout, got %d", cfg.Converter.TimeoutSeconds)
	}
	if cfg.Deploy.BackupSuffix != ".backup" {
		t.Fatalf("expected default backup suffix, got %q", cfg.Deploy.BackupSuffix)
	}
}

func TestLoadCorruptFileDegradesToDefaults(t *testing.T) {
	path := writeConfig(t, "this is { not toml ]]")
	cfg, result, err := Load(path)
	if err != nil {
		t.Fatalf("corrupt settings must not be fatal: %v", err)
	}
	if result.Warning == "" {
		t.Fatal("expected a warning about the unreadable file")
	}
	if !strings.Contains(result.Warning, "persistence error") {
		t.Fatalf("warning should carry the persistence marker: %q", result.Warning)
	}
	if cfg.Converter.TimeoutSeconds != defaultTimeoutSeconds {
		t.Fatalf("expected defaults after corrupt load, got timeout %d", cfg.Converter.TimeoutSeconds)
	}
}

func TestLoadParsesAndExpands(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	path := writeConfig(t, `
[paths]
converter_path = "~/protato/EasiEdit.exe"
vehicles_dir = "~/dropzone/vehicles"

[converter]
timeout = 60
`)
	cfg, _, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Paths.ConverterPath != filepath.Join(home, "protato", "EasiEdit.exe") {
		t.Fatalf("converter path not expanded: %q", cfg.Paths.ConverterPath)
	}
	if cfg.Converter.TimeoutSeconds != 60 {
		t.Fatalf("timeout override lost: %d", cfg.Converter.TimeoutSeconds)
	}
}

func TestStagingDirsDerivedFromConverter(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "EasiEdit.exe")
	path := writeConfig(t, "[paths]\nconverter_path = \""+exe+"\"\n")

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Paths.StagingInputDir != filepath.Join(dir, "To Edit") {
		t.Fatalf("staging input dir: %q", cfg.Paths.StagingInputDir)
	}
	if cfg.Paths.StagingPackedDir != filepath.Join(dir, "Packed Files") {
		t.Fatalf("staging packed dir: %q", cfg.Paths.StagingPackedDir)
	}
	if cfg.Paths.StagingWorkDir != filepath.Join(dir, "Unpacked Files") {
		t.Fatalf("staging work dir: %q", cfg.Paths.StagingWorkDir)
	}
}

func TestStagingDirOverrideWins(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "EasiEdit.exe")
	custom := filepath.Join(dir, "custom-packed")
	path := writeConfig(t,
		"[paths]\nconverter_path = \""+exe+"\"\nstaging_packed_dir = \""+custom+"\"\n")

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Paths.StagingPackedDir != custom {
		t.Fatalf("override lost: %q", cfg.Paths.StagingPackedDir)
	}
	if cfg.Paths.StagingInputDir != filepath.Join(dir, "To Edit") {
		t.Fatalf("derived dir lost: %q", cfg.Paths.StagingInputDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"zero timeout", func(c *Config) { c.Converter.TimeoutSeconds = 0 }, "converter.timeout"},
		{"settle exceeds timeout", func(c *Config) { c.Converter.SettleSeconds = 99 }, "converter.settle"},
		{"empty backup suffix", func(c *Config) { c.Deploy.BackupSuffix = "" }, "backup_suffix"},
		{"suffix without dot", func(c *Config) { c.Deploy.BackupSuffix = "bak" }, "backup_suffix"},
		{"bad format", func(c *Config) { c.Logging.Format = "yaml" }, "logging.format"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.normalize(); err != nil {
				t.Fatal(err)
			}
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Fatalf("error %q should mention %q", err.Error(), tc.message)
			}
		})
	}
}

func TestRequireConverter(t *testing.T) {
	cfg := Default()
	err := cfg.RequireConverter()
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	dir := t.TempDir()
	exe := filepath.Join(dir, "EasiEdit.exe")
	if err := os.WriteFile(exe, []byte("MZ"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg.Paths.ConverterPath = exe
	if err := cfg.RequireConverter(); err != nil {
		t.Fatalf("converter present, got %v", err)
	}

	cfg.Paths.ConverterPath = filepath.Join(dir, "gone.exe")
	if err := cfg.RequireConverter(); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing exe, got %v", err)
	}
}

func TestRequireVehicles(t *testing.T) {
	cfg := Default()
	if err := cfg.RequireVehicles(); !errors.Is(err, services.ErrConfiguration) {
		t.Fatal("expected configuration error when unset")
	}
	cfg.Paths.VehiclesDir = t.TempDir()
	if err := cfg.RequireVehicles(); err != nil {
		t.Fatalf("vehicles dir present, got %v", err)
	}
}

func TestRequireStaging(t *testing.T) {
	cfg := Default()
	if err := cfg.RequireStaging(); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error with no converter set, got %v", err)
	}

	dir := t.TempDir()
	cfg.Paths.ConverterPath = filepath.Join(dir, "EasiEdit.exe")
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	if err := cfg.RequireStaging(); err != nil {
		t.Fatalf("staging derived from converter, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "converter_path") {
		t.Fatal("sample should document converter_path")
	}
}
