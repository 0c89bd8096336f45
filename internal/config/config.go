package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"gearbox/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory configuration.
type Paths struct {
	ConverterPath    string `toml:"converter_path"`
	VehiclesDir      string `toml:"vehicles_dir"`
	StagingInputDir  string `toml:"staging_input_dir"`
	StagingPackedDir string `toml:"staging_packed_dir"`
	StagingWorkDir   string `toml:"staging_work_dir"`
	LogDir           string `toml:"log_dir"`
}

// Converter contains timing configuration for the external EasiEdit process.
type Converter struct {
	TimeoutSeconds int `toml:"timeout"`
	SettleSeconds  int `toml:"settle"`
	PollMillis     int `toml:"poll_interval_ms"`
}

// Deploy contains configuration for installing packed files over originals.
type Deploy struct {
	BackupSuffix string `toml:"backup_suffix"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for gearbox.
//
// Configuration sections by subsystem:
//   - Paths: converter executable, vehicles root, staging directories, logs
//   - Converter: external process timeout and output polling cadence
//   - Deploy: backup naming
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Converter Converter `toml:"converter"`
	Deploy    Deploy    `toml:"deploy"`
	Logging   Logging   `toml:"logging"`
}

// LoadResult reports where the configuration came from and whether the file
// had to be discarded as unreadable.
type LoadResult struct {
	Path    string
	Exists  bool
	Warning string
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/gearbox/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. An unparsable file is
// not fatal: defaults are returned and the parse failure is reported through
// LoadResult.Warning so startup can proceed.
func Load(path string) (*Config, LoadResult, error) {
	cfg := Default()
	result := LoadResult{}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, result, err
	}
	result.Path = resolvedPath
	result.Exists = exists

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, result, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			cfg = Default()
			result.Warning = services.Wrap(services.ErrPersistence, "config", "parse",
				fmt.Sprintf("ignoring unreadable settings file %s, using defaults", resolvedPath), err).Error()
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, result, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, result, err
	}

	return &cfg, result, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("gearbox.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ConverterDir returns the directory containing the converter executable.
func (c *Config) ConverterDir() string {
	if strings.TrimSpace(c.Paths.ConverterPath) == "" {
		return ""
	}
	return filepath.Dir(c.Paths.ConverterPath)
}

// LogFilePath returns the application log file location under the log dir.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "gearbox.log")
}

// RequireConverter verifies the converter executable is configured and present.
// It is called by operations before any filesystem mutation begins.
func (c *Config) RequireConverter() error {
	path := strings.TrimSpace(c.Paths.ConverterPath)
	if path == "" {
		return services.Wrap(services.ErrConfiguration, "config", "converter",
			"converter_path is not set; add it to "+describeConfigPath(), nil)
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return services.Wrap(services.ErrConfiguration, "config", "converter",
			fmt.Sprintf("converter executable %s not found; fix converter_path in %s", path, describeConfigPath()), err)
	}
	return nil
}

// RequireVehicles verifies the vehicles root directory is configured and present.
func (c *Config) RequireVehicles() error {
	dir := strings.TrimSpace(c.Paths.VehiclesDir)
	if dir == "" {
		return services.Wrap(services.ErrConfiguration, "config", "vehicles",
			"vehicles_dir is not set; add it to "+describeConfigPath(), nil)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return services.Wrap(services.ErrConfiguration, "config", "vehicles",
			fmt.Sprintf("vehicles directory %s not found; fix vehicles_dir in %s", dir, describeConfigPath()), err)
	}
	return nil
}

// RequireStaging verifies the staging directories are configured. They are
// derived from converter_path during normalization, so an empty value means
// the converter location was never set. Operations that read or write staging
// without launching the converter call this before touching the filesystem.
func (c *Config) RequireStaging() error {
	for _, dir := range []string{c.Paths.StagingInputDir, c.Paths.StagingPackedDir, c.Paths.StagingWorkDir} {
		if strings.TrimSpace(dir) == "" {
			return services.Wrap(services.ErrConfiguration, "config", "staging",
				"staging directories are not configured; set converter_path in "+describeConfigPath(), nil)
		}
	}
	return nil
}

func describeConfigPath() string {
	path, err := DefaultConfigPath()
	if err != nil {
		return "~/.config/gearbox/config.toml"
	}
	return path
}

// EnsureDirectories creates the log directory and, when the converter path is
// known, the staging directories the converter works through.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	for _, dir := range []string{c.Paths.StagingInputDir, c.Paths.StagingPackedDir, c.Paths.StagingWorkDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
