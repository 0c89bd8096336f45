package config

import (
	"path/filepath"
	"strings"
)

// normalize expands and cleans all configured paths and derives the staging
// directories from the converter's location when they are not set explicitly.
func (c *Config) normalize() error {
	var err error

	c.Paths.ConverterPath = strings.TrimSpace(c.Paths.ConverterPath)
	if c.Paths.ConverterPath != "" {
		if c.Paths.ConverterPath, err = expandPath(c.Paths.ConverterPath); err != nil {
			return err
		}
	}

	c.Paths.VehiclesDir = strings.TrimSpace(c.Paths.VehiclesDir)
	if c.Paths.VehiclesDir != "" {
		if c.Paths.VehiclesDir, err = expandPath(c.Paths.VehiclesDir); err != nil {
			return err
		}
	}

	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return err
	}

	converterDir := c.ConverterDir()
	if c.Paths.StagingInputDir, err = normalizeStagingDir(c.Paths.StagingInputDir, converterDir, stagingInputName); err != nil {
		return err
	}
	if c.Paths.StagingPackedDir, err = normalizeStagingDir(c.Paths.StagingPackedDir, converterDir, stagingPackedName); err != nil {
		return err
	}
	if c.Paths.StagingWorkDir, err = normalizeStagingDir(c.Paths.StagingWorkDir, converterDir, stagingWorkName); err != nil {
		return err
	}

	c.Deploy.BackupSuffix = strings.TrimSpace(c.Deploy.BackupSuffix)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

func normalizeStagingDir(value, converterDir, defaultName string) (string, error) {
	value = strings.TrimSpace(value)
	if value != "" {
		return expandPath(value)
	}
	if converterDir == "" {
		return "", nil
	}
	return filepath.Join(converterDir, defaultName), nil
}
