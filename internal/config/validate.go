package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is structurally usable. Existence of the
// converter executable and vehicles root is deliberately not checked here;
// operations verify those lazily via RequireConverter and RequireVehicles.
func (c *Config) Validate() error {
	if err := c.validateConverter(); err != nil {
		return err
	}
	if err := c.validateDeploy(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateConverter() error {
	if c.Converter.TimeoutSeconds <= 0 {
		return errors.New("converter.timeout must be positive (seconds)")
	}
	if c.Converter.SettleSeconds < 0 {
		return errors.New("converter.settle must be >= 0 (seconds)")
	}
	if c.Converter.PollMillis <= 0 {
		return errors.New("converter.poll_interval_ms must be positive")
	}
	if c.Converter.SettleSeconds >= c.Converter.TimeoutSeconds {
		return errors.New("converter.settle must be smaller than converter.timeout")
	}
	return nil
}

func (c *Config) validateDeploy() error {
	suffix := c.Deploy.BackupSuffix
	if suffix == "" {
		return errors.New("deploy.backup_suffix must be set")
	}
	if !strings.HasPrefix(suffix, ".") {
		return fmt.Errorf("deploy.backup_suffix %q must start with a dot", suffix)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
