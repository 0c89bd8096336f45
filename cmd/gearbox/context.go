package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"gearbox/internal/config"
	"gearbox/internal/logging"
	"gearbox/internal/services"
	"gearbox/internal/services/easiedit"
	"gearbox/internal/status"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	loadResult config.LoadResult
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensureConfig loads configuration once per invocation. A corrupt config file
// degrades to defaults with a warning on stderr rather than an error.
func (c *commandContext) ensureConfig(errOut io.Writer) (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, result, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if result.Warning != "" && errOut != nil {
			fmt.Fprintf(errOut, "warning: %s\n", result.Warning)
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.loadResult = result
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() (*config.Config, error) {
	return c.ensureConfig(nil)
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.configValue()
		if err != nil || cfg == nil {
			c.logger = logging.NewNop()
			return
		}
		logger, logErr := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			OutputPaths: []string{
				"stderr",
				cfg.LogFilePath(),
			},
		})
		if logErr != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// operationContext derives a request context carrying a fresh correlation ID.
func (c *commandContext) operationContext(cmd *cobra.Command) context.Context {
	return services.WithOperationID(cmd.Context(), services.NewOperationID())
}

// withStore opens the deployment record store for the duration of fn,
// surfacing a warning when a corrupt database was moved aside.
func (c *commandContext) withStore(errOut io.Writer, fn func(*status.Store) error) error {
	cfg, err := c.configValue()
	if err != nil {
		return err
	}
	store, err := status.Open(cfg)
	if err != nil {
		return fmt.Errorf("open deployment records: %w", err)
	}
	defer store.Close()

	if store.RecoveredFrom != "" && errOut != nil {
		fmt.Fprintf(errOut, "warning: deployment records were unreadable; moved aside to %s\n", store.RecoveredFrom)
	}
	return fn(store)
}

func (c *commandContext) newConverter() (*easiedit.Client, error) {
	cfg, err := c.configValue()
	if err != nil {
		return nil, err
	}
	return easiedit.New(cfg, c.ensureLogger())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
