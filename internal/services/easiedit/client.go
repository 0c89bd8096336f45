// Package easiedit drives Protato's EasiEdit converter as a background
// process. The converter has no command line interface: it is launched in its
// install directory, fed a newline on stdin, and picks up work from staging
// directories beside the executable. Success is inferred from output files
// appearing, never from the exit status.
package easiedit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gearbox/internal/config"
	"gearbox/internal/fileutil"
	"gearbox/internal/logging"
	"gearbox/internal/services"
	"gearbox/internal/staging"
	"gearbox/internal/vehicles"
)

// ParkedDirName is the holding directory beside the converter where sibling
// vehicle folders wait out a single-vehicle pack. It is never cleared by
// staging maintenance, so edits parked by an interrupted run survive until
// the next pack sweeps them back.
const ParkedDirName = ".gearbox-parked"

// Executor abstracts converter process execution for testability.
type Executor interface {
	Run(ctx context.Context, exePath, workDir string) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps converter interactions around the staging directories.
type Client struct {
	cfg    *config.Config
	guard  *staging.Guard
	logger *slog.Logger
	exec   Executor

	timeout time.Duration
	settle  time.Duration
	poll    time.Duration
}

// UnpackResult reports the XML files produced by an unpack run.
type UnpackResult struct {
	XMLFiles []string
	// VehicleDirs are the per-vehicle folders created under the work area.
	VehicleDirs []string
}

// PackResult reports the packed definition files produced by a pack run.
type PackResult struct {
	Outputs []vehicles.OutputFile
}

// New constructs a converter client from configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("easiedit client requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	client := &Client{
		cfg:     cfg,
		guard:   staging.NewGuard(cfg.ConverterDir()),
		logger:  logging.NewComponentLogger(logger, "easiedit"),
		exec:    commandExecutor{},
		timeout: time.Duration(cfg.Converter.TimeoutSeconds) * time.Second,
		settle:  time.Duration(cfg.Converter.SettleSeconds) * time.Second,
		poll:    time.Duration(cfg.Converter.PollMillis) * time.Millisecond,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// UnpackFile converts a single .ee file into editable XML. The file is copied
// into the converter's directory, the converter runs, and the produced XML
// tree is reported from the input staging area.
func (c *Client) UnpackFile(ctx context.Context, eeFilePath string) (UnpackResult, error) {
	if !strings.EqualFold(filepath.Ext(eeFilePath), ".ee") {
		return UnpackResult{}, services.Wrap(services.ErrMissingSource, "easiedit", "unpack", "not an ee file: "+eeFilePath, nil)
	}
	return c.unpack(ctx, []string{eeFilePath})
}

// UnpackAll converts every .ee file of a vehicle folder in one converter run.
func (c *Client) UnpackAll(ctx context.Context, eeFilePaths []string) (UnpackResult, error) {
	if len(eeFilePaths) == 0 {
		return UnpackResult{}, services.Wrap(services.ErrMissingSource, "easiedit", "unpack", "no ee files given", nil)
	}
	return c.unpack(ctx, eeFilePaths)
}

func (c *Client) unpack(ctx context.Context, eeFilePaths []string) (UnpackResult, error) {
	if err := c.cfg.RequireConverter(); err != nil {
		return UnpackResult{}, err
	}

	release, err := c.guard.Acquire()
	if err != nil {
		return UnpackResult{}, err
	}
	defer release()

	if err := staging.Clear(c.cfg.Paths.StagingInputDir, c.logger); err != nil {
		return UnpackResult{}, services.Wrap(services.ErrExternalTool, "easiedit", "unpack", "clear input staging", err)
	}
	if err := staging.Clear(c.cfg.Paths.StagingWorkDir, c.logger); err != nil {
		return UnpackResult{}, services.Wrap(services.ErrExternalTool, "easiedit", "unpack", "clear work staging", err)
	}

	converterDir := c.cfg.ConverterDir()
	var seeded []string
	defer func() {
		for _, path := range seeded {
			_ = os.Remove(path)
		}
		if _, cleanupErr := staging.RemoveStrayEE(converterDir, c.logger); cleanupErr != nil {
			c.logger.Warn("stray output cleanup failed", logging.Error(cleanupErr))
		}
	}()

	for _, src := range eeFilePaths {
		if _, statErr := os.Stat(src); statErr != nil {
			return UnpackResult{}, services.Wrap(services.ErrMissingSource, "easiedit", "unpack", "source file not found: "+src, statErr)
		}
		dst := filepath.Join(converterDir, filepath.Base(src))
		if copyErr := fileutil.CopyFileVerified(src, dst); copyErr != nil {
			return UnpackResult{}, services.Wrap(services.ErrExternalTool, "easiedit", "unpack", "stage input file", copyErr)
		}
		seeded = append(seeded, dst)
	}

	logging.WithContext(ctx, c.logger).Info("starting unpack", logging.Int("files", len(eeFilePaths)))

	started := time.Now()
	if err := c.runAndWait(ctx, func() (int, error) {
		files, scanErr := findXMLFiles(c.cfg.Paths.StagingInputDir)
		return len(files), scanErr
	}); err != nil {
		return UnpackResult{}, err
	}

	xmlFiles, err := findXMLFiles(c.cfg.Paths.StagingInputDir)
	if err != nil {
		return UnpackResult{}, services.Wrap(services.ErrExternalTool, "easiedit", "unpack", "scan converted output", err)
	}
	dirs, err := vehicleDirs(c.cfg.Paths.StagingInputDir)
	if err != nil {
		return UnpackResult{}, services.Wrap(services.ErrExternalTool, "easiedit", "unpack", "list vehicle folders", err)
	}

	c.logger.Info("unpack complete",
		logging.Int("xml_files", len(xmlFiles)),
		logging.Int("vehicles", len(dirs)),
		logging.Duration("elapsed", time.Since(started)))
	return UnpackResult{XMLFiles: xmlFiles, VehicleDirs: dirs}, nil
}

// Pack converts the XML folder of one vehicle back into .ee files. The folder
// must already sit in the input staging area; other folders are moved into a
// holding directory for the duration of the run so only the requested vehicle
// is packed.
func (c *Client) Pack(ctx context.Context, vehicleName string) (PackResult, error) {
	if err := c.cfg.RequireConverter(); err != nil {
		return PackResult{}, err
	}

	release, err := c.guard.Acquire()
	if err != nil {
		return PackResult{}, err
	}
	defer release()

	inputDir := c.cfg.Paths.StagingInputDir
	if err := recoverParked(c.parkedDir(), inputDir, c.logger); err != nil {
		return PackResult{}, services.Wrap(services.ErrExternalTool, "easiedit", "pack", "recover parked folders", err)
	}

	vehicleDir := filepath.Join(inputDir, vehicleName)
	if _, statErr := os.Stat(vehicleDir); statErr != nil {
		return PackResult{}, services.Wrap(services.ErrMissingSource, "easiedit", "pack", "no unpacked folder for "+vehicleName, statErr)
	}

	parked, err := parkOtherFolders(inputDir, c.parkedDir(), vehicleName)
	if err != nil {
		return PackResult{}, services.Wrap(services.ErrExternalTool, "easiedit", "pack", "isolate vehicle folder", err)
	}
	defer func() {
		if restoreErr := unparkFolders(parked); restoreErr != nil {
			c.logger.Warn("failed to restore parked staging folders", logging.Error(restoreErr))
		}
	}()

	return c.pack(ctx)
}

// PackAll converts every XML folder in the input staging area in one run.
func (c *Client) PackAll(ctx context.Context) (PackResult, error) {
	if err := c.cfg.RequireConverter(); err != nil {
		return PackResult{}, err
	}

	release, err := c.guard.Acquire()
	if err != nil {
		return PackResult{}, err
	}
	defer release()

	if err := recoverParked(c.parkedDir(), c.cfg.Paths.StagingInputDir, c.logger); err != nil {
		return PackResult{}, services.Wrap(services.ErrExternalTool, "easiedit", "pack", "recover parked folders", err)
	}

	dirs, err := vehicleDirs(c.cfg.Paths.StagingInputDir)
	if err != nil {
		return PackResult{}, services.Wrap(services.ErrExternalTool, "easiedit", "pack", "list vehicle folders", err)
	}
	if len(dirs) == 0 {
		return PackResult{}, services.Wrap(services.ErrMissingSource, "easiedit", "pack", "no unpacked folders to convert", nil)
	}

	return c.pack(ctx)
}

func (c *Client) pack(ctx context.Context) (PackResult, error) {
	if err := staging.Clear(c.cfg.Paths.StagingPackedDir, c.logger); err != nil {
		return PackResult{}, services.Wrap(services.ErrExternalTool, "easiedit", "pack", "clear packed staging", err)
	}

	logging.WithContext(ctx, c.logger).Info("starting pack")

	started := time.Now()
	if err := c.runAndWait(ctx, func() (int, error) {
		outputs, scanErr := vehicles.ScanOutputs(c.cfg.Paths.StagingPackedDir)
		return len(outputs), scanErr
	}); err != nil {
		return PackResult{}, err
	}

	outputs, err := vehicles.ScanOutputs(c.cfg.Paths.StagingPackedDir)
	if err != nil {
		return PackResult{}, services.Wrap(services.ErrExternalTool, "easiedit", "pack", "scan packed output", err)
	}
	if len(outputs) == 0 {
		return PackResult{}, services.Wrap(services.ErrConversionTimeout, "easiedit", "pack", "converter produced no packed files", nil)
	}

	c.logger.Info("pack complete",
		logging.Int("outputs", len(outputs)),
		logging.Duration("elapsed", time.Since(started)))
	return PackResult{Outputs: outputs}, nil
}

// runAndWait launches the converter and polls countOutputs until results
// appear and hold steady for the settle window. The converter's exit status
// is ignored; the process is never killed on cancellation, only abandoned, so
// a mid-write file cannot be truncated by us.
func (c *Client) runAndWait(ctx context.Context, countOutputs func() (int, error)) error {
	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		done <- c.exec.Run(runCtx, c.cfg.Paths.ConverterPath, c.cfg.ConverterDir())
	}()

	var (
		lastCount  int
		settledFor time.Duration
	)
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			count, err := countOutputs()
			if err == nil && count > 0 {
				// Timeout with outputs present is the converter's normal
				// ending; it never exits cleanly on its own.
				return nil
			}
			if ctx.Err() != nil {
				return services.Wrap(services.ErrTransient, "easiedit", "convert", "conversion cancelled", ctx.Err())
			}
			return services.Wrap(services.ErrConversionTimeout, "easiedit", "convert",
				fmt.Sprintf("no output after %s", c.timeout), runCtx.Err())
		case err := <-done:
			if err != nil {
				c.logger.Debug("converter exited", logging.Error(err))
			}
			// Give trailing writes the settle window before the final scan.
			time.Sleep(c.settle)
			count, scanErr := countOutputs()
			if scanErr != nil {
				return services.Wrap(services.ErrExternalTool, "easiedit", "convert", "scan output", scanErr)
			}
			if count == 0 {
				return services.Wrap(services.ErrConversionTimeout, "easiedit", "convert", "converter exited without producing output", nil)
			}
			return nil
		case <-ticker.C:
			count, scanErr := countOutputs()
			if scanErr != nil {
				continue
			}
			if count > 0 && count == lastCount {
				settledFor += c.poll
				if settledFor >= c.settle {
					return nil
				}
			} else {
				settledFor = 0
			}
			lastCount = count
		}
	}
}

func findXMLFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) && path == dir {
				return filepath.SkipAll
			}
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".xml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func vehicleDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(dir, entry.Name()))
		}
	}
	return dirs, nil
}

func (c *Client) parkedDir() string {
	return filepath.Join(c.cfg.ConverterDir(), ParkedDirName)
}

// recoverParked moves folders left behind by an interrupted pack back into
// the input staging area. A folder whose name is already taken there stays
// parked rather than overwriting newer work.
func recoverParked(holdDir, inputDir string, logger *slog.Logger) error {
	entries, err := os.ReadDir(holdDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		src := filepath.Join(holdDir, entry.Name())
		dst := filepath.Join(inputDir, entry.Name())
		if _, statErr := os.Stat(dst); statErr == nil {
			logger.Warn("parked folder conflicts with staging, leaving in place",
				logging.String("folder", entry.Name()))
			continue
		}
		if err := os.Rename(src, dst); err != nil {
			return err
		}
		logger.Info("recovered parked folder", logging.String("folder", entry.Name()))
	}
	return nil
}

// parkOtherFolders moves every folder except keep out of inputDir into a
// holding area so a single-vehicle pack only sees its own XML tree.
func parkOtherFolders(inputDir, holdDir, keep string) (map[string]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(holdDir, 0o755); err != nil {
		return nil, err
	}

	parked := make(map[string]string)
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == keep {
			continue
		}
		src := filepath.Join(inputDir, entry.Name())
		dst := filepath.Join(holdDir, entry.Name())
		if err := os.Rename(src, dst); err != nil {
			_ = unparkFolders(parked)
			return nil, err
		}
		parked[dst] = src
	}
	return parked, nil
}

func unparkFolders(parked map[string]string) error {
	var firstErr error
	for from, to := range parked {
		if err := os.Rename(from, to); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
