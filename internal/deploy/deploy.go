// Package deploy installs packed converter outputs into the game's vehicle
// folders, backing up originals and recording completion per vehicle.
package deploy

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gearbox/internal/backup"
	"gearbox/internal/config"
	"gearbox/internal/fileutil"
	"gearbox/internal/logging"
	"gearbox/internal/services"
	"gearbox/internal/status"
	"gearbox/internal/vehicles"
)

// Outcome states for a single vehicle in a deployment batch.
const (
	OutcomeDeployed = "deployed"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// VehicleResult is the per-vehicle entry of a deployment report.
type VehicleResult struct {
	Vehicle string
	Outcome string
	Reason  string
	Files   []string
}

// Report enumerates what a deployment batch did. Output files that matched no
// known vehicle are listed rather than dropped.
type Report struct {
	Results   []VehicleResult
	Unmatched []vehicles.OutputFile
}

// Deployed counts vehicles that fully deployed.
func (r Report) Deployed() int { return r.count(OutcomeDeployed) }

// Skipped counts vehicles with nothing to deploy.
func (r Report) Skipped() int { return r.count(OutcomeSkipped) }

// Failed counts vehicles whose deployment aborted.
func (r Report) Failed() int { return r.count(OutcomeFailed) }

func (r Report) count(outcome string) int {
	n := 0
	for _, result := range r.Results {
		if result.Outcome == outcome {
			n++
		}
	}
	return n
}

// Deployer pairs packed outputs with vehicle folders and installs them.
type Deployer struct {
	cfg     *config.Config
	backups *backup.Manager
	store   *status.Store
	logger  *slog.Logger
}

// New constructs a Deployer. The store may be nil, in which case completion
// state is not persisted.
func New(cfg *config.Config, store *status.Store, logger *slog.Logger) *Deployer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Deployer{
		cfg:     cfg,
		backups: backup.NewManager(cfg.Deploy.BackupSuffix),
		store:   store,
		logger:  logging.NewComponentLogger(logger, "deploy"),
	}
}

// Deploy installs outputs for the requested vehicles. An empty request
// deploys every vehicle that has outputs waiting. One vehicle's failure never
// aborts the rest of the batch.
func (d *Deployer) Deploy(ctx context.Context, vehicleIDs []string) (Report, error) {
	if err := d.cfg.RequireVehicles(); err != nil {
		return Report{}, err
	}
	if err := d.cfg.RequireStaging(); err != nil {
		return Report{}, err
	}

	known, err := vehicles.Discover(d.cfg.Paths.VehiclesDir)
	if err != nil {
		return Report{}, services.Wrap(services.ErrExternalTool, "deploy", "discover", "scan vehicles tree", err)
	}
	outputs, err := vehicles.ScanOutputs(d.cfg.Paths.StagingPackedDir)
	if err != nil {
		return Report{}, services.Wrap(services.ErrExternalTool, "deploy", "scan", "scan packed outputs", err)
	}

	assignment := vehicles.Assign(outputs, known)
	report := Report{Unmatched: assignment.Unmatched}

	requested := vehicleIDs
	if len(requested) == 0 {
		for name := range assignment.ByVehicle {
			requested = append(requested, name)
		}
		sort.Strings(requested)
	}

	for _, vehicleID := range requested {
		vctx := services.WithVehicle(ctx, vehicleID)
		result := d.deployOne(vctx, vehicleID, known, assignment.ByVehicle[vehicleID])
		report.Results = append(report.Results, result)
	}
	return report, nil
}

func (d *Deployer) deployOne(ctx context.Context, vehicleID string, known []vehicles.Vehicle, outputs []vehicles.OutputFile) VehicleResult {
	logger := logging.WithContext(ctx, d.logger)

	target := vehicles.Find(known, vehicleID)
	if target == nil {
		logger.Warn("unknown vehicle requested")
		return VehicleResult{Vehicle: vehicleID, Outcome: OutcomeFailed, Reason: "unknown vehicle"}
	}
	if len(outputs) == 0 {
		logger.Info("nothing to deploy")
		return VehicleResult{Vehicle: vehicleID, Outcome: OutcomeSkipped, Reason: "no output files"}
	}

	var deployed []string
	for _, output := range outputs {
		targetPath := filepath.Join(target.Dir, output.Name)

		if _, statErr := os.Stat(targetPath); statErr == nil {
			if _, backupErr := d.backups.EnsureBackup(targetPath); backupErr != nil {
				logger.Error("backup failed, leaving original untouched",
					logging.String("file", output.Name),
					logging.Error(backupErr))
				return VehicleResult{Vehicle: vehicleID, Outcome: OutcomeFailed, Reason: "backup error: " + backupErr.Error()}
			}
		} else if !errors.Is(statErr, os.ErrNotExist) {
			logger.Error("target not readable", logging.String("file", output.Name), logging.Error(statErr))
			return VehicleResult{Vehicle: vehicleID, Outcome: OutcomeFailed, Reason: "target error: " + statErr.Error()}
		}

		// Move the staged output into place; rename is atomic on the same
		// filesystem and the fallback copy is temp+rename.
		if copyErr := fileutil.ReplaceFile(output.Path, targetPath); copyErr != nil {
			logger.Error("install failed", logging.String("file", output.Name), logging.Error(copyErr))
			return VehicleResult{Vehicle: vehicleID, Outcome: OutcomeFailed, Reason: "install error: " + copyErr.Error()}
		}
		deployed = append(deployed, output.Name)
	}

	if d.store != nil {
		record := status.Record{
			Vehicle:    vehicleID,
			Deployed:   true,
			DeployedAt: time.Now().UTC(),
			Files:      deployed,
		}
		if err := d.store.Upsert(ctx, record); err != nil {
			// Files are installed; a persistence failure downgrades to a
			// warning instead of undoing the deployment.
			logger.Warn("failed to persist deployment record", logging.Error(err))
		}
	}

	logger.Info("vehicle deployed", logging.Int("files", len(deployed)))
	return VehicleResult{Vehicle: vehicleID, Outcome: OutcomeDeployed, Files: deployed}
}
