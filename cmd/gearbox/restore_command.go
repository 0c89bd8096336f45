package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gearbox/internal/backup"
	"gearbox/internal/status"
)

func newRestoreCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore original vehicle files from backups",
		Long: "Walks the vehicles tree and copies every backup over its deployed\n" +
			"counterpart. Backups are kept so restore can run again; deployment\n" +
			"records are cleared since nothing modded remains installed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configValue()
			if err != nil {
				return err
			}
			if err := cfg.RequireVehicles(); err != nil {
				return err
			}

			mgr := backup.NewManager(cfg.Deploy.BackupSuffix)
			result, err := mgr.RestoreAll(cfg.Paths.VehiclesDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(result.Restored) == 0 && len(result.Skipped) == 0 && len(result.Failed) == 0 {
				fmt.Fprintln(out, "No backups found; nothing to restore.")
				return nil
			}

			for path, failErr := range result.Failed {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed to restore %s: %v\n", path, failErr)
			}
			fmt.Fprintf(out, "Restored %d file(s)", len(result.Restored))
			if len(result.Skipped) > 0 {
				fmt.Fprintf(out, ", skipped %d orphaned backup(s)", len(result.Skipped))
			}
			fmt.Fprintln(out)

			if len(result.Restored) > 0 {
				if err := ctx.withStore(cmd.ErrOrStderr(), func(store *status.Store) error {
					_, clearErr := store.Clear(cmd.Context())
					return clearErr
				}); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not clear deployment records: %v\n", err)
				}
			}

			if len(result.Failed) > 0 {
				return fmt.Errorf("%d backup(s) failed to restore", len(result.Failed))
			}
			return nil
		},
	}
	return cmd
}
