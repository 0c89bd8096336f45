package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gearbox/internal/tuning"
)

func newTuneCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "tune [vehicle]",
		Short: "Apply the performance preset to unpacked vehicle XML",
		Long: "Rewrites the tuning values (top speed, nitro, turbo jump) in the\n" +
			"vehicle_misc XML of an unpacked vehicle folder. Run `gearbox unpack`\n" +
			"first and `gearbox pack` after.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return fmt.Errorf("specify either a vehicle name or --all")
			}

			cfg, err := ctx.configValue()
			if err != nil {
				return err
			}
			if err := cfg.RequireStaging(); err != nil {
				return err
			}

			targetDir := cfg.Paths.StagingInputDir
			label := "all unpacked vehicles"
			if !all {
				targetDir = filepath.Join(cfg.Paths.StagingInputDir, args[0])
				label = args[0]
				if _, err := os.Stat(targetDir); err != nil {
					return fmt.Errorf("no unpacked folder for %s; run `gearbox unpack %s` first", args[0], args[0])
				}
			}

			result, err := tuning.ApplyDir(targetDir, tuning.QuickMods)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.FilesChanged == 0 {
				fmt.Fprintf(out, "No vehicle_misc files found for %s; nothing tuned.\n", label)
				return nil
			}
			fmt.Fprintf(out, "Tuned %s: %d value(s) across %d file(s)\n",
				label, result.ValuesChanged, result.FilesChanged)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Tune every unpacked vehicle folder")
	return cmd
}
