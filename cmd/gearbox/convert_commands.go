package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gearbox/internal/vehicles"
)

func newUnpackCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unpack <vehicle | ee-file...>",
		Short: "Convert vehicle definition files to editable XML",
		Long: "Runs the converter against a vehicle's .ee files, or one or more .ee\n" +
			"files given by path. The XML output lands in the converter's staging\n" +
			"area for editing and repacking.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.newConverter()
			if err != nil {
				return err
			}
			opCtx := ctx.operationContext(cmd)
			out := cmd.OutOrStdout()

			if strings.EqualFold(filepath.Ext(args[0]), ".ee") {
				paths := make([]string, 0, len(args))
				for _, arg := range args {
					if !strings.EqualFold(filepath.Ext(arg), ".ee") {
						return fmt.Errorf("cannot mix vehicle names and .ee files: %q", arg)
					}
					path, err := filepath.Abs(strings.TrimSpace(arg))
					if err != nil {
						return err
					}
					paths = append(paths, path)
				}
				result, err := client.UnpackAll(opCtx, paths)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Unpacked %d file(s): %d XML files\n", len(paths), len(result.XMLFiles))
				return nil
			}

			if len(args) != 1 {
				return fmt.Errorf("unpack takes one vehicle name or a list of .ee files")
			}
			target := strings.TrimSpace(args[0])

			cfg, err := ctx.configValue()
			if err != nil {
				return err
			}
			if err := cfg.RequireVehicles(); err != nil {
				return err
			}
			known, err := vehicles.Discover(cfg.Paths.VehiclesDir)
			if err != nil {
				return fmt.Errorf("scan vehicles: %w", err)
			}
			vehicle := vehicles.Find(known, target)
			if vehicle == nil {
				return fmt.Errorf("unknown vehicle %q; run `gearbox vehicles` to list them", target)
			}
			if len(vehicle.Files) == 0 {
				return fmt.Errorf("vehicle %s has no .ee files", vehicle.Name)
			}

			paths := make([]string, 0, len(vehicle.Files))
			for _, name := range vehicle.Files {
				paths = append(paths, filepath.Join(vehicle.Dir, name))
			}
			result, err := client.UnpackAll(opCtx, paths)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Unpacked %s: %d XML files across %d folders\n",
				vehicle.Name, len(result.XMLFiles), len(result.VehicleDirs))
			fmt.Fprintf(out, "Edit the XML under %s, then run `gearbox pack %s`.\n",
				cfg.Paths.StagingInputDir, vehicle.Name)
			return nil
		},
	}
	return cmd
}

func newPackCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "pack [vehicle]",
		Short: "Convert edited XML back into deployable definition files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return fmt.Errorf("specify either a vehicle name or --all")
			}

			client, err := ctx.newConverter()
			if err != nil {
				return err
			}
			opCtx := ctx.operationContext(cmd)

			var outputs []vehicles.OutputFile
			if all {
				result, err := client.PackAll(opCtx)
				if err != nil {
					return err
				}
				outputs = result.Outputs
			} else {
				result, err := client.Pack(opCtx, args[0])
				if err != nil {
					return err
				}
				outputs = result.Outputs
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Packed %d file(s):\n", len(outputs))
			for _, output := range outputs {
				fmt.Fprintf(out, "  %s\n", output.Name)
			}
			fmt.Fprintln(out, "Run `gearbox deploy` to install them.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Pack every unpacked vehicle folder")
	return cmd
}
