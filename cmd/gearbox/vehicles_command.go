package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gearbox/internal/status"
	"gearbox/internal/vehicles"
)

func newVehiclesCommand(ctx *commandContext) *cobra.Command {
	var typeFilter string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "vehicles",
		Short: "List vehicle folders and their deployment state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configValue()
			if err != nil {
				return err
			}
			if err := cfg.RequireVehicles(); err != nil {
				return err
			}

			var types []string
			if typeFilter != "" {
				types = append(types, typeFilter)
			}
			list, err := vehicles.Discover(cfg.Paths.VehiclesDir, types...)
			if err != nil {
				return fmt.Errorf("scan vehicles: %w", err)
			}

			records := make(map[string]status.Record)
			storeErr := ctx.withStore(cmd.ErrOrStderr(), func(store *status.Store) error {
				loaded, err := store.Load(cmd.Context())
				if err != nil {
					return err
				}
				records = loaded
				return nil
			})
			if storeErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: deployment records unavailable: %v\n", storeErr)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				type entry struct {
					Name     string   `json:"name"`
					Type     string   `json:"type"`
					Files    []string `json:"files"`
					Deployed bool     `json:"deployed"`
				}
				payload := make([]entry, 0, len(list))
				for _, vehicle := range list {
					payload = append(payload, entry{
						Name:     vehicle.Name,
						Type:     vehicle.Type,
						Files:    vehicle.Files,
						Deployed: records[vehicle.Name].Deployed,
					})
				}
				return printJSON(out, payload)
			}

			if len(list) == 0 {
				fmt.Fprintln(out, "No vehicles found.")
				return nil
			}

			rows := make([][]string, 0, len(list))
			for _, vehicle := range list {
				rows = append(rows, []string{
					vehicle.Name,
					vehicle.Type,
					strconv.Itoa(len(vehicle.Files)),
					yesNo(records[vehicle.Name].Deployed),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Vehicle", "Type", "Files", "Deployed"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFilter, "type", "t", "", "Only list vehicles of this type folder (e.g. 01_land)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}
