package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gearbox/internal/status"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which vehicles have deployed mods",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.ErrOrStderr(), func(store *status.Store) error {
				records, err := store.Load(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if asJSON {
					return printJSON(out, records)
				}
				if len(records) == 0 {
					fmt.Fprintln(out, "No vehicles deployed.")
					return nil
				}

				names := make([]string, 0, len(records))
				for name := range records {
					names = append(names, name)
				}
				sort.Strings(names)

				rows := make([][]string, 0, len(names))
				for _, name := range names {
					record := records[name]
					deployedAt := ""
					if !record.DeployedAt.IsZero() {
						deployedAt = record.DeployedAt.Local().Format(time.RFC3339)
					}
					rows = append(rows, []string{
						record.Vehicle,
						yesNo(record.Deployed),
						deployedAt,
						strings.Join(record.Files, ", "),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Vehicle", "Deployed", "When", "Files"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	cmd.AddCommand(newStatusClearCommand(ctx))
	return cmd
}

func newStatusClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget all deployment records",
		Long: "Removes every deployment record. Files on disk are untouched; this\n" +
			"only resets what `gearbox status` and `gearbox vehicles` report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.ErrOrStderr(), func(store *status.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d deployment record(s)\n", removed)
				return nil
			})
		},
	}
}
