package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gearbox/internal/deploy"
	"gearbox/internal/services"
	"gearbox/internal/status"
)

func newDeployCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "deploy [vehicle...]",
		Short: "Install packed files into the game's vehicle folders",
		Long: "Matches packed converter output to vehicle folders, backs up each\n" +
			"original on first contact, and overwrites it with the modded file.\n" +
			"Without arguments, every vehicle with waiting output is deployed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configValue()
			if err != nil {
				return err
			}

			opCtx := ctx.operationContext(cmd)
			out := cmd.OutOrStdout()

			return ctx.withStore(cmd.ErrOrStderr(), func(store *status.Store) error {
				deployer := deploy.New(cfg, store, ctx.ensureLogger())
				report, err := deployer.Deploy(opCtx, args)
				if err != nil {
					return err
				}

				if asJSON {
					return printJSON(out, report)
				}

				if len(report.Results) == 0 && len(report.Unmatched) == 0 {
					fmt.Fprintln(out, "Nothing to deploy; run `gearbox pack` first.")
					return nil
				}

				colorize := shouldColorize(out)
				for _, result := range report.Results {
					kind := statusOK
					message := strings.Join(result.Files, ", ")
					switch result.Outcome {
					case deploy.OutcomeSkipped:
						kind = statusWarn
						message = result.Reason
					case deploy.OutcomeFailed:
						kind = statusError
						message = result.Reason
					}
					fmt.Fprintln(out, renderStatusLine(result.Vehicle, kind, message, colorize))
				}
				for _, unmatched := range report.Unmatched {
					fmt.Fprintln(out, renderStatusLine(unmatched.Name, statusWarn, "no matching vehicle", colorize))
				}

				fmt.Fprintf(out, "\n%d deployed, %d skipped, %d failed",
					report.Deployed(), report.Skipped(), report.Failed())
				if len(report.Unmatched) > 0 {
					fmt.Fprintf(out, ", %d unmatched", len(report.Unmatched))
				}
				fmt.Fprintln(out)

				// Individual vehicle failures stay in the report; the command
				// only fails when the batch could not do anything at all.
				if len(report.Results) == 0 && len(report.Unmatched) > 0 {
					return services.Wrap(services.ErrUnmatchedOutput, "deploy", "match",
						fmt.Sprintf("%d packed file(s) matched no vehicle", len(report.Unmatched)), nil)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the deployment report as JSON")
	return cmd
}
