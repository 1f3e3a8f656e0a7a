package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidset/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the external binaries used to decode video",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(cmd.Context(), deps.MediaRequirements(cfg.FFmpegBinary(), cfg.FFprobeBinary()))

			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, status := range statuses {
				kind, msg := dependencyStatus(status)
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, msg, colorize))
			}
			if missing := deps.Missing(statuses); len(missing) > 0 {
				return fmt.Errorf("%d required dependency(s) missing", len(missing))
			}
			return nil
		},
	}
}
