package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ttsprep/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		stage  string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the run log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			filter := logs.StageFilter(stage)

			tail, offset, err := logs.Last(cfg.LogPath(), lines, filter)
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(tail) == 0 && lines > 0 {
					fmt.Fprintf(out, "No log entries in %s\n", displayPath(cfg, cfg.LogPath()))
				}
				return nil
			}
			return logs.Follow(cmd.Context(), cfg.LogPath(), offset, 500*time.Millisecond, filter, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	cmd.Flags().StringVar(&stage, "stage", "", "Only show lines for this stage name")
	return cmd
}
