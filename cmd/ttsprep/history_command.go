package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded runs, or the step events of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			store, err := openExistingLedger(cfg)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			if store == nil {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			defer store.Close()
			colorize := shouldColorize(out)

			if len(args) == 1 {
				runID := strings.TrimSpace(args[0])
				run, err := store.GetRun(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", runID)
				}
				events, err := store.EventsForRun(cmd.Context(), runID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Run %s: %s (stages %d..%d)\n", run.ID, colorState(string(run.Status), colorize), run.Stage, run.StopStage)
				if run.Error != "" {
					fmt.Fprintf(out, "Error: %s\n", run.Error)
				}
				rows := make([][]string, 0, len(events))
				for _, ev := range events {
					rows = append(rows, []string{
						strconv.Itoa(ev.StageIndex),
						stageLabel(ev.Stage),
						ev.Step,
						colorState(ev.State, colorize),
						formatDuration(ev.Duration),
						ev.OccurredAt.Local().Format(time.DateTime),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Stage", "Name", "Step", "Result", "Duration", "At"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format(time.DateTime),
					fmt.Sprintf("%d..%d", run.Stage, run.StopStage),
					colorState(string(run.Status), colorize),
					strconv.Itoa(run.ExitCode),
					formatDuration(run.Duration()),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Stages", "Status", "Exit", "Duration"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}
