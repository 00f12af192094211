package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"ttsprep/internal/ledger"
	"ttsprep/internal/marker"
	"ttsprep/internal/pipeline"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show completion markers and the last recorded result per step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stages, err := ctx.stages(cfg)
			if err != nil {
				return err
			}
			rng := pipeline.Range{Start: cfg.Run.Stage, Stop: cfg.Run.StopStage}
			plans, err := buildPlan(stages, rng)
			if err != nil {
				return err
			}

			lastByStep := map[string]ledger.StageEvent{}
			store, err := openExistingLedger(cfg)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			if store != nil {
				defer store.Close()
				events, err := store.LastEvents(cmd.Context())
				if err != nil {
					return err
				}
				for _, ev := range events {
					lastByStep[stepKey(ev.StageIndex, ev.Step)] = ev
				}
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			headers := []string{"Stage", "Name", "Step", "Marker", "Done", "Last Result", "Last Seen"}
			rows := make([][]string, 0, len(plans))
			known := map[string]bool{}
			for _, plan := range plans {
				for _, step := range plan.Steps {
					if step.Marker != "" {
						known[step.Marker] = true
					}
					lastResult, lastSeen := "-", "-"
					if ev, ok := lastByStep[stepKey(plan.Index, step.Name)]; ok {
						lastResult = colorState(ev.State, colorize)
						lastSeen = ev.OccurredAt.Local().Format(time.DateTime)
					}
					done := yesNo(step.Done)
					if step.Marker == "" {
						done = "n/a"
					}
					rows = append(rows, []string{
						strconv.Itoa(plan.Index),
						plan.Title,
						step.Name,
						displayPath(cfg, step.Marker),
						done,
						lastResult,
						lastSeen,
					})
				}
			}
			fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight}))

			found, err := marker.Store{}.List(cfg.Paths.DataDir)
			if err != nil {
				return err
			}
			var unknown []string
			for _, path := range found {
				if !known[path] {
					unknown = append(unknown, displayPath(cfg, path))
				}
			}
			if len(unknown) > 0 {
				sort.Strings(unknown)
				fmt.Fprintln(out, "Unrecognised markers (not owned by any stage):")
				for _, path := range unknown {
					fmt.Fprintf(out, "  %s\n", path)
				}
			}
			return nil
		},
	}
}

func stepKey(index int, step string) string {
	return strconv.Itoa(index) + "/" + step
}
