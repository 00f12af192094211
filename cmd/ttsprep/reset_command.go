package main

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/spf13/cobra"

	"ttsprep/internal/marker"
	"ttsprep/internal/pipeline"
	"ttsprep/internal/runlock"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	var (
		stage     int
		stopStage int
		all       bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete completion markers so stages run again",
		Long: "Reset removes the completion markers of the selected stages. Outputs are\n" +
			"left in place; the next run overwrites them.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !all && !flags.Changed("stage") {
				return errors.New("select stages with --stage [--stop-stage] or pass --all")
			}
			if !flags.Changed("stop-stage") {
				stopStage = stage
			}
			rng := pipeline.Range{Start: stage, Stop: stopStage}
			if all {
				rng = pipeline.Range{Start: math.MinInt, Stop: math.MaxInt}
			}
			if err := rng.Validate(); err != nil {
				return err
			}

			lock, err := runlock.Acquire(cfg.LockPath())
			if err != nil {
				return err
			}
			defer lock.Release()

			stages, err := ctx.stages(cfg)
			if err != nil {
				return err
			}
			store := marker.Store{}
			var targets []string
			for _, s := range stages {
				if rng.Contains(s.Index) {
					targets = append(targets, s.Markers()...)
				}
			}
			if all {
				found, err := store.List(cfg.Paths.DataDir)
				if err != nil {
					return err
				}
				targets = append(targets, found...)
			}
			targets = dedupe(targets)

			out := cmd.OutOrStdout()
			cleared := 0
			for _, path := range targets {
				exists, err := store.Exists(path)
				if err != nil {
					return err
				}
				if !exists {
					continue
				}
				if err := store.Clear(path); err != nil {
					return err
				}
				cleared++
				fmt.Fprintf(out, "Removed %s\n", displayPath(cfg, path))
			}
			if cleared == 0 {
				fmt.Fprintln(out, "No markers to remove")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&stage, "stage", 0, "First stage to reset")
	cmd.Flags().IntVar(&stopStage, "stop-stage", 0, "Last stage to reset (defaults to --stage)")
	cmd.Flags().BoolVar(&all, "all", false, "Remove every marker, including ones no stage owns")
	return cmd
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
