package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ttsprep/internal/pipeline"
)

func newStagesCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "stages",
		Short: "List the recipe stages",
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
			plans, err := buildPlan(stages, pipeline.Range{Start: cfg.Run.Stage, Stop: cfg.Run.StopStage})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(strings.TrimSpace(output)) {
			case "json":
				return writeJSON(cmd, plans)
			case "yaml", "yml":
				return writeYAML(cmd, plans)
			case "", "table":
				headers := []string{"Stage", "Name", "Description", "Steps", "In Range"}
				rows := make([][]string, 0, len(plans))
				for _, plan := range plans {
					names := make([]string, 0, len(plan.Steps))
					for _, step := range plan.Steps {
						names = append(names, step.Name)
					}
					rows = append(rows, []string{
						strconv.Itoa(plan.Index),
						plan.Title,
						plan.Description,
						strings.Join(names, ", "),
						yesNo(plan.InRange),
					})
				}
				fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight}))
				return nil
			default:
				return fmt.Errorf("unsupported output format %q (use table, yaml, or json)", output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, yaml, or json")
	return cmd
}
