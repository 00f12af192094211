package main

import (
	"fmt"
	"io"
	"strconv"

	"ttsprep/internal/config"
	"ttsprep/internal/marker"
	"ttsprep/internal/pipeline"
)

// stepPlan is the exported view of a step and its marker state.
type stepPlan struct {
	Name   string   `yaml:"name" json:"name"`
	Marker string   `yaml:"marker,omitempty" json:"marker,omitempty"`
	Done   bool     `yaml:"done" json:"done"`
	Inputs []string `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Tools  []string `yaml:"tools,omitempty" json:"tools,omitempty"`
}

// stagePlan is the exported view of a stage.
type stagePlan struct {
	Index       int        `yaml:"index" json:"index"`
	Name        string     `yaml:"name" json:"name"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	InRange     bool       `yaml:"in_range" json:"in_range"`
	Steps       []stepPlan `yaml:"steps" json:"steps"`
}

func buildPlan(stages []pipeline.Stage, rng pipeline.Range) ([]stagePlan, error) {
	store := marker.Store{}
	plans := make([]stagePlan, 0, len(stages))
	for _, stage := range pipeline.Sorted(stages) {
		plan := stagePlan{
			Index:       stage.Index,
			Name:        stage.Name,
			Title:       stageLabel(stage.Name),
			Description: stage.Description,
			InRange:     rng.Contains(stage.Index),
		}
		for _, step := range stage.Steps {
			sp := stepPlan{Name: step.Name, Marker: step.Marker, Inputs: step.Inputs, Tools: step.Tools}
			if step.Marker != "" {
				done, err := store.Exists(step.Marker)
				if err != nil {
					return nil, err
				}
				sp.Done = done
			}
			plan.Steps = append(plan.Steps, sp)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// stepAction describes what a run over the plan's range would do with a step.
func stepAction(stage stagePlan, step stepPlan) string {
	switch {
	case !stage.InRange:
		return "out of range"
	case step.Done:
		return "skipped"
	default:
		return "run"
	}
}

func printPlan(out io.Writer, ctx *commandContext, cfg *config.Config, rng pipeline.Range) error {
	if err := rng.Validate(); err != nil {
		return err
	}
	stages, err := ctx.stages(cfg)
	if err != nil {
		return err
	}
	plans, err := buildPlan(stages, rng)
	if err != nil {
		return err
	}
	colorize := shouldColorize(out)
	headers := []string{"Stage", "Name", "Step", "Action", "Marker"}
	var rows [][]string
	for _, plan := range plans {
		for _, step := range plan.Steps {
			rows = append(rows, []string{
				strconv.Itoa(plan.Index),
				plan.Title,
				step.Name,
				colorState(stepAction(plan, step), colorize),
				displayPath(cfg, step.Marker),
			})
		}
	}
	fmt.Fprintf(out, "Dry run for stages %s\n", rng)
	fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight}))
	return nil
}
