package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"ttsprep/internal/services"
)

// StepFunc performs a step's side effects.
type StepFunc func(ctx context.Context, pc *Context) error

// Step is one marker-gated action inside a stage.
type Step struct {
	Name string
	// Marker is the sentinel file path. Empty means the step always runs and
	// is responsible for its own idempotence.
	Marker string
	// Inputs must exist before Run is invoked.
	Inputs []string
	// Tools must resolve on PATH before Run is invoked.
	Tools []string
	Run   StepFunc
}

// Stage is a numbered, individually selectable unit of the pipeline.
type Stage struct {
	Index       int
	Name        string
	Description string
	Steps       []Step
}

// NewStage builds a single-step stage whose step shares the stage name.
func NewStage(index int, name, description, marker string, run StepFunc) Stage {
	return Stage{
		Index:       index,
		Name:        name,
		Description: description,
		Steps:       []Step{{Name: name, Marker: marker, Run: run}},
	}
}

// Markers returns the marker paths of every gated step.
func (s Stage) Markers() []string {
	out := make([]string, 0, len(s.Steps))
	for _, step := range s.Steps {
		if step.Marker != "" {
			out = append(out, step.Marker)
		}
	}
	return out
}

// Sorted returns a copy of stages ordered by index.
func Sorted(stages []Stage) []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Validate rejects duplicate indices, unnamed stages, and stages without runnable steps.
func Validate(stages []Stage) error {
	seen := make(map[int]string, len(stages))
	for _, stage := range stages {
		name := strings.TrimSpace(stage.Name)
		if name == "" {
			return services.Wrap(services.ErrConfiguration, "pipeline", "validate", fmt.Sprintf("stage %d has no name", stage.Index), nil)
		}
		if prev, ok := seen[stage.Index]; ok {
			return services.Wrap(services.ErrConfiguration, "pipeline", "validate",
				fmt.Sprintf("stage index %d used by both %q and %q", stage.Index, prev, name), nil)
		}
		seen[stage.Index] = name
		if len(stage.Steps) == 0 {
			return services.Wrap(services.ErrConfiguration, "pipeline", "validate", fmt.Sprintf("stage %q has no steps", name), nil)
		}
		for _, step := range stage.Steps {
			if step.Run == nil {
				return services.Wrap(services.ErrConfiguration, "pipeline", "validate",
					fmt.Sprintf("stage %q step %q has no action", name, step.Name), nil)
			}
		}
	}
	return nil
}
