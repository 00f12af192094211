// Package recipe declares the dataset preparation stages as data for the
// pipeline runner.
package recipe

import (
	"fmt"
	"sort"
	"strings"

	"ttsprep/internal/pipeline"
	"ttsprep/internal/services"
)

// Builder produces the stage table for a dataset.
type Builder func(pc *pipeline.Context) []pipeline.Stage

var builders = map[string]Builder{
	"ljspeech": LJSpeech,
}

// Build returns the stages for the dataset named in pc.
func Build(pc *pipeline.Context) ([]pipeline.Stage, error) {
	name := strings.ToLower(strings.TrimSpace(pc.Dataset.Name))
	builder, ok := builders[name]
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "recipe", "build",
			fmt.Sprintf("unknown dataset %q (known: %s)", pc.Dataset.Name, strings.Join(Names(), ", ")), nil)
	}
	return builder(pc), nil
}

// Names lists the datasets with a recipe.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
