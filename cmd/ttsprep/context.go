package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"ttsprep/internal/collab"
	"ttsprep/internal/config"
	"ttsprep/internal/logging"
	"ttsprep/internal/marker"
	"ttsprep/internal/pipeline"
	"ttsprep/internal/recipe"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// pipelineContext builds a step context around collaborator. Commands that
// only inspect the stage table pass a nil collaborator.
func (c *commandContext) pipelineContext(cfg *config.Config, collaborator collab.Collaborator, logger *slog.Logger) *pipeline.Context {
	if logger == nil {
		logger = logging.NewNop()
	}
	return pipeline.NewContext(cfg, collaborator, marker.Store{}, logger)
}

// stages returns the recipe's stage table for cfg in index order.
func (c *commandContext) stages(cfg *config.Config) ([]pipeline.Stage, error) {
	stages, err := recipe.Build(c.pipelineContext(cfg, nil, nil))
	if err != nil {
		return nil, err
	}
	return pipeline.Sorted(stages), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
