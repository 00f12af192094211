package config

import (
	"errors"
	"fmt"

	"ttsprep/internal/services"
)

// Validate ensures the configuration is usable. Failures match
// services.ErrConfiguration.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.validateRun,
		c.validateTools,
		c.validateDataset,
		c.validateLogging,
	} {
		if err := check(); err != nil {
			return fmt.Errorf("%w: %w", services.ErrConfiguration, err)
		}
	}
	return nil
}

func (c *Config) validateRun() error {
	if c.Run.Stage > c.Run.StopStage {
		return fmt.Errorf("run.stage (%d) must not exceed run.stop_stage (%d)", c.Run.Stage, c.Run.StopStage)
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.Python == "" {
		return errors.New("tools.python must be set")
	}
	if c.Tools.Lhotse == "" {
		return errors.New("tools.lhotse must be set")
	}
	return nil
}

func (c *Config) validateDataset() error {
	if c.Dataset.ValidCuts <= 0 {
		return errors.New("dataset.valid_cuts must be positive")
	}
	if c.Dataset.TestCuts <= 0 {
		return errors.New("dataset.test_cuts must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
