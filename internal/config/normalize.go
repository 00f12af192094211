package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeRun(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeDataset()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("DL_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DownloadDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		c.Paths.DownloadDir = defaultDownloadDir
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.Paths.RecipeDir) == "" {
		c.Paths.RecipeDir = defaultRecipeDir
	}

	var err error
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.dl_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.RecipeDir, err = expandPath(c.Paths.RecipeDir); err != nil {
		return fmt.Errorf("paths.recipe_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = filepath.Join(c.Paths.DataDir, defaultStateDirName)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRun() error {
	if value, ok := os.LookupEnv("TTSPREP_STAGE"); ok && strings.TrimSpace(value) != "" {
		stage, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("TTSPREP_STAGE: invalid integer %q", value)
		}
		c.Run.Stage = stage
	}
	if value, ok := os.LookupEnv("TTSPREP_STOP_STAGE"); ok && strings.TrimSpace(value) != "" {
		stop, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("TTSPREP_STOP_STAGE: invalid integer %q", value)
		}
		c.Run.StopStage = stop
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.Python = strings.TrimSpace(c.Tools.Python)
	c.Tools.Lhotse = strings.TrimSpace(c.Tools.Lhotse)
}

func (c *Config) normalizeDataset() {
	c.Dataset.Name = strings.ToLower(strings.TrimSpace(c.Dataset.Name))
	if c.Dataset.Name == "" {
		c.Dataset.Name = defaultDataset
	}
	c.Dataset.CorpusDir = strings.TrimSpace(c.Dataset.CorpusDir)
	if c.Dataset.CorpusDir == "" {
		c.Dataset.CorpusDir = defaultCorpusDir
	}
	c.Dataset.ModelDir = strings.TrimSpace(c.Dataset.ModelDir)
	if c.Dataset.ModelDir == "" {
		c.Dataset.ModelDir = defaultModelDir
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
