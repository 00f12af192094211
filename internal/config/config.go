package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directory layout the recipe reads and writes.
type Paths struct {
	DownloadDir string `toml:"dl_dir"`
	DataDir     string `toml:"data_dir"`
	RecipeDir   string `toml:"recipe_dir"`
	StateDir    string `toml:"state_dir"`
}

// Run contains the default inclusive stage range.
type Run struct {
	Stage     int `toml:"stage"`
	StopStage int `toml:"stop_stage"`
}

// Tools names the external executables the stages invoke.
type Tools struct {
	Python string `toml:"python"`
	Lhotse string `toml:"lhotse"`
}

// Dataset contains corpus naming and split sizes.
type Dataset struct {
	Name      string `toml:"name"`
	CorpusDir string `toml:"corpus_dir"`
	ModelDir  string `toml:"model_dir"`
	ValidCuts int    `toml:"valid_cuts"`
	TestCuts  int    `toml:"test_cuts"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ttsprep.
//
// Configuration sections:
//   - Paths: download root, data tree, recipe scripts, runner state
//   - Run: default stage range
//   - Tools: python and lhotse executables
//   - Dataset: corpus naming and valid/test split sizes
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Run     Run     `toml:"run"`
	Tools   Tools   `toml:"tools"`
	Dataset Dataset `toml:"dataset"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/ttsprep/config.toml")
}

// ProjectConfigPath returns ttsprep.toml in the working directory, which is
// consulted when no user-level configuration exists.
func ProjectConfigPath() (string, error) {
	return filepath.Abs("ttsprep.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/ttsprep/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := ProjectConfigPath()
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories every run needs. The download
// directory is left to the download stage.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LedgerPath returns the SQLite run ledger location.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.StateDir, "ledger.db")
}

// LockPath returns the run lock location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "run.lock")
}

// LogPath returns the persistent log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "ttsprep.log")
}

// CorpusPath returns the extracted corpus directory under the download root.
func (c *Config) CorpusPath() string {
	return filepath.Join(c.Paths.DownloadDir, c.Dataset.CorpusDir)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
