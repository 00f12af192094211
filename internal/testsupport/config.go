package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"ttsprep/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The recipe directory is the temp root and data lives under it, matching the
// layout the recipe scripts expect.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.RecipeDir = base
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.DownloadDir = filepath.Join(base, "download")
	cfgVal.Paths.StateDir = filepath.Join(base, "data", ".ttsprep")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithRange overrides the configured stage range.
func WithRange(stage, stopStage int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Run.Stage = stage
		b.cfg.Run.StopStage = stopStage
	}
}

// WithSplit overrides the valid/test subset sizes.
func WithSplit(valid, test int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dataset.ValidCuts = valid
		b.cfg.Dataset.TestCuts = test
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the recipe's default external
// binaries are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{b.cfg.Tools.Python, b.cfg.Tools.Lhotse}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return cfg.Paths.RecipeDir
}
