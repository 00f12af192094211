package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"ttsprep/internal/config"
	"ttsprep/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries(), testsupport.WithSplit(10, 20))
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("DL_DIR", "")
	t.Setenv("TTSPREP_STAGE", "")
	t.Setenv("TTSPREP_STOP_STAGE", "")

	configPath := filepath.Join(base, "ttsprep.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndl_dir = %q\ndata_dir = %q\nrecipe_dir = %q\nstate_dir = %q\n\n[dataset]\nvalid_cuts = %d\ntest_cuts = %d\n\n[logging]\nlevel = \"warn\"\n",
		cfg.Paths.DownloadDir,
		cfg.Paths.DataDir,
		cfg.Paths.RecipeDir,
		cfg.Paths.StateDir,
		cfg.Dataset.ValidCuts,
		cfg.Dataset.TestCuts,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// stubTool replaces name on PATH with a script that runs body.
func stubTool(t *testing.T, env *cliTestEnv, name, body string) {
	t.Helper()
	dir := filepath.Join(env.baseDir, "override-bin")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir override bin: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}
