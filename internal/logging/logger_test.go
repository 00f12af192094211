package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ttsprep/internal/config"
	"ttsprep/internal/logging"
	"ttsprep/internal/services"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigWritesStateLog(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	if !strings.Contains(readLog(t, cfg.LogPath()), "hello from config") {
		t.Fatal("expected message in state log file")
	}
}

func TestConsoleLoggerFoldsStageIntoSubject(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithStage(context.Background(), "compute-fbank")
	ctx = services.WithStep(ctx, "validate")
	ctx = services.WithRunID(ctx, "run-1")
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "runner")).Info("step started", logging.Int("index", 2))

	content := readLog(t, logPath)
	if !strings.Contains(content, "INFO runner · compute-fbank/validate: step started") {
		t.Fatalf("expected subject prefix, got %q", content)
	}
	if !strings.Contains(content, "run_id=run-1") || !strings.Contains(content, "index=2") {
		t.Fatalf("expected key/value attrs, got %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestJSONLoggerUsesStableKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("marker present", logging.String(logging.FieldStage, "split"))

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["level"] != "warn" {
		t.Fatalf("expected lower-case level, got %v", entry["level"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
	if entry["stage"] != "split" {
		t.Fatalf("expected stage attr, got %v", entry["stage"])
	}
}

func TestLevelFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "level.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "warn", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Error("shown")

	content := readLog(t, logPath)
	if strings.Contains(content, "hidden") || !strings.Contains(content, "shown") {
		t.Fatalf("unexpected level filtering: %q", content)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestFormatSubject(t *testing.T) {
	cases := []struct {
		component, stage, step string
		want                   string
	}{
		{"runner", "split", "", "runner · split"},
		{"runner", "split", "split", "runner · split"},
		{"", "compute-fbank", "validate", "compute-fbank/validate"},
		{"", "", "", ""},
	}
	for _, tc := range cases {
		if got := logging.FormatSubject(tc.component, tc.stage, tc.step); got != tc.want {
			t.Fatalf("FormatSubject(%q, %q, %q) = %q, want %q", tc.component, tc.stage, tc.step, got, tc.want)
		}
	}
}
