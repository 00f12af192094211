package collab

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ttsprep/internal/logging"
	"ttsprep/internal/services"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func TestExecCapturesOutput(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "tool", `echo "out $1"; echo "warn" >&2; exit 0`)

	out, err := NewExec(logging.NewNop()).Execute(context.Background(), Invocation{Name: script, Args: []string{"a"}})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if strings.TrimSpace(string(out.Stdout)) != "out a" {
		t.Fatalf("unexpected stdout %q", out.Stdout)
	}
	if strings.TrimSpace(string(out.Stderr)) != "warn" {
		t.Fatalf("unexpected stderr %q", out.Stderr)
	}
	if out.ExitCode != 0 {
		t.Fatalf("unexpected exit code %d", out.ExitCode)
	}
}

func TestExecPropagatesExitCode(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "failing", `echo "Traceback: boom" >&2; exit 3`)

	out, err := NewExec(logging.NewNop()).Execute(context.Background(), Invocation{Name: script})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	var exitErr *services.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %T: %v", err, err)
	}
	if exitErr.Code != 3 || out.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d/%d", exitErr.Code, out.ExitCode)
	}
	if !strings.Contains(exitErr.Error(), "Traceback: boom") {
		t.Fatalf("expected stderr tail in error, got %q", exitErr.Error())
	}
	if services.ExitCode(err) != 3 {
		t.Fatalf("expected ExitCode 3, got %d", services.ExitCode(err))
	}
}

func TestExecMissingBinary(t *testing.T) {
	_, err := NewExec(logging.NewNop()).Execute(context.Background(), Invocation{Name: "clearly-not-present-binary"})
	if !errors.Is(err, services.ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
	if services.ExitCode(err) != services.ExitToolNotFound {
		t.Fatalf("expected exit code 127, got %d", services.ExitCode(err))
	}
}

func TestExecRunsInDirWithEnv(t *testing.T) {
	dir := t.TempDir()
	work := t.TempDir()
	script := writeScript(t, dir, "pwd-env", `pwd; echo "$TTSPREP_TEST_VALUE"`)

	out, err := NewExec(nil).Execute(context.Background(), Invocation{
		Name: script,
		Dir:  work,
		Env:  []string{"TTSPREP_TEST_VALUE=42"},
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out.Stdout)), "\n")
	if len(lines) != 2 {
		t.Fatalf("unexpected stdout %q", out.Stdout)
	}
	wantDir, _ := filepath.EvalSymlinks(work)
	gotDir, _ := filepath.EvalSymlinks(lines[0])
	if gotDir != wantDir {
		t.Fatalf("expected working dir %q, got %q", wantDir, gotDir)
	}
	if lines[1] != "42" {
		t.Fatalf("expected env value, got %q", lines[1])
	}
}

func TestExecCancelledContext(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "sleeper", `sleep 5`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExec(logging.NewNop()).Execute(ctx, Invocation{Name: script})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestRecorderMatchesLongestPrefix(t *testing.T) {
	boom := errors.New("boom")
	rec := NewRecorder().
		On("lhotse", Response{}).
		On("lhotse subset", Response{Err: boom})

	if _, err := rec.Execute(context.Background(), Invocation{Name: "lhotse", Args: []string{"prepare", "ljspeech"}}); err != nil {
		t.Fatalf("expected success for lhotse prepare, got %v", err)
	}
	if _, err := rec.Execute(context.Background(), Invocation{Name: "lhotse", Args: []string{"subset", "--last", "600"}}); !errors.Is(err, boom) {
		t.Fatalf("expected canned failure, got %v", err)
	}
	lines := rec.CommandLines()
	if len(lines) != 2 || lines[1] != "lhotse subset --last 600" {
		t.Fatalf("unexpected recorded lines %v", lines)
	}
	rec.Reset()
	if len(rec.Calls()) != 0 {
		t.Fatal("expected calls to be cleared")
	}
}
