package collab

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"ttsprep/internal/logging"
	"ttsprep/internal/services"
)

const stderrTailLines = 20

// Exec runs invocations as child processes.
type Exec struct {
	logger   *slog.Logger
	lookPath func(string) (string, error)
}

// Option configures Exec.
type Option func(*Exec)

// WithLookPath overrides binary resolution (primarily for tests).
func WithLookPath(fn func(string) (string, error)) Option {
	return func(e *Exec) {
		if fn != nil {
			e.lookPath = fn
		}
	}
}

// NewExec constructs an os/exec backed collaborator.
func NewExec(logger *slog.Logger, opts ...Option) *Exec {
	e := &Exec{
		logger:   logging.NewComponentLogger(logger, "collab"),
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute resolves the binary, runs it to completion, and classifies the
// outcome: a missing binary wraps services.ErrToolNotFound, a non-zero exit
// returns *services.ExitError.
func (e *Exec) Execute(ctx context.Context, inv Invocation) (Output, error) {
	name := strings.TrimSpace(inv.Name)
	if name == "" {
		return Output{}, services.Wrap(services.ErrConfiguration, "", "execute", "empty command name", nil)
	}
	path, err := e.lookPath(name)
	if err != nil {
		return Output{ExitCode: services.ExitToolNotFound}, services.Wrap(services.ErrToolNotFound, "", "lookup", name, err)
	}

	logger := logging.WithContext(ctx, e.logger)
	logger.Info("exec", logging.String("cmd", inv.String()), logging.String("dir", inv.Dir))

	cmd := exec.CommandContext(ctx, path, inv.Args...) //nolint:gosec
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return Output{}, fmt.Errorf("stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return Output{}, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return Output{}, services.Wrap(services.ErrExternalTool, "", "start", name, err)
	}

	var (
		wg     sync.WaitGroup
		stdout bytes.Buffer
		tail   = newLineTail(stderrTailLines)
		stderr bytes.Buffer
	)
	scan := func(r io.Reader, stream string, sink func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			sink(line)
			logger.Debug(line, logging.String("stream", stream), logging.String("tool", name))
		}
		// Drain so the child never blocks on a full pipe after an overlong line.
		_, _ = io.Copy(io.Discard, r)
	}

	wg.Add(2)
	go scan(stdoutPipe, "stdout", func(line string) {
		stdout.WriteString(line)
		stdout.WriteByte('\n')
	})
	go scan(stderrPipe, "stderr", func(line string) {
		stderr.WriteString(line)
		stderr.WriteByte('\n')
		tail.add(line)
	})
	wg.Wait()

	waitErr := cmd.Wait()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if waitErr == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		out.ExitCode = -1
		return out, fmt.Errorf("%s interrupted: %w", name, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, &services.ExitError{Tool: name, Code: out.ExitCode, Stderr: tail.String()}
	}
	out.ExitCode = services.ExitFailure
	return out, services.Wrap(services.ErrExternalTool, "", "wait", name, waitErr)
}

type lineTail struct {
	max   int
	lines []string
}

func newLineTail(max int) *lineTail {
	return &lineTail{max: max}
}

func (t *lineTail) add(line string) {
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *lineTail) String() string {
	return strings.Join(t.lines, "\n")
}
