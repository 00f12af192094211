package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type checkLevel int

const (
	checkInfo checkLevel = iota
	checkPass
	checkWarn
	checkFail
)

func (l checkLevel) String() string {
	switch l {
	case checkPass:
		return "ok"
	case checkWarn:
		return "warn"
	case checkFail:
		return "FAIL"
	default:
		return "info"
	}
}

func (l checkLevel) colors() text.Colors {
	switch l {
	case checkPass:
		return text.Colors{text.FgGreen}
	case checkWarn:
		return text.Colors{text.FgYellow}
	case checkFail:
		return text.Colors{text.FgRed, text.Bold}
	default:
		return text.Colors{text.FgHiBlack}
	}
}

// checkWriter prints doctor sections and check lines, counting failures.
type checkWriter struct {
	out      io.Writer
	colorize bool
	failures int
}

func newCheckWriter(out io.Writer) *checkWriter {
	return &checkWriter{out: out, colorize: shouldColorize(out)}
}

func (w *checkWriter) section(title string) {
	if w.colorize {
		title = text.Colors{text.Bold, text.Underline}.Sprint(title)
	}
	fmt.Fprintf(w.out, "\n%s\n", title)
}

func (w *checkWriter) check(level checkLevel, name, detail string) {
	if level == checkFail {
		w.failures++
	}
	tag := fmt.Sprintf("%-4s", level)
	if w.colorize {
		tag = level.colors().Sprint(tag)
	}
	if detail == "" {
		fmt.Fprintf(w.out, "  %s  %s\n", tag, name)
		return
	}
	fmt.Fprintf(w.out, "  %s  %-28s %s\n", tag, name, detail)
}

// colorState tints a pipeline or run state for terminal output.
func colorState(state string, colorize bool) string {
	if !colorize {
		return state
	}
	switch state {
	case "done", "succeeded", "run":
		return text.Colors{text.FgGreen}.Sprint(state)
	case "skipped", "pending", "running", "interrupted":
		return text.Colors{text.FgYellow}.Sprint(state)
	case "failed":
		return text.Colors{text.FgRed}.Sprint(state)
	default:
		return state
	}
}

func shouldColorize(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
