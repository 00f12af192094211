package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ttsprep/internal/pipeline"
)

func renderReport(report pipeline.Report, colorize bool) string {
	headers := []string{"Stage", "Name", "Step", "Result", "Duration"}
	var rows [][]string
	for _, stage := range report.Stages {
		if stage.State == pipeline.StateOutOfRange {
			continue
		}
		for _, step := range stage.Steps {
			duration := ""
			if step.State == pipeline.StateDone || step.State == pipeline.StateFailed {
				duration = formatDuration(step.Duration)
			}
			rows = append(rows, []string{
				strconv.Itoa(stage.Index),
				stageLabel(stage.Name),
				step.Name,
				colorState(string(step.State), colorize),
				duration,
			})
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s (stages %s)\n", report.RunID, report.Range)
	if len(rows) == 0 {
		b.WriteString("No stages in range")
		return b.String()
	}
	b.WriteString(renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight}))
	return b.String()
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
