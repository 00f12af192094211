package logging

import "strings"

// FormatSubject builds the component/stage/step subject used in console output.
func FormatSubject(component, stage, step string) string {
	component = strings.TrimSpace(component)
	stage = strings.TrimSpace(stage)
	step = strings.TrimSpace(step)
	parts := make([]string, 0, 2)
	if component != "" {
		parts = append(parts, component)
	}
	switch {
	case stage != "" && step != "" && step != stage:
		parts = append(parts, stage+"/"+step)
	case stage != "":
		parts = append(parts, stage)
	case step != "":
		parts = append(parts, step)
	}
	return strings.Join(parts, " · ")
}
