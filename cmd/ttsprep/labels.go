package main

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// stageLabel renders a kebab-case stage name as a human title, e.g.
// "compute-fbank" becomes "Compute Fbank".
func stageLabel(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "-", " "))
	if name == "" {
		return ""
	}
	return cases.Title(language.English).String(name)
}
