package deps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ttsprep/internal/collab"
	"ttsprep/internal/services"
)

const moduleProbeTimeout = 30 * time.Second

// RecipeModules lists the Python packages the recipe scripts import.
func RecipeModules() []Requirement {
	return []Requirement{
		{Name: "lhotse", Command: "lhotse", Description: "Manifest handling in every recipe script"},
		{Name: "torch", Command: "torch", Description: "Feature extraction"},
		{Name: "torchaudio", Command: "torchaudio", Description: "Audio loading"},
		{Name: "piper_phonemize", Command: "piper_phonemize", Description: "Phoneme tokens for stage 3"},
		{Name: "Cython", Command: "Cython", Description: "Building monotonic_align (stage -1)", Optional: true},
	}
}

// CheckPythonModules probes each module with `<python> -c "import <module>"`.
func CheckPythonModules(ctx context.Context, runner collab.Collaborator, python string, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := newStatus(req)
		status.Command = strings.TrimSpace(req.Command)
		if status.Command == "" {
			status.Detail = "module not configured"
			results = append(results, status)
			continue
		}
		probeCtx, cancel := context.WithTimeout(ctx, moduleProbeTimeout)
		_, err := runner.Execute(probeCtx, collab.Invocation{
			Name: python,
			Args: []string{"-c", "import " + status.Command},
		})
		cancel()
		switch {
		case err == nil:
			status.Available = true
			status.Path = python
		case errors.Is(err, services.ErrToolNotFound):
			status.Detail = fmt.Sprintf("interpreter %q not found", python)
		default:
			status.Detail = fmt.Sprintf("import %s failed", status.Command)
		}
		results = append(results, status)
	}
	return results
}
