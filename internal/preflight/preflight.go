package preflight

import (
	"context"

	"ttsprep/internal/collab"
	"ttsprep/internal/config"
	"ttsprep/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryOrParent("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryOrParent("State directory", cfg.Paths.StateDir))
	results = append(results, CheckDirectoryOrParent("Download directory", cfg.Paths.DownloadDir))
	results = append(results, CheckDirectoryAccess("Recipe directory", cfg.Paths.RecipeDir))
	results = append(results, CheckDataLayout(cfg))
	results = append(results, CheckCorpus(cfg))
	results = append(results, CheckRecipeScripts(cfg)...)
	results = append(results, CheckLedger(ctx, cfg.LedgerPath()))

	return results
}

// CheckSystemDeps evaluates the binaries the recipe invokes.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "Python",
			Command:     cfg.Tools.Python,
			Description: "Runs the recipe scripts",
		},
		{
			Name:        "lhotse",
			Command:     cfg.Tools.Lhotse,
			Description: "Downloads, prepares, and subsets manifests",
		},
	}
	return deps.CheckBinaries(requirements)
}

// CheckPythonDeps probes the Python packages the recipe scripts import.
func CheckPythonDeps(ctx context.Context, cfg *config.Config, runner collab.Collaborator) []deps.Status {
	return deps.CheckPythonModules(ctx, runner, cfg.Tools.Python, deps.RecipeModules())
}
