package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"ttsprep/internal/collab"
	"ttsprep/internal/config"
	"ttsprep/internal/logging"
)

// MarkerStore is the subset of marker.Store the runner needs.
type MarkerStore interface {
	Exists(path string) (bool, error)
	Mark(path string) error
}

// Context is the explicit state handed to every step. It replaces the
// ambient working-directory globals a shell recipe would rely on.
type Context struct {
	DataDir      string
	DownloadDir  string
	RecipeDir    string
	Tools        config.Tools
	Dataset      config.Dataset
	Collaborator collab.Collaborator
	Markers      MarkerStore
	Logger       *slog.Logger
}

// NewContext derives a step context from configuration.
func NewContext(cfg *config.Config, collaborator collab.Collaborator, markers MarkerStore, logger *slog.Logger) *Context {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Context{
		DataDir:      cfg.Paths.DataDir,
		DownloadDir:  cfg.Paths.DownloadDir,
		RecipeDir:    cfg.Paths.RecipeDir,
		Tools:        cfg.Tools,
		Dataset:      cfg.Dataset,
		Collaborator: collaborator,
		Markers:      markers,
		Logger:       logger,
	}
}

// Data joins elements under the data directory.
func (pc *Context) Data(elem ...string) string {
	return filepath.Join(append([]string{pc.DataDir}, elem...)...)
}

// Recipe joins elements under the recipe directory.
func (pc *Context) Recipe(elem ...string) string {
	return filepath.Join(append([]string{pc.RecipeDir}, elem...)...)
}

// Exec runs an external program from the recipe directory.
func (pc *Context) Exec(ctx context.Context, name string, args ...string) error {
	return pc.ExecIn(ctx, pc.RecipeDir, name, args...)
}

// ExecIn runs an external program from dir.
func (pc *Context) ExecIn(ctx context.Context, dir, name string, args ...string) error {
	_, err := pc.Collaborator.Execute(ctx, collab.Invocation{Name: name, Args: args, Dir: dir})
	return err
}

// Python runs a recipe script with the configured interpreter.
func (pc *Context) Python(ctx context.Context, script string, args ...string) error {
	return pc.Exec(ctx, pc.Tools.Python, append([]string{script}, args...)...)
}

// Lhotse runs a lhotse subcommand.
func (pc *Context) Lhotse(ctx context.Context, args ...string) error {
	return pc.Exec(ctx, pc.Tools.Lhotse, args...)
}
