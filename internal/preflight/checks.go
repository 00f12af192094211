package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"ttsprep/internal/config"
	"ttsprep/internal/ledger"
)

// recipeScripts are the helper scripts invoked from <recipe_dir>/local.
var recipeScripts = []string{
	"compute_fbank_ljspeech.py",
	"validate_manifest.py",
	"prepare_tokens_ljspeech.py",
	"prepare_token_file.py",
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDirectoryOrParent passes when the directory is usable, or when it is
// missing but its nearest existing ancestor would let a run create it.
func CheckDirectoryOrParent(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !errors.Is(err, os.ErrNotExist) {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for parent != filepath.Dir(parent) {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		parent = filepath.Dir(parent)
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckDataLayout warns when the data directory is not <recipe_dir>/data. The
// recipe scripts read and write data/ relative to the recipe directory, so any
// other location splits outputs between two trees.
func CheckDataLayout(cfg *config.Config) Result {
	const name = "Data layout"
	expected := filepath.Join(cfg.Paths.RecipeDir, "data")
	if filepath.Clean(cfg.Paths.DataDir) == filepath.Clean(expected) {
		return Result{Name: name, Passed: true, Detail: "data directory is <recipe_dir>/data"}
	}
	return Result{Name: name, Detail: fmt.Sprintf("recipe scripts use %s but data_dir is %s", expected, cfg.Paths.DataDir)}
}

// CheckCorpus reports whether the corpus is already downloaded.
func CheckCorpus(cfg *config.Config) Result {
	const name = "Corpus"
	corpus := cfg.CorpusPath()
	info, err := os.Stat(corpus)
	switch {
	case err == nil && info.IsDir():
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (present)", corpus)}
	case err == nil:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", corpus)}
	case errors.Is(err, os.ErrNotExist):
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (stage 0 will download it)", corpus)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", corpus, err)}
	}
}

// CheckRecipeScripts verifies the helper scripts exist under <recipe_dir>/local.
func CheckRecipeScripts(cfg *config.Config) []Result {
	results := make([]Result, 0, len(recipeScripts))
	for _, script := range recipeScripts {
		path := filepath.Join(cfg.Paths.RecipeDir, "local", script)
		name := "Script " + script
		if _, err := os.Stat(path); err != nil {
			results = append(results, Result{Name: name, Detail: fmt.Sprintf("%s (error: missing)", path)})
			continue
		}
		results = append(results, Result{Name: name, Passed: true, Detail: path})
	}
	return results
}

// CheckLedger verifies the run ledger opens and answers queries. A missing
// ledger passes since the first run creates it.
func CheckLedger(ctx context.Context, path string) Result {
	const name = "Run ledger"
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created on first run)", path)}
	}
	store, err := ledger.OpenPath(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()
	if err := store.Ping(ctx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", path)}
}
