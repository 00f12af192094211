// Package marker manages zero-byte completion sentinels.
//
// A marker's presence means "this step's side effects already exist on disk"
// and is trusted without re-verification: nothing here compares timestamps or
// hashes against inputs. Markers persist until an operator removes them.
package marker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const suffix = ".done"

// Path returns the conventional marker location dir/.name.done.
func Path(dir, name string) string {
	return filepath.Join(dir, "."+strings.TrimSpace(name)+suffix)
}

// IsMarker reports whether a file name follows the .name.done convention.
func IsMarker(base string) bool {
	return strings.HasPrefix(base, ".") && strings.HasSuffix(base, suffix) && len(base) > len(suffix)+1
}

// Store reads and writes markers on the local filesystem.
type Store struct{}

// Exists reports whether the marker file is present.
func (Store) Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return false, fmt.Errorf("marker %s is a directory", path)
		}
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat marker %s: %w", path, err)
}

// Mark creates the marker (and its parent directory) as an empty file.
func (Store) Mark(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create marker directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create marker %s: %w", path, err)
	}
	return file.Close()
}

// Clear removes the marker. A missing marker is not an error.
func (Store) Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove marker %s: %w", path, err)
	}
	return nil
}

// List walks root and returns every marker path, sorted.
func (Store) List(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) && path == root {
				return fs.SkipAll
			}
			return walkErr
		}
		if !d.IsDir() && IsMarker(d.Name()) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}
