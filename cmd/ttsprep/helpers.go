package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"ttsprep/internal/config"
	"ttsprep/internal/ledger"
)

// displayPath shortens paths under the recipe directory for table output.
func displayPath(cfg *config.Config, path string) string {
	if path == "" {
		return "-"
	}
	rel, err := filepath.Rel(cfg.Paths.RecipeDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// openExistingLedger opens the ledger only if a run already created it, so
// read-only commands never create state. It returns nil when absent.
func openExistingLedger(cfg *config.Config) (*ledger.Store, error) {
	if _, err := os.Stat(cfg.LedgerPath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return ledger.Open(cfg)
}
