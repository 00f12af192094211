package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ttsprep/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryOrParent_Creatable(t *testing.T) {
	result := CheckDirectoryOrParent("test", filepath.Join(t.TempDir(), "a", "b"))
	if !result.Passed || !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("expected creatable pass, got %+v", result)
	}
}

func TestCheckDataLayout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if result := CheckDataLayout(cfg); !result.Passed {
		t.Fatalf("expected default test layout to pass, got %s", result.Detail)
	}
	cfg.Paths.DataDir = filepath.Join(t.TempDir(), "elsewhere")
	if result := CheckDataLayout(cfg); result.Passed {
		t.Fatal("expected mismatched data dir to fail")
	}
}

func TestCheckCorpus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	result := CheckCorpus(cfg)
	if !result.Passed || !strings.Contains(result.Detail, "download") {
		t.Fatalf("expected pending download pass, got %+v", result)
	}
	if err := os.MkdirAll(cfg.CorpusPath(), 0o755); err != nil {
		t.Fatal(err)
	}
	if result := CheckCorpus(cfg); !result.Passed || !strings.Contains(result.Detail, "present") {
		t.Fatalf("expected present corpus, got %+v", result)
	}
}

func TestCheckRecipeScripts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.RecipeDir, "local", "compute_fbank_ljspeech.py"), 10)

	results := CheckRecipeScripts(cfg)
	if len(results) != len(recipeScripts) {
		t.Fatalf("expected %d results, got %d", len(recipeScripts), len(results))
	}
	if !results[0].Passed {
		t.Fatalf("expected present script to pass, got %s", results[0].Detail)
	}
	for _, r := range results[1:] {
		if r.Passed {
			t.Fatalf("expected missing script %s to fail", r.Name)
		}
	}
}

func TestCheckLedger(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if result := CheckLedger(context.Background(), cfg.LedgerPath()); !result.Passed {
		t.Fatalf("missing ledger should pass, got %s", result.Detail)
	}
	testsupport.MustOpenLedger(t, cfg)
	if result := CheckLedger(context.Background(), cfg.LedgerPath()); !result.Passed {
		t.Fatalf("expected readable ledger, got %s", result.Detail)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	for _, status := range CheckSystemDeps(cfg) {
		if !status.Available {
			t.Fatalf("expected stubbed %s to be available: %s", status.Name, status.Detail)
		}
	}
}

func TestRunAllIncludesCoreChecks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := RunAll(context.Background(), cfg)
	names := make(map[string]bool, len(results))
	for _, r := range results {
		names[r.Name] = true
	}
	for _, want := range []string{"Data directory", "State directory", "Recipe directory", "Data layout", "Corpus", "Run ledger"} {
		if !names[want] {
			t.Fatalf("RunAll missing %q check", want)
		}
	}
}
