package testsupport_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"ttsprep/internal/testsupport"
)

func TestWithStubbedBinariesScopesPath(t *testing.T) {
	before := os.Getenv("PATH")

	var binDir string
	t.Run("stubbed", func(t *testing.T) {
		cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ttsprep-stub-tool"))
		binDir = filepath.Join(testsupport.BaseDir(cfg), "bin")

		path, err := exec.LookPath("ttsprep-stub-tool")
		if err != nil {
			t.Fatalf("expected stub on PATH: %v", err)
		}
		if filepath.Dir(path) != binDir {
			t.Fatalf("stub resolved to %s, want %s", path, binDir)
		}
	})

	if got := os.Getenv("PATH"); got != before {
		t.Fatalf("PATH not restored after subtest: %q", got)
	}
	if _, err := exec.LookPath("ttsprep-stub-tool"); err == nil {
		t.Fatal("stub still resolvable after subtest")
	}
}
