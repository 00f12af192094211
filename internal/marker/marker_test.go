package marker

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathConvention(t *testing.T) {
	got := Path("/data/fbank", "ljspeech-validated")
	if got != filepath.Join("/data/fbank", ".ljspeech-validated.done") {
		t.Fatalf("unexpected marker path %q", got)
	}
	if !IsMarker(".ljspeech.done") || IsMarker("ljspeech.done") || IsMarker(".done") {
		t.Fatal("unexpected IsMarker classification")
	}
}

func TestMarkExistsClear(t *testing.T) {
	store := Store{}
	path := Path(filepath.Join(t.TempDir(), "manifests"), "ljspeech")

	ok, err := store.Exists(path)
	if err != nil || ok {
		t.Fatalf("expected absent marker, got ok=%v err=%v", ok, err)
	}
	if err := store.Mark(path); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat marker: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("expected zero-byte marker, got %d bytes", info.Size())
	}
	if ok, _ := store.Exists(path); !ok {
		t.Fatal("expected marker to exist after Mark")
	}
	if err := store.Clear(path); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(path); err != nil {
		t.Fatalf("second Clear should be a no-op: %v", err)
	}
	if ok, _ := store.Exists(path); ok {
		t.Fatal("expected marker to be gone after Clear")
	}
}

func TestExistsRejectsDirectory(t *testing.T) {
	path := Path(t.TempDir(), "odd")
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := (Store{}).Exists(path); err == nil {
		t.Fatal("expected error for directory in marker position")
	}
}

func TestListFindsNestedMarkers(t *testing.T) {
	root := t.TempDir()
	store := Store{}
	for _, p := range []string{
		Path(filepath.Join(root, "manifests"), "ljspeech"),
		Path(filepath.Join(root, "fbank"), "ljspeech_split"),
		Path(root, "tokens"),
	} {
		if err := store.Mark(p); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "tokens.txt"), []byte("a 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, err := store.List(root)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(found) != 3 {
		t.Fatalf("expected 3 markers, got %v", found)
	}

	missing, err := store.List(filepath.Join(root, "nope"))
	if err != nil || len(missing) != 0 {
		t.Fatalf("expected empty list for missing root, got %v %v", missing, err)
	}
}
