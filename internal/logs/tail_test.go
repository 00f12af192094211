package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"ttsprep/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ttsprep.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	lines, offset, err := logs.Last(path, 2, nil)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"b", "c"}) {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if offset != 6 {
		t.Fatalf("expected offset 6, got %d", offset)
	}
}

func TestLastMissingFile(t *testing.T) {
	lines, offset, err := logs.Last(filepath.Join(t.TempDir(), "absent.log"), 5, nil)
	if err != nil || lines != nil || offset != 0 {
		t.Fatalf("expected empty result, got %v %d %v", lines, offset, err)
	}
}

func TestSinceLeavesPartialLine(t *testing.T) {
	path := writeLog(t, "one\ntwo")

	lines, offset, err := logs.Since(path, 0, nil)
	if err != nil {
		t.Fatalf("Since: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"one"}) || offset != 4 {
		t.Fatalf("unexpected result %#v offset=%d", lines, offset)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("\nthree\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	_ = f.Close()

	lines, _, err = logs.Since(path, offset, nil)
	if err != nil {
		t.Fatalf("Since: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"two", "three"}) {
		t.Fatalf("unexpected lines %#v", lines)
	}
}

func TestStageFilter(t *testing.T) {
	path := writeLog(t, ""+
		"2026-01-02 10:00:00 INFO pipeline · compute-fbank: stage started\n"+
		"2026-01-02 10:00:01 INFO pipeline · compute-fbank/validate-manifest: step completed\n"+
		"2026-01-02 10:00:02 INFO pipeline · split: stage started\n"+
		`{"ts":"x","level":"info","msg":"stage started","stage":"compute-fbank"}`+"\n")

	lines, _, err := logs.Last(path, 10, logs.StageFilter("compute-fbank"))
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 compute-fbank lines, got %#v", lines)
	}
	if logs.StageFilter("  ") != nil {
		t.Fatal("blank stage should not filter")
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := writeLog(t, "start\n")
	_, offset, err := logs.Last(path, 1, nil)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var (
		mu  sync.Mutex
		got []string
	)
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, 20*time.Millisecond, nil, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
		})
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if !reflect.DeepEqual(got, []string{"later"}) {
		t.Fatalf("unexpected followed lines %#v", got)
	}
}
