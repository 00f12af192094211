package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Filter reports whether a log line should be shown. A nil Filter keeps everything.
type Filter func(line string) bool

func (f Filter) keep(line string) bool {
	return f == nil || f(line)
}

// StageFilter keeps lines emitted by the named stage.
func StageFilter(stage string) Filter {
	stage = strings.TrimSpace(stage)
	if stage == "" {
		return nil
	}
	console := []string{"· " + stage + ":", "· " + stage + "/"}
	jsonField := fmt.Sprintf("%q:%q", "stage", stage)
	return func(line string) bool {
		if strings.Contains(line, jsonField) {
			return true
		}
		for _, marker := range console {
			if strings.Contains(line, marker) {
				return true
			}
		}
		return false
	}
}

// Last returns up to limit trailing lines that pass filter, plus the offset
// at which following should resume. A missing file yields no lines.
func Last(path string, limit int, filter Filter) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if info, err := file.Stat(); err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	} else if info.IsDir() {
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}

	if limit <= 0 {
		size, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, size, nil
	}

	ring := make([]string, limit)
	count, idx := 0, 0
	offset, err := scanComplete(file, 0, func(line string) {
		if !filter.keep(line) {
			return
		}
		ring[idx] = line
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	})
	if err != nil {
		return nil, 0, err
	}

	lines := make([]string, count)
	if count == limit {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, offset, nil
}

// Since returns complete lines written after offset. A partial trailing line
// is left for the next call. A truncated file restarts from the beginning.
func Since(path string, offset int64, filter Filter) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}

	var lines []string
	next, err := scanComplete(file, offset, func(line string) {
		if filter.keep(line) {
			lines = append(lines, line)
		}
	})
	if err != nil {
		return nil, offset, err
	}
	return lines, next, nil
}

// Follow emits new lines as they are appended, polling every interval, until
// ctx is cancelled. Cancellation is not reported as an error.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, filter Filter, emit func(string)) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		lines, next, err := Since(path, offset, filter)
		if err != nil {
			return err
		}
		for _, line := range lines {
			emit(line)
		}
		offset = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// scanComplete calls fn for each newline-terminated line from offset and
// returns the offset just past the last complete line.
func scanComplete(file *os.File, offset int64, fn func(string)) (int64, error) {
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	reader := bufio.NewReaderSize(file, 64*1024)
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			return offset, nil
		}
		if err != nil {
			return offset, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(line))
		fn(strings.TrimRight(line, "\r\n"))
	}
}
