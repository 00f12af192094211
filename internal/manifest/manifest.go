// Package manifest knows the on-disk naming of lhotse manifests and can count
// records without parsing them.
package manifest

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	DefaultPrefix    = "ljspeech"
	DefaultPartition = "all"
	Suffix           = "jsonl.gz"
)

// Manifest kinds produced by the recipe.
const (
	KindRecordings     = "recordings"
	KindSupervisions   = "supervisions"
	KindCuts           = "cuts"
	KindCutsWithTokens = "cuts_with_tokens"
)

// Name returns "<prefix>_<kind>_<partition>.jsonl.gz".
func Name(prefix, kind, partition string) string {
	return fmt.Sprintf("%s_%s_%s.%s", prefix, kind, partition, Suffix)
}

// CountCuts counts newline-terminated records in a gzip-compressed JSONL
// manifest. A trailing record without a newline is counted too.
func CountCuts(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("read manifest %s: %w", path, err)
	}
	defer zr.Close()

	return countLines(zr)
}

func countLines(r io.Reader) (int, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	count := 0
	for {
		line, err := reader.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			count++
		}
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return 0, fmt.Errorf("count manifest records: %w", err)
		}
	}
}
