package recipe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"ttsprep/internal/logging"
	"ttsprep/internal/manifest"
	"ttsprep/internal/marker"
	"ttsprep/internal/pipeline"
	"ttsprep/internal/services"
)

const (
	scriptDir      = "local"
	partitionAll   = manifest.DefaultPartition
	validTestSplit = "validtest"
)

// Layout resolves every path the LJSpeech recipe touches.
type Layout struct {
	Prefix       string
	Corpus       string
	ManifestDir  string
	FbankDir     string
	TokensFile   string
	MonotonicDir string
}

// NewLayout derives the recipe layout from pc.
func NewLayout(pc *pipeline.Context) Layout {
	prefix := pc.Dataset.Name
	if prefix == "" {
		prefix = manifest.DefaultPrefix
	}
	return Layout{
		Prefix:       prefix,
		Corpus:       filepath.Join(pc.DownloadDir, pc.Dataset.CorpusDir),
		ManifestDir:  pc.Data("manifests"),
		FbankDir:     pc.Data("fbank"),
		TokensFile:   pc.Data("tokens.txt"),
		MonotonicDir: pc.Recipe(pc.Dataset.ModelDir, "monotonic_align"),
	}
}

// Manifest returns the path of a manifest under the manifests directory.
func (l Layout) Manifest(kind string) string {
	return filepath.Join(l.ManifestDir, manifest.Name(l.Prefix, kind, partitionAll))
}

// Cuts returns the path of a cuts split under the fbank directory.
func (l Layout) Cuts(split string) string {
	return filepath.Join(l.FbankDir, manifest.Name(l.Prefix, manifest.KindCuts, split))
}

// LJSpeech returns stages -1 through 5 of the LJSpeech TTS recipe.
func LJSpeech(pc *pipeline.Context) []pipeline.Stage {
	l := NewLayout(pc)
	python := pc.Tools.Python
	lhotse := pc.Tools.Lhotse

	return []pipeline.Stage{
		{
			Index:       -1,
			Name:        "build-monotonic-align",
			Description: "Build the monotonic_align C extension",
			Steps: []pipeline.Step{{
				Name:   "build-monotonic-align",
				Marker: marker.Path(l.MonotonicDir, "build"),
				Inputs: []string{filepath.Join(l.MonotonicDir, "setup.py")},
				Tools:  []string{python},
				Run: func(ctx context.Context, pc *pipeline.Context) error {
					return pc.ExecIn(ctx, l.MonotonicDir, python, "setup.py", "build_ext", "--inplace")
				},
			}},
		},
		{
			Index:       0,
			Name:        "download",
			Description: "Download the LJSpeech corpus",
			Steps: []pipeline.Step{{
				Name: "download",
				Run: func(ctx context.Context, pc *pipeline.Context) error {
					return downloadCorpus(ctx, pc, l)
				},
			}},
		},
		{
			Index:       1,
			Name:        "prepare-manifest",
			Description: "Prepare LJSpeech recordings and supervisions manifests",
			Steps: []pipeline.Step{{
				Name:   "prepare-manifest",
				Marker: marker.Path(l.ManifestDir, l.Prefix),
				Inputs: []string{l.Corpus},
				Tools:  []string{lhotse},
				Run: func(ctx context.Context, pc *pipeline.Context) error {
					if err := os.MkdirAll(l.ManifestDir, 0o755); err != nil {
						return fmt.Errorf("create manifest dir: %w", err)
					}
					return pc.Lhotse(ctx, "prepare", l.Prefix, l.Corpus, l.ManifestDir)
				},
			}},
		},
		{
			Index:       2,
			Name:        "compute-fbank",
			Description: "Compute spectrogram features and validate the cuts manifest",
			Steps: []pipeline.Step{
				{
					Name:   "compute-fbank",
					Marker: marker.Path(l.FbankDir, l.Prefix),
					Inputs: []string{l.Manifest(manifest.KindRecordings), l.Manifest(manifest.KindSupervisions)},
					Tools:  []string{python},
					Run: func(ctx context.Context, pc *pipeline.Context) error {
						if err := os.MkdirAll(l.FbankDir, 0o755); err != nil {
							return fmt.Errorf("create fbank dir: %w", err)
						}
						return pc.Python(ctx, script("compute_fbank_ljspeech.py"))
					},
				},
				{
					Name:   "validate-manifest",
					Marker: marker.Path(l.FbankDir, l.Prefix+"-validated"),
					Inputs: []string{l.Cuts(partitionAll)},
					Tools:  []string{python},
					Run: func(ctx context.Context, pc *pipeline.Context) error {
						return pc.Python(ctx, script("validate_manifest.py"), l.Cuts(partitionAll))
					},
				},
			},
		},
		{
			Index:       3,
			Name:        "prepare-tokens",
			Description: "Attach phoneme tokens to every cut",
			Steps: []pipeline.Step{{
				Name:   "prepare-tokens",
				Marker: marker.Path(l.FbankDir, l.Prefix+"_with_token"),
				Inputs: []string{l.Cuts(partitionAll)},
				Tools:  []string{python},
				Run: func(ctx context.Context, pc *pipeline.Context) error {
					return prepareTokens(ctx, pc, l)
				},
			}},
		},
		{
			Index:       4,
			Name:        "split",
			Description: "Split cuts into train, valid, and test subsets",
			Steps: []pipeline.Step{{
				Name:   "split",
				Marker: marker.Path(l.FbankDir, l.Prefix+"_split"),
				Inputs: []string{l.Cuts(partitionAll)},
				Tools:  []string{lhotse},
				Run: func(ctx context.Context, pc *pipeline.Context) error {
					return splitCuts(ctx, pc, l)
				},
			}},
		},
		{
			Index:       5,
			Name:        "token-file",
			Description: "Generate the token table data/tokens.txt",
			Steps: []pipeline.Step{{
				Name:   "token-file",
				Marker: marker.Path(pc.DataDir, "tokens"),
				Tools:  []string{python},
				Run: func(ctx context.Context, pc *pipeline.Context) error {
					return pc.Python(ctx, script("prepare_token_file.py"), "--tokens", l.TokensFile)
				},
			}},
		},
	}
}

func script(name string) string {
	return "./" + scriptDir + "/" + name
}

func downloadCorpus(ctx context.Context, pc *pipeline.Context, l Layout) error {
	logger := logging.WithContext(ctx, pc.Logger)
	info, err := os.Stat(l.Corpus)
	switch {
	case err == nil && info.IsDir():
		logger.Info("corpus already present; skipping download",
			logging.String(logging.FieldEventType, "download_skip"),
			logging.String("corpus", l.Corpus),
		)
		return nil
	case err == nil:
		return services.Wrap(services.ErrConfiguration, "download", "inspect corpus",
			fmt.Sprintf("%s exists but is not a directory", l.Corpus), nil)
	case !errors.Is(err, os.ErrNotExist):
		return services.Wrap(services.ErrConfiguration, "download", "inspect corpus", l.Corpus, err)
	}
	if err := os.MkdirAll(pc.DownloadDir, 0o755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}
	return pc.Lhotse(ctx, "download", l.Prefix, pc.DownloadDir)
}

func prepareTokens(ctx context.Context, pc *pipeline.Context, l Layout) error {
	if err := pc.Python(ctx, script("prepare_tokens_ljspeech.py")); err != nil {
		return err
	}
	withTokens := filepath.Join(l.FbankDir, manifest.Name(l.Prefix, manifest.KindCutsWithTokens, partitionAll))
	if err := os.Rename(withTokens, l.Cuts(partitionAll)); err != nil {
		return services.Wrap(services.ErrMissingInput, "prepare-tokens", "replace cuts manifest",
			"tokenized manifest was not produced", err)
	}
	return nil
}

// splitCuts reproduces the recipe split: the last valid+test cuts form a
// temporary pool whose head is valid and tail is test; the rest is train.
func splitCuts(ctx context.Context, pc *pipeline.Context, l Layout) error {
	valid, test := pc.Dataset.ValidCuts, pc.Dataset.TestCuts
	held := valid + test

	total, err := manifest.CountCuts(l.Cuts(partitionAll))
	if err != nil {
		return services.Wrap(services.ErrMissingInput, "split", "count cuts", "", err)
	}
	train := total - held
	if train <= 0 {
		return services.Wrap(services.ErrConfiguration, "split", "size subsets",
			fmt.Sprintf("%d cuts cannot hold %d valid and %d test cuts", total, valid, test), nil)
	}

	pool := l.Cuts(validTestSplit)
	subsets := [][]string{
		{"subset", "--last", strconv.Itoa(held), l.Cuts(partitionAll), pool},
		{"subset", "--first", strconv.Itoa(valid), pool, l.Cuts("valid")},
		{"subset", "--last", strconv.Itoa(test), pool, l.Cuts("test")},
	}
	for _, args := range subsets {
		if err := pc.Lhotse(ctx, args...); err != nil {
			return err
		}
	}
	if err := os.Remove(pool); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", pool, err)
	}
	if err := pc.Lhotse(ctx, "subset", "--first", strconv.Itoa(train), l.Cuts(partitionAll), l.Cuts("train")); err != nil {
		return err
	}

	logging.WithContext(ctx, pc.Logger).Info("cuts split",
		logging.String(logging.FieldEventType, "split_complete"),
		logging.Int("total", total),
		logging.Int("train", train),
		logging.Int("valid", valid),
		logging.Int("test", test),
	)
	return nil
}
