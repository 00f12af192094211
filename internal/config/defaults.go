package config

const (
	defaultDownloadDir  = "download"
	defaultDataDir      = "data"
	defaultRecipeDir    = "."
	defaultStateDirName = ".ttsprep"
	defaultStage        = 0
	defaultStopStage    = 100
	defaultPython       = "python3"
	defaultLhotse       = "lhotse"
	defaultDataset      = "ljspeech"
	defaultCorpusDir    = "LJSpeech-1.1"
	defaultModelDir     = "vits"
	defaultValidCuts    = 100
	defaultTestCuts     = 500
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with recipe defaults. Relative paths are
// resolved against the working directory during Load, mirroring how the
// recipe is always launched from its own directory.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir: defaultDownloadDir,
			DataDir:     defaultDataDir,
			RecipeDir:   defaultRecipeDir,
		},
		Run: Run{
			Stage:     defaultStage,
			StopStage: defaultStopStage,
		},
		Tools: Tools{
			Python: defaultPython,
			Lhotse: defaultLhotse,
		},
		Dataset: Dataset{
			Name:      defaultDataset,
			CorpusDir: defaultCorpusDir,
			ModelDir:  defaultModelDir,
			ValidCuts: defaultValidCuts,
			TestCuts:  defaultTestCuts,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
