package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ttsprep/internal/collab"
	"ttsprep/internal/config"
	"ttsprep/internal/ledger"
	"ttsprep/internal/logging"
	"ttsprep/internal/marker"
	"ttsprep/internal/pipeline"
	"ttsprep/internal/recipe"
	"ttsprep/internal/runlock"
)

type runOptions struct {
	stage     int
	stopStage int
	dlDir     string
	dryRun    bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the preparation stages in [stage, stop-stage]",
		Long: "Run executes every recipe stage whose index lies in the inclusive range\n" +
			"[--stage, --stop-stage]. Steps whose completion marker exists are skipped;\n" +
			"the first failing step stops the run and sets the exit status.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyRunFlags(cmd, cfg, opts); err != nil {
				return err
			}
			rng := pipeline.Range{Start: cfg.Run.Stage, Stop: cfg.Run.StopStage}
			if opts.dryRun {
				return printPlan(cmd.OutOrStdout(), ctx, cfg, rng)
			}
			return executeRun(cmd.Context(), cmd.OutOrStdout(), cfg, rng)
		},
	}

	cmd.Flags().IntVar(&opts.stage, "stage", 0, "First stage to run (inclusive; overrides TTSPREP_STAGE)")
	cmd.Flags().IntVar(&opts.stopStage, "stop-stage", 0, "Last stage to run (inclusive; overrides TTSPREP_STOP_STAGE)")
	cmd.Flags().StringVar(&opts.dlDir, "dl-dir", "", "Download directory (overrides DL_DIR)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Show which steps would run without executing them")
	return cmd
}

// applyRunFlags layers explicit flags over environment and file settings.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, opts runOptions) error {
	flags := cmd.Flags()
	if flags.Changed("stage") {
		cfg.Run.Stage = opts.stage
	}
	if flags.Changed("stop-stage") {
		cfg.Run.StopStage = opts.stopStage
	}
	if flags.Changed("dl-dir") {
		dir := strings.TrimSpace(opts.dlDir)
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return fmt.Errorf("resolve --dl-dir: %w", err)
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return fmt.Errorf("resolve --dl-dir: %w", err)
		}
		cfg.Paths.DownloadDir = abs
	}
	return cfg.Validate()
}

func executeRun(ctx context.Context, out io.Writer, cfg *config.Config, rng pipeline.Range) (runErr error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logging.NewComponentLogger(logger, "ttsprep")

	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	runID := uuid.NewString()
	runnerOpts := []pipeline.RunnerOption{pipeline.WithRunID(runID)}

	store, err := ledger.Open(cfg)
	if err != nil {
		logger.Warn("run ledger unavailable; history will not be recorded",
			logging.String("ledger", cfg.LedgerPath()),
			logging.Error(err),
		)
		store = nil
	}
	if store != nil {
		defer store.Close()
		if err := store.RecordRun(ctx, runID, rng, cfg.Paths.DataDir); err != nil {
			logger.Warn("failed to record run", logging.Error(err))
		} else {
			runnerOpts = append(runnerOpts, pipeline.WithObserver(store))
			defer func() {
				if err := store.FinishRun(context.WithoutCancel(ctx), runID, runErr); err != nil {
					logger.Warn("failed to record run result", logging.Error(err))
				}
			}()
		}
	}

	pc := pipeline.NewContext(cfg, collab.NewExec(logger), marker.Store{}, logger)
	stages, err := recipe.Build(pc)
	if err != nil {
		return err
	}

	report, runErr := pipeline.NewRunner(pc, runnerOpts...).Run(ctx, stages, rng)
	fmt.Fprintln(out, renderReport(report, shouldColorize(out)))
	return runErr
}
