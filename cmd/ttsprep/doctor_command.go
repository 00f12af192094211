package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ttsprep/internal/collab"
	"ttsprep/internal/deps"
	"ttsprep/internal/logging"
	"ttsprep/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var skipPython bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check tools, Python packages, and directories the recipe needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			w := newCheckWriter(cmd.OutOrStdout())
			printDeps := func(statuses []deps.Status) {
				for _, status := range statuses {
					switch {
					case status.Available:
						w.check(checkPass, status.Name, status.Path)
					case status.Optional:
						w.check(checkWarn, status.Name, status.Detail)
					default:
						w.check(checkFail, status.Name, status.Detail)
					}
				}
			}

			w.section("Configuration")
			source := ctx.configPath
			if !ctx.configSeen {
				source = "defaults (no config file)"
			}
			w.check(checkInfo, "config", source)
			w.check(checkInfo, "dataset", cfg.Dataset.Name)
			w.check(checkInfo, "stage range", fmt.Sprintf("%d..%d", cfg.Run.Stage, cfg.Run.StopStage))

			w.section("Executables")
			printDeps(preflight.CheckSystemDeps(cfg))

			if !skipPython {
				w.section("Python packages")
				runner := collab.NewExec(logging.NewNop())
				printDeps(preflight.CheckPythonDeps(cmd.Context(), cfg, runner))
			}

			w.section("Filesystem")
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				level := checkPass
				if !result.Passed {
					level = checkFail
				}
				w.check(level, result.Name, result.Detail)
			}

			if w.failures > 0 {
				return fmt.Errorf("doctor found %d problem(s)", w.failures)
			}
			fmt.Fprintln(w.out, "\nAll checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipPython, "skip-python", false, "Skip probing Python package imports")
	return cmd
}
