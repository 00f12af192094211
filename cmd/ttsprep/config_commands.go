package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ttsprep/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		local      bool
		force      bool
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the sample configuration",
		Long:        "Write the sample configuration to ~/.config/ttsprep/config.toml, to ./ttsprep.toml with --local, or to --path.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configInitTarget(targetPath, local)
			if err != nil {
				return err
			}
			if _, err := os.Stat(target); err == nil {
				if !force {
					return fmt.Errorf("%s already exists (pass --force to replace it)", target)
				}
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("check config path: %w", err)
			}

			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s\n", target)
			fmt.Fprintln(out, "Point [paths] recipe_dir at the directory holding local/ and dl_dir at the corpus download root.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Write the configuration to this file")
	cmd.Flags().BoolVar(&local, "local", false, "Write ./ttsprep.toml instead of the user configuration")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing file")
	cmd.MarkFlagsMutuallyExclusive("path", "local")
	return cmd
}

func configInitTarget(path string, local bool) (string, error) {
	if path = strings.TrimSpace(path); path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return expanded, nil
	}
	if local {
		return config.ProjectConfigPath()
	}
	return config.DefaultConfigPath()
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and print the resolved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			source := ctx.configPath
			if !ctx.configSeen {
				source += " (not found, defaults used)"
			}
			rows := [][]string{
				{"config", source},
				{"dl_dir", cfg.Paths.DownloadDir},
				{"data_dir", cfg.Paths.DataDir},
				{"recipe_dir", cfg.Paths.RecipeDir},
				{"state_dir", cfg.Paths.StateDir},
				{"stages", fmt.Sprintf("%d..%d", cfg.Run.Stage, cfg.Run.StopStage)},
				{"dataset", cfg.Dataset.Name},
				{"split", "valid=" + strconv.Itoa(cfg.Dataset.ValidCuts) + " test=" + strconv.Itoa(cfg.Dataset.TestCuts)},
				{"tools", cfg.Tools.Python + ", " + cfg.Tools.Lhotse},
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
