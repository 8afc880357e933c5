package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/ananke/internal/config"
	"github.com/felixgeelhaar/ananke/internal/errors"
	"github.com/felixgeelhaar/ananke/internal/exec"
	"github.com/felixgeelhaar/ananke/internal/health"
	"github.com/felixgeelhaar/ananke/internal/progress"
)

func newDoctorCommand() *cobra.Command {
	var (
		configPath string
		workdir    string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that git, the package manager and the working directory are usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workdir") {
				cfg.Workdir = workdir
			}

			runner := exec.NewLocalRunner()
			manager := health.NewManager(
				health.NewGitChecker(runner, cfg.Tools.Git),
				health.NewPackageManagerChecker(runner, cfg.Tools.PackageManager),
				health.NewWorkdirChecker(cfg.Workdir),
			)
			checks := manager.Check(cmd.Context())
			overall := health.OverallStatus(checks)

			if output != progress.FormatText {
				formatter, err := progress.NewFormatter(output, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if err := formatter.Format(map[string]any{"status": overall, "checks": checks}); err != nil {
					return err
				}
			} else {
				printChecks(cmd, checks, overall)
			}

			if overall == health.StatusUnhealthy {
				return errors.NewConfigInvalidError("one or more required tools are not usable").
					WithSuggestion("Fix the failing checks above, or point tools.git / tools.package_manager at working binaries")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default ./ananke.yaml)")
	cmd.Flags().StringVar(&workdir, "workdir", ".", "directory components are cloned into")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json, yaml)")
	return cmd
}

func printChecks(cmd *cobra.Command, checks []health.Check, overall health.Status) {
	out := cmd.OutOrStdout()
	for _, c := range checks {
		symbol := "✓"
		switch c.Result.Status {
		case health.StatusDegraded:
			symbol = "⚠"
		case health.StatusUnhealthy:
			symbol = "✗"
		}
		fmt.Fprintf(out, "%s %-16s %s\n", symbol, c.Name, c.Result.Message)

		keys := make([]string, 0, len(c.Result.Details))
		for k := range c.Result.Details {
			if k != "version" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "    %s: %s\n", k, c.Result.Details[k])
		}
	}
	fmt.Fprintf(out, "\nOverall: %s\n", overall)
}
