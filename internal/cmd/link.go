package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/ananke/internal/component"
	"github.com/felixgeelhaar/ananke/internal/fsprobe"
	"github.com/felixgeelhaar/ananke/internal/log"
	"github.com/felixgeelhaar/ananke/internal/progress"
	"github.com/felixgeelhaar/ananke/internal/scheduler"
	"github.com/felixgeelhaar/ananke/internal/task"
	"github.com/felixgeelhaar/ananke/internal/telemetry"
)

func newLinkCommand() *cobra.Command {
	opts := &linkOptions{}
	var (
		dryRun  bool
		noRun   bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "link [specifier...]",
		Short: "Fetch, install and run a set of components",
		Long: `Fetch, install and run a set of components.

Each component is cloned into <workdir>/<name> if missing, fetched and checked
out at the requested version. Dependencies are installed where missing (or
everywhere with --force-update-all), then every component is started. Each
phase runs its components concurrently and finishes before the next begins.

Versions:
  latest           the master branch
  current/omitted  the working copy as it is
  <hex, 5-40>      a commit, on a new local branch
  <digit or dot>…  a tag (tag/<version>), on a new local branch
  anything else    a branch`,
		Example: `  ananke link -t github.com -m betbook/shell@develop -m betbook/casino@1.4.2
  ananke link -t github.com -m betbook/shell,betbook/betslip@latest --pull
  ananke link --config ci.yaml --no-run --keep-going`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, set, err := opts.resolve(cmd, args)
			if err != nil {
				return err
			}
			logger := log.DefaultLogger()

			tcfg := telemetryConfig(cfg)
			shutdownTraces, err := telemetry.InitProvider(cmd.Context(), tcfg)
			if err != nil {
				return err
			}
			shutdownMetrics, err := telemetry.InitMetricsProvider(cmd.Context(), tcfg)
			if err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), 5*time.Second)
				defer cancel()
				if err := shutdownTraces(ctx); err != nil {
					logger.WithError(err).Warn("failed to flush traces")
				}
				if err := shutdownMetrics(ctx); err != nil {
					logger.WithError(err).Warn("failed to flush metrics")
				}
			}()

			console := progress.NewConsole(cmd.OutOrStdout(), opts.noColor)
			tools := newToolchain(newRunner(cfg, dryRun, console, logger), cfg.Tools, console)
			defer tools.Flush()

			probe := fsprobe.New(cfg.Workdir)
			env := &task.Env{
				Toolchain: tools,
				Probe:     probe,
				Workdir:   cfg.Workdir,
				Logger:    logger,
			}

			reporter := progress.NewReporter(console)
			reporter.Verbose = verbose

			sched := scheduler.New(env, logger)
			sched.MaxParallel = cfg.MaxParallel
			sched.Observer = reporter
			sched.OnStateChange = func(phase task.Phase, s scheduler.State) {
				logger.Debug("scheduler state", "phase", string(phase), "state", s.String())
			}

			pipeline := &scheduler.Pipeline{
				Builder:   newBuilder(cfg, probe),
				Scheduler: sched,
				KeepGoing: cfg.KeepGoing,
				Observer:  reporter,
				SkipRun:   noRun,
			}

			fmt.Fprintf(console, "Linking %d component(s) from %s: %s\n", len(set), cfg.TargetHost, strings.Join(specifiers(set), " "))
			if dryRun {
				fmt.Fprintln(console, "Dry run: commands are printed, not executed")
			}

			summary, err := pipeline.Execute(cmd.Context(), set)
			tools.Flush()
			reporter.PrintSummary(summary)
			if err != nil {
				return err
			}
			if noRun {
				fmt.Fprintln(console, "✓ All components fetched and installed")
			} else {
				fmt.Fprintln(console, "✓ All components exited")
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the commands instead of running them")
	cmd.Flags().BoolVar(&noRun, "no-run", false, "stop after installing dependencies")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print a line when each task starts")
	return cmd
}

func specifiers(set component.Set) []string {
	out := make([]string, len(set))
	for i, d := range set {
		out[i] = d.String()
	}
	return out
}
