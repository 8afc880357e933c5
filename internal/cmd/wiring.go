package cmd

import (
	"sync"

	"github.com/felixgeelhaar/ananke/internal/config"
	"github.com/felixgeelhaar/ananke/internal/exec"
	"github.com/felixgeelhaar/ananke/internal/fsprobe"
	"github.com/felixgeelhaar/ananke/internal/git"
	"github.com/felixgeelhaar/ananke/internal/log"
	"github.com/felixgeelhaar/ananke/internal/npm"
	"github.com/felixgeelhaar/ananke/internal/progress"
	"github.com/felixgeelhaar/ananke/internal/task"
	"github.com/felixgeelhaar/ananke/internal/telemetry"
	"github.com/felixgeelhaar/ananke/internal/version"
)

// toolchain binds the git and npm clients to one prefixed output stream per
// component.
type toolchain struct {
	git     *git.Client
	npm     *npm.Client
	console *progress.Console

	mu      sync.Mutex
	writers map[string]*progress.PrefixWriter
}

func newToolchain(runner exec.Runner, tools config.ToolsConfig, console *progress.Console) *toolchain {
	pm := npm.New(runner, tools.PackageManager)
	if len(tools.InstallArgs) > 0 {
		pm.InstallArgs = tools.InstallArgs
	}
	if len(tools.StartArgs) > 0 {
		pm.StartArgs = tools.StartArgs
	}
	return &toolchain{
		git:     git.New(runner, tools.Git),
		npm:     pm,
		console: console,
		writers: make(map[string]*progress.PrefixWriter),
	}
}

func (t *toolchain) writer(name string) *progress.PrefixWriter {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.writers[name]
	if !ok {
		w = t.console.Prefixed(name)
		t.writers[name] = w
	}
	return w
}

func (t *toolchain) VCS(name string) task.VCS {
	w := t.writer(name)
	return t.git.WithOutput(w, w)
}

func (t *toolchain) Packages(name string) task.PackageManager {
	w := t.writer(name)
	return t.npm.WithOutput(w, w)
}

// Flush writes out partial lines left by processes that exited mid-line.
func (t *toolchain) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, w := range t.writers {
		_ = w.Flush()
	}
}

// newRunner returns the process runner for a link or plan: local processes,
// or printed commands in dry-run mode, with retries for network operations.
func newRunner(cfg *config.Config, dryRun bool, console *progress.Console, logger *log.Logger) exec.Runner {
	var next exec.Runner = exec.NewLocalRunner()
	if dryRun {
		next = &exec.DryRunner{Out: console}
	}
	return &exec.RetryRunner{
		Next:       next,
		MaxRetries: uint64(cfg.Retries),
		Logger:     logger,
	}
}

// newBuilder creates the task builder for cfg.
func newBuilder(cfg *config.Config, probe *fsprobe.Probe) *task.Builder {
	return &task.Builder{
		Probe:          probe,
		Host:           cfg.TargetHost,
		Pull:           cfg.Pull,
		ForceUpdateAll: cfg.ForceUpdateAll,
		DependencyDir:  cfg.Tools.DependencyDir,
	}
}

func telemetryConfig(cfg *config.Config) telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceVersion = version.GetInfo().Short()
	tc.Enabled = cfg.Telemetry.Enabled
	tc.Endpoint = cfg.Telemetry.Endpoint
	tc.Insecure = cfg.Telemetry.Insecure
	tc.SampleRate = cfg.Telemetry.SampleRate
	return tc
}
