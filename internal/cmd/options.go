package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/ananke/internal/component"
	"github.com/felixgeelhaar/ananke/internal/config"
	"github.com/felixgeelhaar/ananke/internal/log"
)

// linkOptions are the inputs shared by link and plan.
type linkOptions struct {
	configPath     string
	components     []string
	targetHost     string
	forceUpdateAll bool
	pull           bool
	workdir        string
	retries        int
	maxParallel    int
	keepGoing      bool
	noColor        bool
}

func (o *linkOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "config file (default ./ananke.yaml)")
	f.StringSliceVarP(&o.components, "microfrontends", "m", nil, "component specifiers, group/name[@version]")
	f.StringVarP(&o.targetHost, "target-host", "t", "", "git host to clone from, e.g. github.com")
	f.BoolVarP(&o.forceUpdateAll, "force-update-all", "f", false, "reinstall dependencies of every component")
	f.BoolVarP(&o.pull, "pull", "p", false, "pull after fetching")
	f.StringVar(&o.workdir, "workdir", ".", "directory components are cloned into")
	f.IntVar(&o.retries, "retries", 2, "retries for network operations (clone, fetch, pull, install)")
	f.IntVar(&o.maxParallel, "max-parallel", 0, "cap on concurrent fetch and install tasks (0 = no cap)")
	f.BoolVar(&o.keepGoing, "keep-going", false, "continue with the components that succeeded when others fail")
	f.BoolVar(&o.noColor, "no-color", false, "disable colored output")
}

// resolve layers explicitly set flags over the loaded configuration and
// parses the component specifiers. Positional arguments are extra specifiers.
func (o *linkOptions) resolve(cmd *cobra.Command, args []string) (*config.Config, component.Set, error) {
	cfg, err := config.NewLoader().Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	f := cmd.Flags()
	if f.Changed("microfrontends") || len(args) > 0 {
		cfg.Components = append(append([]string{}, o.components...), args...)
	}
	if f.Changed("target-host") {
		cfg.TargetHost = o.targetHost
	}
	if f.Changed("force-update-all") {
		cfg.ForceUpdateAll = o.forceUpdateAll
	}
	if f.Changed("pull") {
		cfg.Pull = o.pull
	}
	if f.Changed("workdir") {
		cfg.Workdir = o.workdir
	}
	if f.Changed("retries") {
		cfg.Retries = o.retries
	}
	if f.Changed("max-parallel") {
		cfg.MaxParallel = o.maxParallel
	}
	if f.Changed("keep-going") {
		cfg.KeepGoing = o.keepGoing
	}
	if f.Changed("log-level") {
		cfg.Log.Level, _ = f.GetString("log-level")
	}
	if f.Changed("log-format") {
		cfg.Log.Format, _ = f.GetString("log-format")
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	set, err := component.ParseAll(cfg.Components)
	if err != nil {
		return nil, nil, err
	}

	log.SetDefaultLogger(log.New(log.ConfigFrom(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())))
	return cfg, set, nil
}
