package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/ananke/internal/component"
	"github.com/felixgeelhaar/ananke/internal/fsprobe"
	"github.com/felixgeelhaar/ananke/internal/progress"
	"github.com/felixgeelhaar/ananke/internal/task"
)

// planStep is one task of a phase as shown by ananke plan.
type planStep struct {
	Component string `json:"component" yaml:"component"`
	Version   string `json:"version" yaml:"version"`
	Kind      string `json:"kind" yaml:"kind"`
	Action    string `json:"action" yaml:"action"`
}

type planPhase struct {
	Phase string     `json:"phase" yaml:"phase"`
	Steps []planStep `json:"steps" yaml:"steps"`
}

type planView struct {
	TargetHost string      `json:"target_host" yaml:"target_host"`
	Workdir    string      `json:"workdir" yaml:"workdir"`
	Phases     []planPhase `json:"phases" yaml:"phases"`
}

// String renders the plan as text.
func (v planView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan for %s (workdir %s)\n", v.TargetHost, v.Workdir)
	for _, p := range v.Phases {
		fmt.Fprintf(&b, "\n%s\n", p.Phase)
		if len(p.Steps) == 0 {
			b.WriteString("  (nothing to do)\n")
			continue
		}
		for _, s := range p.Steps {
			fmt.Fprintf(&b, "  %-16s %-8s %s\n", s.Component, s.Kind, s.Action)
		}
	}
	return b.String()
}

func newPlanCommand() *cobra.Command {
	opts := &linkOptions{}
	var output string

	cmd := &cobra.Command{
		Use:   "plan [specifier...]",
		Short: "Show what link would do without running anything",
		Long: `Show the fetch, install and run phases link would execute for the given
components. Install decisions reflect the working directory as it is now.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, set, err := opts.resolve(cmd, args)
			if err != nil {
				return err
			}
			formatter, err := progress.NewFormatter(output, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			builder := newBuilder(cfg, fsprobe.New(cfg.Workdir))
			return formatter.Format(buildPlan(builder, cfg.Workdir, set))
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json, yaml)")
	return cmd
}

func buildPlan(b *task.Builder, workdir string, set component.Set) planView {
	view := planView{TargetHost: b.Host, Workdir: workdir}

	install, failures := b.InstallGroup(set)
	groups := []task.Group{b.FetchGroup(set), install, b.RunGroup(set)}

	for _, g := range groups {
		phase := planPhase{Phase: string(g.Phase), Steps: []planStep{}}
		for _, t := range g.Tasks {
			phase.Steps = append(phase.Steps, step(t.Component(), t.Describe()))
		}
		if g.Phase == task.PhaseInstall {
			for _, f := range failures {
				phase.Steps = append(phase.Steps, step(f.Component, "cannot inspect: "+firstLine(f.Err.Error())))
			}
		}
		view.Phases = append(view.Phases, phase)
	}
	return view
}

func step(d component.Descriptor, action string) planStep {
	return planStep{
		Component: d.Name(),
		Version:   d.Version(),
		Kind:      d.Kind().String(),
		Action:    action,
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
