package task

import (
	"github.com/felixgeelhaar/ananke/internal/component"
)

// DefaultDependencyDir is the directory whose presence means dependencies are installed.
const DefaultDependencyDir = "node_modules"

// Builder creates the phase groups for a component set. Groups should be
// built right before their phase runs so that probes see the state left by
// the previous phase.
type Builder struct {
	Probe          Prober
	Host           string
	Pull           bool
	ForceUpdateAll bool
	DependencyDir  string
}

// ProbeFailure records a component whose state could not be inspected while
// building a group.
type ProbeFailure struct {
	Component component.Descriptor
	Err       error
}

// FetchGroup returns one Fetch per component.
func (b *Builder) FetchGroup(set component.Set) Group {
	g := Group{Phase: PhaseFetch, Tasks: make([]Task, 0, len(set))}
	for _, d := range set {
		g.Tasks = append(g.Tasks, Fetch{Target: d, Host: b.Host, Pull: b.Pull})
	}
	return g
}

// InstallGroup returns one Install per component lacking its dependency
// directory, or per component when ForceUpdateAll is set.
func (b *Builder) InstallGroup(set component.Set) (Group, []ProbeFailure) {
	g := Group{Phase: PhaseInstall}
	var failures []ProbeFailure
	for _, d := range set {
		if !b.ForceUpdateAll {
			installed, err := b.Probe.Exists(d.Name(), b.dependencyDir())
			if err != nil {
				failures = append(failures, ProbeFailure{Component: d, Err: err})
				continue
			}
			if installed {
				continue
			}
		}
		g.Tasks = append(g.Tasks, Install{Target: d, Force: b.ForceUpdateAll})
	}
	return g, failures
}

// RunGroup returns one Run per component.
func (b *Builder) RunGroup(set component.Set) Group {
	g := Group{Phase: PhaseRun, Tasks: make([]Task, 0, len(set))}
	for _, d := range set {
		g.Tasks = append(g.Tasks, Run{Target: d})
	}
	return g
}

func (b *Builder) dependencyDir() string {
	if b.DependencyDir == "" {
		return DefaultDependencyDir
	}
	return b.DependencyDir
}
