package task

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/ananke/internal/component"
)

// Phase names one stage of a link run.
type Phase string

const (
	PhaseFetch   Phase = "fetch"
	PhaseInstall Phase = "install"
	PhaseRun     Phase = "run"
)

// Phases lists the phases in execution order.
var Phases = []Phase{PhaseFetch, PhaseInstall, PhaseRun}

// Task is one side-effecting operation on one component. The set of
// implementations is closed: Fetch, Install and Run.
type Task interface {
	Phase() Phase
	Component() component.Descriptor
	Execute(ctx context.Context, env *Env) error
	// Describe summarizes what Execute will do, for plans and dry runs.
	Describe() string

	sealed()
}

// Group is an ordered list of independent tasks of one phase.
type Group struct {
	Phase Phase
	Tasks []Task
}

// Len returns the number of tasks in the group.
func (g Group) Len() int {
	return len(g.Tasks)
}

// Fetch makes sure the component's sources exist and are at the requested version.
type Fetch struct {
	Target component.Descriptor
	Host   string
	Pull   bool
}

func (Fetch) sealed() {}

// Phase returns PhaseFetch.
func (f Fetch) Phase() Phase { return PhaseFetch }

// Component returns the fetched component.
func (f Fetch) Component() component.Descriptor { return f.Target }

// Describe lists the steps of the fetch.
func (f Fetch) Describe() string {
	steps := []string{"clone " + f.Target.RepoURL(f.Host) + " if missing", "fetch --all"}
	if f.Pull {
		steps = append(steps, "pull")
	}
	switch {
	case f.Target.UsesWorkingCopyAsIs():
		steps = append(steps, "keep working copy")
	case f.Target.RequiresNewLocalBranch():
		steps = append(steps, fmt.Sprintf("checkout %s on a new local branch", f.Target.TargetRef()))
	default:
		steps = append(steps, "checkout "+f.Target.TargetRef())
	}
	return strings.Join(steps, ", ")
}

// Execute clones when needed, fetches, optionally pulls and checks out the
// target ref. Checkout is skipped when the working copy is already there.
func (f Fetch) Execute(ctx context.Context, env *Env) error {
	d := f.Target
	dir := env.Dir(d.Name())
	logger := env.logger(d, PhaseFetch)
	vcs := env.Toolchain.VCS(d.Name())

	exists, err := env.Probe.Exists(d.Name())
	if err != nil {
		return err
	}
	if !exists {
		logger.InfoContext(ctx, "cloning", "url", d.RepoURL(f.Host))
		if err := vcs.Clone(ctx, d.RepoURL(f.Host), dir); err != nil {
			return err
		}
	}

	if err := vcs.FetchAll(ctx, dir); err != nil {
		return err
	}

	if f.Pull {
		if err := vcs.Pull(ctx, dir); err != nil {
			return err
		}
	}

	if d.UsesWorkingCopyAsIs() {
		logger.DebugContext(ctx, "using working copy as-is")
		return nil
	}

	return f.checkout(ctx, env, vcs, dir)
}

func (f Fetch) checkout(ctx context.Context, env *Env, vcs VCS, dir string) error {
	d := f.Target
	target := d.TargetRef()
	logger := env.logger(d, PhaseFetch)

	current, err := vcs.CurrentRef(ctx, dir)
	if err != nil {
		return err
	}
	if current == target {
		logger.DebugContext(ctx, "already on target ref", "ref", target)
		return nil
	}

	if !d.RequiresNewLocalBranch() {
		logger.InfoContext(ctx, "checking out", "ref", target, "from", current)
		return vcs.Checkout(ctx, dir, target, "")
	}

	// After a previous run HEAD sits on a generated branch at the target commit.
	head, headErr := vcs.ResolveCommit(ctx, dir, "HEAD")
	want, wantErr := vcs.ResolveCommit(ctx, dir, target)
	if headErr == nil && wantErr == nil && head != "" && head == want {
		logger.DebugContext(ctx, "HEAD already at target commit", "ref", target, "commit", head)
		return nil
	}

	branch := env.branchName()
	logger.InfoContext(ctx, "checking out", "ref", target, "branch", branch)
	return vcs.Checkout(ctx, dir, target, branch)
}

// Install installs the component's dependencies.
type Install struct {
	Target component.Descriptor
	Force  bool
}

func (Install) sealed() {}

// Phase returns PhaseInstall.
func (i Install) Phase() Phase { return PhaseInstall }

// Component returns the component whose dependencies are installed.
func (i Install) Component() component.Descriptor { return i.Target }

// Describe summarizes the install.
func (i Install) Describe() string {
	if i.Force {
		return "reinstall dependencies"
	}
	return "install dependencies"
}

// Execute runs the package manager install.
func (i Install) Execute(ctx context.Context, env *Env) error {
	env.logger(i.Target, PhaseInstall).InfoContext(ctx, "installing dependencies", "forced", i.Force)
	return env.Toolchain.Packages(i.Target.Name()).Install(ctx, env.Dir(i.Target.Name()))
}

// Run starts the component. It blocks for as long as the component runs.
type Run struct {
	Target component.Descriptor
}

func (Run) sealed() {}

// Phase returns PhaseRun.
func (r Run) Phase() Phase { return PhaseRun }

// Component returns the started component.
func (r Run) Component() component.Descriptor { return r.Target }

// Describe summarizes the run.
func (r Run) Describe() string { return "start" }

// Execute starts the component and waits for it to exit.
func (r Run) Execute(ctx context.Context, env *Env) error {
	env.logger(r.Target, PhaseRun).InfoContext(ctx, "starting")
	return env.Toolchain.Packages(r.Target.Name()).Start(ctx, env.Dir(r.Target.Name()))
}
