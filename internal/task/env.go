package task

import (
	"context"
	"path/filepath"

	"github.com/felixgeelhaar/ananke/internal/component"
	"github.com/felixgeelhaar/ananke/internal/log"
)

// VCS is the subset of version control operations a fetch needs.
type VCS interface {
	Clone(ctx context.Context, url, dest string) error
	FetchAll(ctx context.Context, dir string) error
	Pull(ctx context.Context, dir string) error
	CurrentRef(ctx context.Context, dir string) (string, error)
	ResolveCommit(ctx context.Context, dir, ref string) (string, error)
	Checkout(ctx context.Context, dir, ref, newBranch string) error
}

// PackageManager installs and starts a component.
type PackageManager interface {
	Install(ctx context.Context, dir string) error
	Start(ctx context.Context, dir string) error
}

// Toolchain hands out clients bound to one component, so their output can be
// attributed to it.
type Toolchain interface {
	VCS(component string) VCS
	Packages(component string) PackageManager
}

// Prober answers existence questions relative to the working directory root.
type Prober interface {
	Exists(elem ...string) (bool, error)
}

// Env is everything a task needs to execute. It is shared read-only by all
// tasks of a group.
type Env struct {
	Toolchain Toolchain
	Probe     Prober
	// Workdir is the directory components are cloned into.
	Workdir string
	// NewBranchName names branches created to land on tags and commits.
	NewBranchName func() string
	Logger        *log.Logger
}

// Dir returns the working directory of the named component.
func (e *Env) Dir(name string) string {
	return filepath.Join(e.Workdir, name)
}

func (e *Env) branchName() string {
	if e.NewBranchName != nil {
		return e.NewBranchName()
	}
	return component.NewLocalBranchName()
}

func (e *Env) logger(d component.Descriptor, phase Phase) *log.Logger {
	l := e.Logger
	if l == nil {
		l = log.DefaultLogger()
	}
	return l.WithComponent(d.Name(), string(phase))
}
