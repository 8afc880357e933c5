package task

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// fakeRepo is the state of one simulated working copy.
type fakeRepo struct {
	current string
	head    string
}

// fakeVCS simulates git on an in-memory filesystem. Refs resolve through
// commits; a ref missing from commits does not exist.
type fakeVCS struct {
	mu      sync.Mutex
	fs      afero.Fs
	repos   map[string]*fakeRepo
	commits map[string]string
	calls   []string
	failOn  map[string]error
}

func newFakeVCS(fs afero.Fs) *fakeVCS {
	return &fakeVCS{
		fs:      fs,
		repos:   map[string]*fakeRepo{},
		commits: map[string]string{"master": "m0000"},
		failOn:  map[string]error{},
	}
}

func (f *fakeVCS) record(op, dir string) error {
	f.calls = append(f.calls, op+" "+filepath.Base(dir))
	return f.failOn[op+" "+filepath.Base(dir)]
}

func (f *fakeVCS) repo(dir string) *fakeRepo {
	r, ok := f.repos[dir]
	if !ok {
		r = &fakeRepo{current: "master", head: f.commits["master"]}
		f.repos[dir] = r
	}
	return r
}

func (f *fakeVCS) Clone(_ context.Context, _ string, dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("clone", dest); err != nil {
		return err
	}
	f.repo(dest)
	return f.fs.MkdirAll(dest, 0o755)
}

func (f *fakeVCS) FetchAll(_ context.Context, dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("fetch", dir)
}

func (f *fakeVCS) Pull(_ context.Context, dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("pull", dir)
}

func (f *fakeVCS) CurrentRef(_ context.Context, dir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.repo(dir).current, nil
}

func (f *fakeVCS) ResolveCommit(_ context.Context, dir, ref string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ref == "HEAD" {
		return f.repo(dir).head, nil
	}
	sha, ok := f.commits[ref]
	if !ok {
		return "", fmt.Errorf("unknown ref %s", ref)
	}
	return sha, nil
}

func (f *fakeVCS) Checkout(_ context.Context, dir, ref, newBranch string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	op := "checkout " + ref
	if newBranch != "" {
		op += " -b " + newBranch
	}
	f.calls = append(f.calls, op+" "+filepath.Base(dir))
	sha, ok := f.commits[ref]
	if !ok {
		return fmt.Errorf("pathspec %q did not match", ref)
	}
	r := f.repo(dir)
	r.head = sha
	r.current = ref
	if newBranch != "" {
		r.current = newBranch
	}
	return nil
}

func (f *fakeVCS) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakePackages records installs and starts.
type fakePackages struct {
	mu      sync.Mutex
	fs      afero.Fs
	calls   []string
	failing map[string]error
}

func (p *fakePackages) Install(_ context.Context, dir string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "install "+filepath.Base(dir))
	if err := p.failing[filepath.Base(dir)]; err != nil {
		return err
	}
	return p.fs.MkdirAll(filepath.Join(dir, DefaultDependencyDir), 0o755)
}

func (p *fakePackages) Start(_ context.Context, dir string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "start "+filepath.Base(dir))
	return p.failing[filepath.Base(dir)]
}

// fakeToolchain hands the same fakes to every component.
type fakeToolchain struct {
	vcs      *fakeVCS
	packages *fakePackages
}

func (t *fakeToolchain) VCS(string) VCS                 { return t.vcs }
func (t *fakeToolchain) Packages(string) PackageManager { return t.packages }
