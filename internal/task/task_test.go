package task

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/ananke/internal/component"
	aerrors "github.com/felixgeelhaar/ananke/internal/errors"
	"github.com/felixgeelhaar/ananke/internal/fsprobe"
	"github.com/felixgeelhaar/ananke/internal/log"
)

type harness struct {
	fs       afero.Fs
	vcs      *fakeVCS
	packages *fakePackages
	env      *Env
}

func newHarness() *harness {
	fs := afero.NewMemMapFs()
	h := &harness{
		fs:       fs,
		vcs:      newFakeVCS(fs),
		packages: &fakePackages{fs: fs, failing: map[string]error{}},
	}
	h.env = &Env{
		Toolchain:     &fakeToolchain{vcs: h.vcs, packages: h.packages},
		Probe:         &fsprobe.Probe{Fs: fs, Root: "/work"},
		Workdir:       "/work",
		NewBranchName: func() string { return "ananke/dev/test" },
		Logger:        log.Discard(),
	}
	return h
}

func TestFetchClonesMissingComponent(t *testing.T) {
	h := newHarness()
	h.vcs.commits["develop"] = "d1111"

	f := Fetch{Target: component.MustParse("betbook/shell@develop"), Host: "git.example.com"}
	require.NoError(t, f.Execute(context.Background(), h.env))

	assert.Equal(t, []string{"clone shell", "fetch shell", "checkout develop shell"}, h.vcs.Calls())
	exists, err := afero.DirExists(h.fs, "/work/shell")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFetchSkipsCloneWhenPresent(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.fs.MkdirAll("/work/shell", 0o755))

	f := Fetch{Target: component.MustParse("betbook/shell@latest"), Host: "h", Pull: true}
	require.NoError(t, f.Execute(context.Background(), h.env))

	// already on master: no checkout
	assert.Equal(t, []string{"fetch shell", "pull shell"}, h.vcs.Calls())
}

func TestFetchKeepsWorkingCopy(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.fs.MkdirAll("/work/shell", 0o755))

	f := Fetch{Target: component.MustParse("betbook/shell"), Host: "h"}
	require.NoError(t, f.Execute(context.Background(), h.env))

	assert.Equal(t, []string{"fetch shell"}, h.vcs.Calls())
}

func TestFetchCreatesLocalBranchForTag(t *testing.T) {
	h := newHarness()
	h.vcs.commits["tag/1.4.2"] = "t1420"

	f := Fetch{Target: component.MustParse("betbook/shell@1.4.2"), Host: "h"}
	require.NoError(t, f.Execute(context.Background(), h.env))

	assert.Contains(t, h.vcs.Calls(), "checkout tag/1.4.2 -b ananke/dev/test shell")
}

func TestFetchIsIdempotent(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		commits map[string]string
	}{
		{"branch", "betbook/shell@feature/foo", map[string]string{"feature/foo": "f0001"}},
		{"tag", "betbook/shell@1.4.2", map[string]string{"tag/1.4.2": "t1420"}},
		{"commit", "betbook/shell@a1b2c3d", map[string]string{"a1b2c3d": "a1b2c3d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			for ref, sha := range tt.commits {
				h.vcs.commits[ref] = sha
			}
			f := Fetch{Target: component.MustParse(tt.raw), Host: "h"}

			require.NoError(t, f.Execute(context.Background(), h.env))
			first := h.vcs.Calls()
			require.NoError(t, f.Execute(context.Background(), h.env))
			second := h.vcs.Calls()[len(first):]

			assert.Equal(t, []string{"fetch shell"}, second, "second run must not check out")
		})
	}
}

func TestFetchPropagatesFailures(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.fs.MkdirAll("/work/shell", 0o755))
	boom := aerrors.NewProcessExitError("git fetch --all", 128, "fatal: unable to access")
	h.vcs.failOn["fetch shell"] = boom

	f := Fetch{Target: component.MustParse("betbook/shell@develop"), Host: "h"}
	err := f.Execute(context.Background(), h.env)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"fetch shell"}, h.vcs.Calls())
}

func TestFetchUnknownRefFails(t *testing.T) {
	h := newHarness()
	f := Fetch{Target: component.MustParse("betbook/shell@does-not-exist"), Host: "h"}
	assert.Error(t, f.Execute(context.Background(), h.env))
}

func TestInstallAndRunExecute(t *testing.T) {
	h := newHarness()
	d := component.MustParse("betbook/shell@develop")

	require.NoError(t, Install{Target: d}.Execute(context.Background(), h.env))
	require.NoError(t, Run{Target: d}.Execute(context.Background(), h.env))

	assert.Equal(t, []string{"install shell", "start shell"}, h.packages.calls)
}

func TestRunFailure(t *testing.T) {
	h := newHarness()
	h.packages.failing["shell"] = errors.New("exit 1")

	err := Run{Target: component.MustParse("betbook/shell")}.Execute(context.Background(), h.env)
	assert.EqualError(t, err, "exit 1")
}

func TestTaskVariants(t *testing.T) {
	d := component.MustParse("betbook/shell@1.4.2")
	tasks := []Task{
		Fetch{Target: d, Host: "h", Pull: true},
		Install{Target: d, Force: true},
		Run{Target: d},
	}

	assert.Equal(t, PhaseFetch, tasks[0].Phase())
	assert.Equal(t, PhaseInstall, tasks[1].Phase())
	assert.Equal(t, PhaseRun, tasks[2].Phase())
	for _, task := range tasks {
		assert.Equal(t, d, task.Component())
	}

	assert.Equal(t, "clone git@h:betbook/shell.git if missing, fetch --all, pull, checkout tag/1.4.2 on a new local branch", tasks[0].Describe())
	assert.Equal(t, "reinstall dependencies", tasks[1].Describe())
	assert.Equal(t, "start", tasks[2].Describe())
	assert.Equal(t, "clone git@h:betbook/shell.git if missing, fetch --all, keep working copy",
		Fetch{Target: component.MustParse("betbook/shell"), Host: "h"}.Describe())
}

func TestEnvDir(t *testing.T) {
	env := &Env{Workdir: "/work"}
	assert.Equal(t, "/work/shell", env.Dir("shell"))
	assert.Contains(t, env.branchName(), component.LocalBranchPrefix)
}
