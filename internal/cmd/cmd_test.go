package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/ananke/internal/errors"
	"github.com/felixgeelhaar/ananke/internal/exitcode"
)

// execute runs the command tree with an isolated home directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ananke ")

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "go_version")

	out, err = execute(t, "version", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "Ananke ")
}

func TestPlanCommand(t *testing.T) {
	workdir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(workdir, "casino", "node_modules"), 0o755))

	out, err := execute(t, "plan",
		"-t", "git.example.com",
		"-m", "betbook/shell@1.4.2",
		"-m", "betbook/casino",
		"--workdir", workdir,
		"-o", "json",
	)
	require.NoError(t, err)

	var view planView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Phases, 3)

	fetch := view.Phases[0]
	assert.Equal(t, "fetch", fetch.Phase)
	require.Len(t, fetch.Steps, 2)
	assert.Equal(t, "tag", fetch.Steps[0].Kind)
	assert.Contains(t, fetch.Steps[0].Action, "git@git.example.com:betbook/shell.git")
	assert.Contains(t, fetch.Steps[0].Action, "checkout tag/1.4.2 on a new local branch")
	assert.Equal(t, "current", fetch.Steps[1].Kind)
	assert.Contains(t, fetch.Steps[1].Action, "keep working copy")

	install := view.Phases[1]
	require.Len(t, install.Steps, 1)
	assert.Equal(t, "shell", install.Steps[0].Component)

	assert.Len(t, view.Phases[2].Steps, 2)
}

func TestPlanTextOutput(t *testing.T) {
	out, err := execute(t, "plan", "-t", "git.example.com", "betbook/shell@develop", "--workdir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "Plan for git.example.com")
	assert.Contains(t, out, "checkout develop")
	assert.Contains(t, out, "start")
}

func TestPlanUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "ci.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"target_host: config.example.com\ncomponents:\n  - betbook/shell@latest\nforce_update_all: true\n"), 0o644))

	out, err := execute(t, "plan", "--config", cfgPath, "--workdir", dir, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "target_host: config.example.com")
	assert.Contains(t, out, "checkout master")
	assert.Contains(t, out, "reinstall dependencies")

	// flags win over the file
	out, err = execute(t, "plan", "--config", cfgPath, "-t", "flag.example.com", "--workdir", dir, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "target_host: flag.example.com")
}

func TestLinkDryRun(t *testing.T) {
	workdir := t.TempDir()

	out, err := execute(t, "link", "--dry-run", "--no-color",
		"-t", "git.example.com",
		"-m", "betbook/shell@develop,betbook/casino@latest",
		"--workdir", workdir,
		"--pull",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "Linking 2 component(s) from git.example.com")
	assert.Contains(t, out, "git clone git@git.example.com:betbook/shell.git "+filepath.Join(workdir, "shell"))
	assert.Contains(t, out, "("+filepath.Join(workdir, "casino")+") git fetch --all")
	assert.Contains(t, out, "git pull")
	assert.Contains(t, out, "git checkout develop")
	assert.Contains(t, out, "git checkout master")
	assert.Contains(t, out, "npm i")
	assert.Contains(t, out, "npm start")
	assert.Contains(t, out, "Link Summary")
	assert.Contains(t, out, "✓ All components exited")
}

func TestLinkDryRunNoRun(t *testing.T) {
	out, err := execute(t, "link", "--dry-run", "--no-run", "-t", "h", "-m", "betbook/shell", "--workdir", t.TempDir())
	require.NoError(t, err)
	assert.NotContains(t, out, "npm start")
	assert.Contains(t, out, "✓ All components fetched and installed")
}

func TestLinkInputErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode errors.ErrorCode
	}{
		{"missing host", []string{"link", "-m", "betbook/shell"}, errors.ErrCodeConfigInvalid},
		{"missing components", []string{"link", "-t", "h"}, errors.ErrCodeConfigInvalid},
		{"malformed specifier", []string{"link", "-t", "h", "-m", "shell"}, errors.ErrCodeSpecifierParse},
		{"duplicate component", []string{"link", "-t", "h", "-m", "a/shell", "-m", "b/shell@develop"}, errors.ErrCodeDuplicateComponent},
		{"negative retries", []string{"link", "-t", "h", "-m", "a/shell", "--retries", "-1"}, errors.ErrCodeConfigInvalid},
		{"missing config file", []string{"link", "--config", "/does/not/exist.yaml"}, errors.ErrCodeConfigRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
			assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))
		})
	}
}

func TestUnknownFlag(t *testing.T) {
	_, err := execute(t, "link", "--frobnicate")
	require.Error(t, err)
	assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))
}

func TestDoctorWorkdirCheck(t *testing.T) {
	workdir := t.TempDir()
	out, _ := execute(t, "doctor", "--workdir", workdir)

	// git and npm may be absent on the test machine; the workdir check is not.
	assert.Contains(t, out, "workdir")
	assert.Contains(t, out, workdir+" is writable")
	assert.Contains(t, out, "Overall:")

	out, err := execute(t, "doctor", "--workdir", filepath.Join(workdir, "missing"), "-o", "json")
	require.Error(t, err)
	var report struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "unhealthy", report.Status)
}
