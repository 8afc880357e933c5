package health

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/ananke/internal/errors"
	"github.com/felixgeelhaar/ananke/internal/exec"
)

var versionPattern = regexp.MustCompile(`\d+(\.\d+)+`)

// ToolChecker runs "<binary> --version" and compares the major version with
// a minimum.
type ToolChecker struct {
	Runner   exec.Runner
	Binary   string
	MinMajor int
	// Hint is shown when the binary is missing.
	Hint string
}

// NewGitChecker checks for git 2.x or later.
func NewGitChecker(runner exec.Runner, binary string) *ToolChecker {
	return &ToolChecker{Runner: runner, Binary: binary, MinMajor: 2, Hint: "Install Git from https://git-scm.com/downloads"}
}

// NewPackageManagerChecker checks that the package manager runs.
func NewPackageManagerChecker(runner exec.Runner, binary string) *ToolChecker {
	return &ToolChecker{Runner: runner, Binary: binary, Hint: "Install Node.js from https://nodejs.org"}
}

// Name returns "<binary>-binary".
func (c *ToolChecker) Name() string {
	return c.Binary + "-binary"
}

// Check reports Unhealthy when the binary cannot run, Degraded when its
// version is unknown or older than MinMajor.
func (c *ToolChecker) Check(ctx context.Context) *Result {
	res, err := c.Runner.Run(ctx, exec.Command{Name: c.Binary, Args: []string{"--version"}, Capture: true})
	if err != nil {
		r := Unhealthy(fmt.Sprintf("%s cannot be executed", c.Binary)).WithDetail("error", firstLine(err.Error()))
		if errors.HasCode(err, errors.ErrCodeProcessSpawn) && c.Hint != "" {
			r.WithDetail("suggestion", c.Hint)
		}
		return r
	}

	version := versionPattern.FindString(res.Stdout)
	if version == "" {
		return Degraded(fmt.Sprintf("%s runs but its version is unknown", c.Binary)).
			WithDetail("output", strings.TrimSpace(res.Stdout))
	}

	major, _ := strconv.Atoi(strings.SplitN(version, ".", 2)[0])
	if major < c.MinMajor {
		return Degraded(fmt.Sprintf("%s %s is older than %d.0", c.Binary, version, c.MinMajor)).
			WithDetail("version", version)
	}
	return Healthy(fmt.Sprintf("%s %s", c.Binary, version)).WithDetail("version", version)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
