package health

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
)

// WorkdirChecker verifies that components can be cloned into Dir.
type WorkdirChecker struct {
	Fs  afero.Fs
	Dir string
}

// NewWorkdirChecker checks dir on the OS filesystem.
func NewWorkdirChecker(dir string) *WorkdirChecker {
	return &WorkdirChecker{Fs: afero.NewOsFs(), Dir: dir}
}

// Name returns "workdir".
func (c *WorkdirChecker) Name() string {
	return "workdir"
}

// Check creates and removes a temporary file in Dir.
func (c *WorkdirChecker) Check(_ context.Context) *Result {
	ok, err := afero.DirExists(c.Fs, c.Dir)
	if err != nil {
		return Unhealthy(fmt.Sprintf("cannot inspect %s", c.Dir)).WithDetail("error", err.Error())
	}
	if !ok {
		return Unhealthy(fmt.Sprintf("%s is not a directory", c.Dir))
	}

	f, err := afero.TempFile(c.Fs, c.Dir, ".ananke-doctor-")
	if err != nil {
		return Unhealthy(fmt.Sprintf("%s is not writable", c.Dir)).WithDetail("error", err.Error())
	}
	name := f.Name()
	_ = f.Close()
	_ = c.Fs.Remove(name)

	return Healthy(fmt.Sprintf("%s is writable", c.Dir))
}
