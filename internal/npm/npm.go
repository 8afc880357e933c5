// Package npm installs and starts components with a node package manager.
package npm

import (
	"context"
	"io"

	"github.com/felixgeelhaar/ananke/internal/exec"
)

// Client runs the package manager through an exec.Runner.
type Client struct {
	Runner      exec.Runner
	Binary      string
	InstallArgs []string
	StartArgs   []string
	Stdout      io.Writer
	Stderr      io.Writer
}

// New returns a client for binary with "i" and "start" as default arguments.
func New(runner exec.Runner, binary string) *Client {
	if binary == "" {
		binary = "npm"
	}
	return &Client{
		Runner:      runner,
		Binary:      binary,
		InstallArgs: []string{"i"},
		StartArgs:   []string{"start"},
	}
}

// WithOutput returns a copy of c streaming process output to the writers.
func (c *Client) WithOutput(stdout, stderr io.Writer) *Client {
	cp := *c
	cp.Stdout = stdout
	cp.Stderr = stderr
	return &cp
}

// Install installs dependencies in dir. Registry fetches may be retried.
func (c *Client) Install(ctx context.Context, dir string) error {
	_, err := c.Runner.Run(ctx, exec.Command{
		Name:      c.Binary,
		Args:      c.InstallArgs,
		Dir:       dir,
		Stdout:    c.Stdout,
		Stderr:    c.Stderr,
		Retryable: true,
	})
	return err
}

// Start runs the component and blocks until it exits.
func (c *Client) Start(ctx context.Context, dir string) error {
	_, err := c.Runner.Run(ctx, exec.Command{
		Name:   c.Binary,
		Args:   c.StartArgs,
		Dir:    dir,
		Stdout: c.Stdout,
		Stderr: c.Stderr,
	})
	return err
}
