// Package git drives the git command line for component working copies.
package git

import (
	"context"
	"io"
	"strings"

	"github.com/felixgeelhaar/ananke/internal/exec"
)

// Client runs git through an exec.Runner.
type Client struct {
	Runner exec.Runner
	Binary string
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a client invoking binary ("git" when empty).
func New(runner exec.Runner, binary string) *Client {
	if binary == "" {
		binary = "git"
	}
	return &Client{Runner: runner, Binary: binary}
}

// WithOutput returns a copy of c streaming process output to the writers.
func (c *Client) WithOutput(stdout, stderr io.Writer) *Client {
	cp := *c
	cp.Stdout = stdout
	cp.Stderr = stderr
	return &cp
}

// Clone clones url into dest.
func (c *Client) Clone(ctx context.Context, url, dest string) error {
	return c.run(ctx, "", true, "clone", url, dest)
}

// FetchAll fetches every remote of the repository in dir.
func (c *Client) FetchAll(ctx context.Context, dir string) error {
	return c.run(ctx, dir, true, "fetch", "--all")
}

// Pull pulls the current branch.
func (c *Client) Pull(ctx context.Context, dir string) error {
	return c.run(ctx, dir, true, "pull")
}

// CurrentRef returns the checked out branch name, or "HEAD" when detached.
func (c *Client) CurrentRef(ctx context.Context, dir string) (string, error) {
	return c.output(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
}

// ResolveCommit returns the commit ref points to.
func (c *Client) ResolveCommit(ctx context.Context, dir, ref string) (string, error) {
	return c.output(ctx, dir, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
}

// Checkout switches to ref. A non-empty newBranch creates that branch at ref.
func (c *Client) Checkout(ctx context.Context, dir, ref, newBranch string) error {
	args := []string{"checkout"}
	if newBranch != "" {
		args = append(args, "-b", newBranch)
	}
	args = append(args, ref)
	return c.run(ctx, dir, false, args...)
}

func (c *Client) run(ctx context.Context, dir string, retryable bool, args ...string) error {
	_, err := c.Runner.Run(ctx, exec.Command{
		Name:      c.Binary,
		Args:      args,
		Dir:       dir,
		Stdout:    c.Stdout,
		Stderr:    c.Stderr,
		Retryable: retryable,
	})
	return err
}

func (c *Client) output(ctx context.Context, dir string, args ...string) (string, error) {
	result, err := c.Runner.Run(ctx, exec.Command{
		Name:    c.Binary,
		Args:    args,
		Dir:     dir,
		Stderr:  c.Stderr,
		Capture: true,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Stdout), nil
}
