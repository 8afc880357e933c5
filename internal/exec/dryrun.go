package exec

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// DryRunner prints commands instead of running them and reports success.
type DryRunner struct {
	Out io.Writer

	mu sync.Mutex
}

// Run prints the command line with its working directory.
func (d *DryRunner) Run(_ context.Context, cmd Command) (*Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	dir := cmd.Dir
	if dir == "" {
		dir = "."
	}
	fmt.Fprintf(d.Out, "  ⊙ (%s) %s\n", dir, cmd.String())
	return &Result{}, nil
}
