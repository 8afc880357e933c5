package exec

import (
	"context"
	"io"
	"strings"
	"time"
)

// Command describes one invocation of an external binary.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Stdout and Stderr receive the process output as it is produced. Nil
	// writers discard it (stderr is still kept for error messages).
	Stdout io.Writer
	Stderr io.Writer
	// Capture keeps stdout in Result.Stdout.
	Capture bool
	// Retryable marks network-bound commands that RetryRunner may repeat.
	Retryable bool
}

// String renders the command line, e.g. "git fetch --all".
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result represents the outcome of a finished process
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner spawns a command and waits for it to terminate. A non-nil error is
// returned when the binary cannot be started (EXEC-001), when it exits with
// a non-zero status (EXEC-002) or when ctx is cancelled.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cmd Command) (*Result, error)

// Run calls f(ctx, cmd).
func (f RunnerFunc) Run(ctx context.Context, cmd Command) (*Result, error) {
	return f(ctx, cmd)
}
