package exec

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/felixgeelhaar/ananke/internal/errors"
	"github.com/felixgeelhaar/ananke/internal/telemetry"
)

// stderrLimit bounds how much stderr is kept for error messages.
const stderrLimit = 16 * 1024

// LocalRunner runs commands on the host.
type LocalRunner struct {
	// GracePeriod is how long a cancelled process gets between the interrupt
	// signal and being killed.
	GracePeriod time.Duration
}

// NewLocalRunner returns a LocalRunner with a five second grace period.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{GracePeriod: 5 * time.Second}
}

// Run executes the command and waits for it.
func (r *LocalRunner) Run(ctx context.Context, c Command) (result *Result, err error) {
	startTime := time.Now()
	ctx, span := telemetry.StartCommandSpan(ctx, c.Name, c.String(), c.Dir)
	defer func() {
		telemetry.End(span, err)
		telemetry.RecordCommand(ctx, c.Name, time.Since(startTime), err)
	}()

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = nil
	// dev servers get a chance to shut down cleanly
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = r.GracePeriod

	var stdout bytes.Buffer
	stderr := &tailBuffer{limit: stderrLimit}

	cmd.Stdout = c.Stdout
	if c.Capture {
		cmd.Stdout = teeTo(&stdout, c.Stdout)
	}
	cmd.Stderr = teeTo(stderr, c.Stderr)

	if err := cmd.Start(); err != nil {
		return nil, errors.NewProcessSpawnError(c.String(), err)
	}

	waitErr := cmd.Wait()
	result = &Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(startTime),
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("%s: %w", c.String(), ctx.Err())
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if stderrors.As(waitErr, &exitErr) {
			return result, errors.NewProcessExitError(c.String(), exitErr.ExitCode(), result.Stderr)
		}
		return result, fmt.Errorf("%s: %w", c.String(), waitErr)
	}

	return result, nil
}

func teeTo(buf io.Writer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	buf   []byte
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
