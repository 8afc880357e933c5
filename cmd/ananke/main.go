package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/ananke/internal/cmd"
	"github.com/felixgeelhaar/ananke/internal/exitcode"
)

func main() {
	// Cancelling the context interrupts every spawned git/npm process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	exitcode.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := cmd.NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitcode.Success
	}
	if ctx.Err() != nil || stderrors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr, "\nInterrupted, all components stopped")
		return exitcode.Interrupted
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitcode.DetermineExitCode(err)
}
