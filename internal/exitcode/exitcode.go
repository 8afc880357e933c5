package exitcode

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/felixgeelhaar/ananke/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, malformed specifiers, invalid config)
	UsageError = 2

	// TaskFailure indicates that at least one component failed in some phase
	TaskFailure = 3

	// Interrupted indicates the run was cancelled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if stderrors.Is(err, context.Canceled) {
		return Interrupted
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodeSpecifierParse, errors.ErrCodeDuplicateComponent,
		errors.ErrCodeConfigInvalid, errors.ErrCodeConfigRead:
		return UsageError
	case errors.ErrCodeTaskFailure, errors.ErrCodePhaseFailed,
		errors.ErrCodeProcessExit, errors.ErrCodeProcessSpawn, errors.ErrCodeFilesystemProbe:
		return TaskFailure
	}

	// cobra reports flag problems as plain errors
	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "invalid argument") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, specifiers or configuration)"
	case TaskFailure:
		return "One or more components failed"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
