package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Specifier errors (LINK-001 to LINK-099)
	ErrCodeSpecifierParse     ErrorCode = "LINK-001"
	ErrCodeDuplicateComponent ErrorCode = "LINK-002"

	// Process execution errors (EXEC-001 to EXEC-099)
	ErrCodeProcessSpawn ErrorCode = "EXEC-001"
	ErrCodeProcessExit  ErrorCode = "EXEC-002"

	// Filesystem errors (IO-001 to IO-099)
	ErrCodeFilesystemProbe ErrorCode = "IO-001"
	ErrCodeConfigRead      ErrorCode = "IO-002"

	// Orchestration errors
	ErrCodeTaskFailure ErrorCode = "TASK-001"
	ErrCodePhaseFailed ErrorCode = "PHASE-001"

	// Configuration errors
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
)

// AnankeError represents an error with a code, the component it concerns and
// recovery suggestions.
type AnankeError struct {
	Code        ErrorCode
	Message     string
	Component   string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *AnankeError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *AnankeError) Unwrap() error {
	return e.Cause
}

// New creates a new AnankeError
func New(code ErrorCode, message string) *AnankeError {
	return &AnankeError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AnankeError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *AnankeError {
	return &AnankeError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithComponent records which component the error concerns
func (e *AnankeError) WithComponent(component string) *AnankeError {
	e.Component = component
	return e
}

// WithSuggestion adds a suggestion to the error
func (e *AnankeError) WithSuggestion(suggestion string) *AnankeError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *AnankeError) WithSuggestions(suggestions ...string) *AnankeError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// CodeOf returns the code of the outermost AnankeError in err's chain, or ""
// when there is none.
func CodeOf(err error) ErrorCode {
	var ae *AnankeError
	if stderrors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// HasCode reports whether any AnankeError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if ae, ok := err.(*AnankeError); ok && ae.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// NewSpecifierParseError creates a malformed specifier error
func NewSpecifierParseError(raw string, reason string) *AnankeError {
	return New(ErrCodeSpecifierParse, fmt.Sprintf("invalid specifier %q: %s", raw, reason)).
		WithSuggestion("Use the form <group>/<name>[@<version>], e.g. betbook/shell@1.4.2")
}

// NewDuplicateComponentError creates an error for two specifiers naming the same component
func NewDuplicateComponentError(name string) *AnankeError {
	return New(ErrCodeDuplicateComponent, fmt.Sprintf("component %q specified more than once", name)).
		WithComponent(name).
		WithSuggestion("Each component is checked out into ./<name>; list it once")
}

// NewProcessSpawnError creates an error for a binary that could not be started
func NewProcessSpawnError(command string, cause error) *AnankeError {
	binary := command
	if i := strings.IndexByte(command, ' '); i > 0 {
		binary = command[:i]
	}
	return Wrap(ErrCodeProcessSpawn, fmt.Sprintf("failed to start %q", command), cause).
		WithSuggestion(fmt.Sprintf("Check that %s is installed and on your PATH", binary))
}

// NewProcessExitError creates an error for a process that exited with a non-zero status
func NewProcessExitError(command string, exitCode int, stderr string) *AnankeError {
	msg := fmt.Sprintf("%q exited with status %d", command, exitCode)
	if line := stderrSummary(stderr); line != "" {
		msg += fmt.Sprintf(" (%s)", line)
	}
	return New(ErrCodeProcessExit, msg)
}

// NewFilesystemProbeError creates an error for a path that could not be inspected
func NewFilesystemProbeError(path string, cause error) *AnankeError {
	return Wrap(ErrCodeFilesystemProbe, fmt.Sprintf("cannot inspect %s", path), cause)
}

// NewTaskFailure wraps the failure of one component's operation in a phase
func NewTaskFailure(phase string, component string, cause error) *AnankeError {
	return Wrap(ErrCodeTaskFailure, fmt.Sprintf("%s failed for %s", phase, component), cause).
		WithComponent(component)
}

// NewPhaseFailedError reports a phase in which some components failed
func NewPhaseFailedError(phase string, failed []string) *AnankeError {
	return New(ErrCodePhaseFailed, fmt.Sprintf("%s phase failed for %d component(s): %s",
		phase, len(failed), strings.Join(failed, ", "))).
		WithSuggestion("Fix the failures above and run link again").
		WithSuggestion("Use --keep-going to continue with the components that succeeded")
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *AnankeError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Pass the value as a flag or set it in ananke.yaml")
}

// NewConfigReadError creates an error for a config file that could not be read or parsed
func NewConfigReadError(path string, cause error) *AnankeError {
	return Wrap(ErrCodeConfigRead, fmt.Sprintf("failed to load config file: %s", path), cause).
		WithSuggestion("Check the file syntax and format")
}

var errorMarkers = []string{"fatal:", "error:", "err!"}

// stderrSummary returns the first stderr line carrying an error marker, else
// the first non-empty line.
func stderrSummary(s string) string {
	var first string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		for _, marker := range errorMarkers {
			if strings.HasPrefix(lower, marker) || strings.Contains(lower, " "+marker) {
				return line
			}
		}
		if first == "" {
			first = line
		}
	}
	return first
}
