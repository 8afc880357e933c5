package log

import (
	"io"
	"os"
	"strings"
)

// Format selects the slog handler.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "text"
}

// ParseFormat maps "text" or "json" to a Format, reporting false for
// anything else.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, true
	case "text", "":
		return FormatText, true
	default:
		return FormatText, false
	}
}

// Config holds configuration for the logger.
type Config struct {
	Level     Level
	Format    Format
	Output    io.Writer
	AddSource bool
	// ServiceName and ServiceVersion are attached to JSON records.
	ServiceName    string
	ServiceVersion string
}

// DefaultConfig logs at info level as text to stderr. Stdout is left to the
// status lines and the output of the started components.
func DefaultConfig() Config {
	return Config{
		Level:          LevelInfo,
		Format:         FormatText,
		Output:         os.Stderr,
		ServiceName:    "ananke",
		ServiceVersion: "dev",
	}
}

// ConfigFrom builds a Config from the textual settings used by flags and
// config files. Unknown names fall back to the defaults; callers that need
// to reject them validate with ParseLevel and ParseFormat first. Debug
// level adds source locations.
func ConfigFrom(level, format string, w io.Writer) Config {
	cfg := DefaultConfig()
	cfg.Level, _ = ParseLevel(level)
	cfg.Format, _ = ParseFormat(format)
	cfg.AddSource = cfg.Level == LevelDebug
	if w != nil {
		cfg.Output = w
	}
	return cfg
}
