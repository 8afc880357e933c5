package log

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/felixgeelhaar/ananke/internal/errors"
)

// Logger is a structured logger scoped with attributes such as the component
// and phase a record concerns.
type Logger struct {
	slog  *slog.Logger
	level Level
}

// New creates a Logger from cfg. Records logged with a context carrying a
// span are tagged with trace_id and span_id.
func New(cfg Config) *Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level.slogLevel(),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	logger := slog.New(traceHandler{handler})
	if cfg.Format == FormatJSON && cfg.ServiceName != "" {
		logger = logger.With("service", cfg.ServiceName, "version", cfg.ServiceVersion)
	}
	return &Logger{slog: logger, level: cfg.Level}
}

// Default creates a logger with DefaultConfig.
func Default() *Logger {
	return New(DefaultConfig())
}

// Discard creates a logger that drops every record.
func Discard() *Logger {
	return &Logger{slog: slog.New(slog.DiscardHandler), level: LevelError + 1}
}

// With returns a Logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...), level: l.level}
}

// WithComponent scopes the logger to one component and phase.
func (l *Logger) WithComponent(component, phase string) *Logger {
	return l.With("component", component, "phase", phase)
}

// WithError adds err to the logger. AnankeErrors contribute their code and
// the component they concern.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}

	var ae *errors.AnankeError
	if stderrors.As(err, &ae) {
		args := []any{"error", err.Error(), "error_code", string(ae.Code)}
		if ae.Component != "" {
			args = append(args, "component", ae.Component)
		}
		return l.With(args...)
	}
	return l.With("error", err.Error())
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slog.DebugContext(ctx, msg, args...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slog.InfoContext(ctx, msg, args...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slog.WarnContext(ctx, msg, args...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slog.ErrorContext(ctx, msg, args...)
}

// Enabled reports whether records at level are emitted.
func (l *Logger) Enabled(ctx context.Context, level Level) bool {
	return l.slog.Enabled(ctx, level.slogLevel())
}

// Level returns the minimum level the logger was configured with.
func (l *Logger) Level() Level {
	return l.level
}
