package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentation = "github.com/felixgeelhaar/ananke"

// StartPhaseSpan starts the span of one phase.
func StartPhaseSpan(ctx context.Context, phase string, size int) (context.Context, trace.Span) {
	ctx, span := GetTracerProvider().Tracer(instrumentation).Start(ctx, "phase."+phase)
	span.SetAttributes(
		attribute.String("ananke.phase", phase),
		attribute.Int("ananke.phase.size", size),
	)
	return ctx, span
}

// StartTaskSpan starts the span of one component's task.
func StartTaskSpan(ctx context.Context, phase, component, version, kind string) (context.Context, trace.Span) {
	ctx, span := GetTracerProvider().Tracer(instrumentation).Start(ctx, "task."+phase)
	span.SetAttributes(
		attribute.String("ananke.phase", phase),
		attribute.String("ananke.component", component),
		attribute.String("ananke.version", version),
		attribute.String("ananke.version.kind", kind),
	)
	return ctx, span
}

// StartCommandSpan starts the span of one spawned process.
func StartCommandSpan(ctx context.Context, name, commandLine, dir string) (context.Context, trace.Span) {
	ctx, span := GetTracerProvider().Tracer(instrumentation).Start(ctx, "exec."+name)
	span.SetAttributes(
		attribute.String("process.command_line", commandLine),
		attribute.String("process.working_directory", dir),
	)
	return ctx, span
}

// End records err, if any, and ends the span.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
