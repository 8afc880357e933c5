package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestInitProviderDisabled(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), DefaultConfig())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.IsType(t, noop.TracerProvider{}, GetTracerProvider())
}

func TestInitProviderWithoutEndpoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.SampleRate = 0.5

	shutdown, err := InitProvider(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { SetTracerProvider(nil, nil) })

	assert.IsType(t, &sdktrace.TracerProvider{}, GetTracerProvider())
	assert.NoError(t, shutdown(context.Background()))
}

func TestGetTracerProviderDefaultsToNoop(t *testing.T) {
	SetTracerProvider(nil, nil)
	assert.NotNil(t, GetTracerProvider())
	assert.NoError(t, Shutdown(context.Background()))
}

type flakyExporter struct {
	failures int
	calls    int
}

func (f *flakyExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("collector unavailable")
	}
	return nil
}

func (f *flakyExporter) Shutdown(context.Context) error { return nil }

func TestRetryableExporter(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		wantErr   bool
		wantCalls int
	}{
		{"first try", 0, false, 1},
		{"recovers", 2, false, 3},
		{"gives up", 10, true, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &flakyExporter{failures: tt.failures}
			re := newRetryableExporter(inner)
			re.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }

			err := re.ExportSpans(context.Background(), nil)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, inner.calls)
			assert.NoError(t, re.Shutdown(context.Background()))
		})
	}
}
