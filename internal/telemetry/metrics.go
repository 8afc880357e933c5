package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

var (
	metrics         *Metrics
	metricsShutdown func(context.Context) error
	meterMu         sync.RWMutex
)

// Metrics holds the instruments recorded during a link run.
type Metrics struct {
	TaskCounter     metric.Int64Counter
	TaskDuration    metric.Float64Histogram
	CommandCounter  metric.Int64Counter
	CommandDuration metric.Float64Histogram
	RetryCounter    metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(instrumentation)
	m := &Metrics{}
	var err error

	if m.TaskCounter, err = meter.Int64Counter(
		"ananke.task.completions",
		metric.WithDescription("Tasks finished, by phase and status"),
		metric.WithUnit("{task}"),
	); err != nil {
		return nil, err
	}
	if m.TaskDuration, err = meter.Float64Histogram(
		"ananke.task.duration",
		metric.WithDescription("Task duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.CommandCounter, err = meter.Int64Counter(
		"ananke.command.runs",
		metric.WithDescription("Spawned processes, by binary and status"),
		metric.WithUnit("{process}"),
	); err != nil {
		return nil, err
	}
	if m.CommandDuration, err = meter.Float64Histogram(
		"ananke.command.duration",
		metric.WithDescription("Process lifetime in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.RetryCounter, err = meter.Int64Counter(
		"ananke.command.retries",
		metric.WithDescription("Retried network commands"),
		metric.WithUnit("{retry}"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// InitMetricsProvider installs the meter provider and returns its shutdown
// function. Metrics are only collected when enabled with an endpoint; they
// are pushed when the provider shuts down and every ten seconds before that.
func InitMetricsProvider(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		if err := SetMeterProvider(metricnoop.NewMeterProvider(), nil); err != nil {
			return nil, err
		}
		return func(context.Context) error { return nil }, nil
	}

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource for metrics: %w", err)
	}

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
		otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))),
	)
	if err := SetMeterProvider(mp, mp.Shutdown); err != nil {
		return nil, err
	}
	return mp.Shutdown, nil
}

// SetMeterProvider creates the instruments on mp and makes them the ones the
// Record helpers use.
func SetMeterProvider(mp metric.MeterProvider, shutdown func(context.Context) error) error {
	m, err := newMetrics(mp)
	if err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	meterMu.Lock()
	defer meterMu.Unlock()
	metrics = m
	metricsShutdown = shutdown
	otel.SetMeterProvider(mp)
	return nil
}

// ShutdownMetrics flushes and stops the meter provider.
func ShutdownMetrics(ctx context.Context) error {
	meterMu.RLock()
	shutdown := metricsShutdown
	meterMu.RUnlock()

	if shutdown != nil {
		return shutdown(ctx)
	}
	return nil
}

func current() *Metrics {
	meterMu.RLock()
	defer meterMu.RUnlock()
	return metrics
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordTask counts a finished task and records its duration.
func RecordTask(ctx context.Context, phase, kind string, d time.Duration, err error) {
	m := current()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.String("version_kind", kind),
		attribute.String("status", status(err)),
	)
	m.TaskCounter.Add(ctx, 1, attrs)
	m.TaskDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordCommand counts a spawned process and records its lifetime.
func RecordCommand(ctx context.Context, binary string, d time.Duration, err error) {
	m := current()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("binary", binary),
		attribute.String("status", status(err)),
	)
	m.CommandCounter.Add(ctx, 1, attrs)
	m.CommandDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordRetry counts one retry of a failed command.
func RecordRetry(ctx context.Context, binary string) {
	m := current()
	if m == nil {
		return
	}
	m.RetryCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("binary", binary)))
}
