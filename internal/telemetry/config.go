package telemetry

// Config holds configuration for the tracer
type Config struct {
	ServiceName    string
	ServiceVersion string

	// Enabled determines whether tracing is enabled
	// When false, a noop tracer is used
	Enabled bool

	// Endpoint is the OTLP/HTTP collector endpoint, host:port.
	// If empty, spans are recorded but not exported.
	Endpoint string

	// Insecure sends spans over plain HTTP (local collectors).
	Insecure bool

	// SampleRate is the fraction of traces to sample (0.0 to 1.0)
	SampleRate float64
}

// DefaultConfig returns a configuration with tracing disabled.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "ananke",
		ServiceVersion: "dev",
		Enabled:        false,
		SampleRate:     1.0,
	}
}
