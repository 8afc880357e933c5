// Package config loads ananke's layered configuration.
package config

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/ananke/internal/errors"
	"github.com/felixgeelhaar/ananke/internal/log"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds the settings of a link run.
type Config struct {
	TargetHost     string      `yaml:"target_host"`
	Components     []string    `yaml:"components"`
	Pull           bool        `yaml:"pull"`
	ForceUpdateAll bool        `yaml:"force_update_all"`
	Workdir        string      `yaml:"workdir"`
	Retries        int         `yaml:"retries"`
	MaxParallel    int         `yaml:"max_parallel"`
	KeepGoing      bool        `yaml:"keep_going"`
	Tools          ToolsConfig `yaml:"tools"`
	Log            LogConfig   `yaml:"log"`
	Telemetry      Telemetry   `yaml:"telemetry"`
}

// ToolsConfig names the external binaries and their arguments.
type ToolsConfig struct {
	Git            string   `yaml:"git"`
	PackageManager string   `yaml:"package_manager"`
	InstallArgs    []string `yaml:"install_args"`
	StartArgs      []string `yaml:"start_args"`
	DependencyDir  string   `yaml:"dependency_dir"`
}

// LogConfig configures the process-wide logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Telemetry configures OpenTelemetry tracing of link runs.
type Telemetry struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint"`
	Insecure   bool    `yaml:"insecure"`
	SampleRate float64 `yaml:"sample_rate"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// overlay decodes data onto cfg. Keys absent from data keep their value.
func overlay(cfg *Config, data []byte) error {
	return yaml.Unmarshal(data, cfg)
}

// Validate checks that the configuration can drive a link run.
func (c *Config) Validate() error {
	switch {
	case c.TargetHost == "":
		return errors.NewConfigInvalidError("target host is required (--target-host or target_host)")
	case len(c.Components) == 0:
		return errors.NewConfigInvalidError("at least one component is required (--microfrontends or components)")
	}
	return c.validateSettings()
}

// validateSettings checks everything except the run inputs.
func (c *Config) validateSettings() error {
	if c.Retries < 0 {
		return errors.NewConfigInvalidError(fmt.Sprintf("retries must be >= 0, got %d", c.Retries))
	}
	if c.MaxParallel < 0 {
		return errors.NewConfigInvalidError(fmt.Sprintf("max_parallel must be >= 0, got %d", c.MaxParallel))
	}
	if c.Tools.Git == "" || c.Tools.PackageManager == "" {
		return errors.NewConfigInvalidError("tools.git and tools.package_manager must not be empty")
	}
	if c.Workdir == "" {
		return errors.NewConfigInvalidError("workdir must not be empty")
	}
	if _, ok := log.ParseLevel(c.Log.Level); !ok {
		return errors.NewConfigInvalidError(fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return errors.NewConfigInvalidError(fmt.Sprintf("telemetry.sample_rate must be between 0 and 1, got %g", c.Telemetry.SampleRate))
	}
	if _, ok := log.ParseFormat(c.Log.Format); !ok {
		return errors.NewConfigInvalidError(fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}
	return nil
}
