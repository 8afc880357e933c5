package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/felixgeelhaar/ananke/internal/errors"
)

const (
	// ProjectFile is looked up in the project directory.
	ProjectFile = "ananke.yaml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "ANANKE_"
)

// Loader resolves configuration from its sources.
//
// Resolution order (highest to lowest precedence):
// 1. Environment variables (ANANKE_*)
// 2. Explicit config file, or ./ananke.yaml
// 3. User config (~/.ananke/config.yaml)
// 4. Built-in defaults
//
// Command line flags are applied by the caller on top of the result.
type Loader struct {
	fs         afero.Fs
	projectDir string
	userDir    string
	lookupEnv  func(string) (string, bool)
}

// NewLoader creates a loader reading from the OS filesystem and environment.
func NewLoader() *Loader {
	homeDir, _ := os.UserHomeDir()
	return &Loader{
		fs:         afero.NewOsFs(),
		projectDir: ".",
		userDir:    filepath.Join(homeDir, ".ananke"),
		lookupEnv:  os.LookupEnv,
	}
}

// SetProjectDir sets the directory searched for ananke.yaml.
func (l *Loader) SetProjectDir(dir string) {
	l.projectDir = dir
}

// Load resolves the configuration. An explicit path must exist; the
// implicit files are optional.
func (l *Loader) Load(explicitPath string) (*Config, error) {
	cfg := Default()

	if err := l.overlayFile(cfg, filepath.Join(l.userDir, "config.yaml"), false); err != nil {
		return nil, err
	}

	if explicitPath != "" {
		if err := l.overlayFile(cfg, explicitPath, true); err != nil {
			return nil, err
		}
	} else if err := l.overlayFile(cfg, filepath.Join(l.projectDir, ProjectFile), false); err != nil {
		return nil, err
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validateSettings(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) overlayFile(cfg *Config, path string, required bool) error {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return errors.NewConfigReadError(path, err)
	}
	if err := overlay(cfg, data); err != nil {
		return errors.NewConfigReadError(path, err)
	}
	return nil
}

func (l *Loader) applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"TARGET_HOST":     &cfg.TargetHost,
		"WORKDIR":         &cfg.Workdir,
		"GIT":             &cfg.Tools.Git,
		"PACKAGE_MANAGER": &cfg.Tools.PackageManager,
		"DEPENDENCY_DIR":  &cfg.Tools.DependencyDir,
		"LOG_LEVEL":       &cfg.Log.Level,
		"LOG_FORMAT":      &cfg.Log.Format,
		"OTEL_ENDPOINT":   &cfg.Telemetry.Endpoint,
	}
	for key, dst := range strs {
		if v, ok := l.env(key); ok {
			*dst = v
		}
	}

	lists := map[string]*[]string{
		"COMPONENTS":   &cfg.Components,
		"INSTALL_ARGS": &cfg.Tools.InstallArgs,
		"START_ARGS":   &cfg.Tools.StartArgs,
	}
	for key, dst := range lists {
		if v, ok := l.env(key); ok {
			*dst = splitList(v)
		}
	}

	bools := map[string]*bool{
		"PULL":             &cfg.Pull,
		"FORCE_UPDATE_ALL": &cfg.ForceUpdateAll,
		"KEEP_GOING":       &cfg.KeepGoing,
		"OTEL_ENABLED":     &cfg.Telemetry.Enabled,
		"OTEL_INSECURE":    &cfg.Telemetry.Insecure,
	}
	for key, dst := range bools {
		if v, ok := l.env(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return errors.NewConfigInvalidError(fmt.Sprintf("%s%s: %q is not a boolean", EnvPrefix, key, v))
			}
			*dst = b
		}
	}

	ints := map[string]*int{
		"RETRIES":      &cfg.Retries,
		"MAX_PARALLEL": &cfg.MaxParallel,
	}
	for key, dst := range ints {
		if v, ok := l.env(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.NewConfigInvalidError(fmt.Sprintf("%s%s: %q is not an integer", EnvPrefix, key, v))
			}
			*dst = n
		}
	}
	return nil
}

func (l *Loader) env(key string) (string, bool) {
	v, ok := l.lookupEnv(EnvPrefix + key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// splitList splits on commas and whitespace.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
