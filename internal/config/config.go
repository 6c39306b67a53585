// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads Guardian's on-disk configuration: where services are
// declared, where lifecycle logs go, and whether the optional status API
// should run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	guardianerrors "github.com/tombarlow/guardian/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is Guardian's top-level configuration.
type Config struct {
	// ServiceDir is the directory of YAML service records that
	// internal/servicedir loads and, optionally, watches.
	ServiceDir string `yaml:"service_dir"`

	// StateDir is the directory PidfilePath derives pidfile paths under.
	// The start command does not use it: it always takes an explicit
	// --pidfile.
	StateDir string `yaml:"state_dir"`

	// Log configures Guardian's own structured logging (not the
	// per-worker stdout/stderr redirection, which is per-Spec).
	Log LogConfig `yaml:"log"`

	// StatusAPI configures the optional HTTP status/metrics endpoint.
	StatusAPI StatusAPIConfig `yaml:"status_api"`

	// Telemetry configures OpenTelemetry span export for guardian
	// lifecycle events.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// DefaultTermTimeout is a configured default grace period (5s unless
	// overridden). The start and stop commands take their timeouts from
	// their own flags and do not read it.
	DefaultTermTimeout time.Duration `yaml:"default_term_timeout"`
}

// LogConfig controls Guardian's own operational logging.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "json" or "text".
	Format string `yaml:"format"`

	// LifecycleLog is an optional path to append JSON-lines lifecycle
	// events to (start/stop/check transitions). Empty disables it.
	LifecycleLog string `yaml:"lifecycle_log"`
}

// StatusAPIConfig controls the optional HTTP status/metrics endpoint.
type StatusAPIConfig struct {
	// Enabled turns the status API on.
	Enabled bool `yaml:"enabled"`

	// Listen is the address to bind, e.g. ":9090" or "127.0.0.1:9090".
	Listen string `yaml:"listen"`

	// MetricsPath is the path metrics are exposed on. Default: /metrics.
	MetricsPath string `yaml:"metrics_path"`
}

// TelemetryConfig controls OpenTelemetry span export.
type TelemetryConfig struct {
	// Enabled turns span export on. When false, a no-op tracer is used.
	Enabled bool `yaml:"enabled"`

	// OTLPEndpoint is the collector endpoint for exported spans.
	// internal/telemetry does not read it: spans are always exported
	// through the structured logger.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Default returns a Config with sensible defaults for a single-host
// installation with no service directory or status API configured.
func Default() *Config {
	stateDir := defaultStateDir()
	return &Config{
		ServiceDir:         filepath.Join(defaultConfigDir(), "services"),
		StateDir:           stateDir,
		DefaultTermTimeout: 5 * time.Second,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		StatusAPI: StatusAPIConfig{
			Enabled:     false,
			Listen:      ":9090",
			MetricsPath: "/metrics",
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
		},
	}
}

// Load reads a YAML config file from path, applying defaults for any
// field the file does not set, then overlaying environment variables.
// If path is empty, ConfigPath() is used; if that file doesn't exist,
// the defaults (plus environment overlay) are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, guardianerrors.Wrap(err, "resolving default config path")
		}
		path = p
	}

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &guardianerrors.ConfigError{Key: path, Reason: "invalid YAML", Cause: err}
		}
	} else if !os.IsNotExist(err) {
		return nil, &guardianerrors.ConfigError{Key: path, Reason: "could not read config file", Cause: err}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromEnv overlays GUARDIAN_* environment variables on top of whatever
// was loaded from the config file, giving the environment the final say —
// the same precedence order internal/log.FromEnv uses.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("GUARDIAN_SERVICE_DIR"); v != "" {
		c.ServiceDir = v
	}
	if v := os.Getenv("GUARDIAN_STATE_DIR"); v != "" {
		c.StateDir = v
	}
	if v := os.Getenv("GUARDIAN_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("GUARDIAN_LOG_FORMAT"); v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("GUARDIAN_STATUS_LISTEN"); v != "" {
		c.StatusAPI.Listen = v
		c.StatusAPI.Enabled = true
	}
	if v := os.Getenv("GUARDIAN_TERM_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.DefaultTermTimeout = time.Duration(secs) * time.Second
		}
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.ServiceDir == "" {
		return &guardianerrors.ConfigError{Key: "service_dir", Reason: "must not be empty"}
	}
	if c.StateDir == "" {
		return &guardianerrors.ConfigError{Key: "state_dir", Reason: "must not be empty"}
	}
	switch c.Log.Format {
	case "", "json", "text":
	default:
		return &guardianerrors.ConfigError{Key: "log.format", Reason: fmt.Sprintf("unsupported format %q", c.Log.Format)}
	}
	if c.StatusAPI.Enabled && c.StatusAPI.Listen == "" {
		return &guardianerrors.ConfigError{Key: "status_api.listen", Reason: "must not be empty when status_api is enabled"}
	}
	if c.DefaultTermTimeout < 0 {
		return &guardianerrors.ConfigError{Key: "default_term_timeout", Reason: "must not be negative"}
	}
	return nil
}

// PidfilePath derives a pidfile path under StateDir for a named daemon
// that was not given an explicit pidfile path.
func (c *Config) PidfilePath(name string) string {
	return filepath.Join(c.StateDir, name+".pid")
}

func defaultConfigDir() string {
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(string(os.PathSeparator), "etc", "guardian")
	}
	return dir
}

func defaultStateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "guardian")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "guardian")
	}
	return filepath.Join(string(os.PathSeparator), "var", "run", "guardian")
}
