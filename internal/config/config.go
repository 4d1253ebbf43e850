// Package config loads docbuild configuration.
//
// Configuration is optional: a missing file yields defaults that reproduce
// the plain setup-and-build sequence. A .env file next to the working
// directory is loaded first, and environment variables are expanded inside
// the YAML before unmarshalling.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Docs      DocsConfig      `yaml:"docs"`
	Toolchain ToolchainConfig `yaml:"toolchain"`
	Daemon    DaemonConfig    `yaml:"daemon"`
	Events    EventsConfig    `yaml:"events"`
	History   HistoryConfig   `yaml:"history"`
}

// DocsConfig locates the documentation source tree.
type DocsConfig struct {
	// Root overrides root resolution; empty means resolve relative to the
	// executable (or git worktree fallback).
	Root string `yaml:"root,omitempty"`
	// Subdir is the documentation directory name under the root.
	Subdir string `yaml:"subdir,omitempty"`
}

// ToolchainConfig controls the Python/Sphinx toolchain bootstrap.
type ToolchainConfig struct {
	// Interpreter is the Python interpreter to drive pip and sphinx with.
	// Empty means the first of python3, python found on PATH.
	Interpreter string `yaml:"interpreter,omitempty"`
	// Requirements are the packages installed/upgraded before building.
	Requirements []string `yaml:"requirements,omitempty"`
	// SkipInstall skips the pip upgrade and requirement installation.
	SkipInstall bool `yaml:"skip_install,omitempty"`
}

// DaemonConfig controls watch/daemon mode.
type DaemonConfig struct {
	Listen          string   `yaml:"listen,omitempty"`
	Debounce        Duration `yaml:"debounce,omitempty"`
	RebuildInterval Duration `yaml:"rebuild_interval,omitempty"`
}

// EventsConfig controls optional NATS build event publishing.
type EventsConfig struct {
	// NATSURL enables publishing when non-empty.
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
	Stream  string `yaml:"stream,omitempty"`
}

// HistoryConfig controls the sqlite build history store.
type HistoryConfig struct {
	// Path of the database file. Empty means <root>/.docbuild/history.db.
	Path string `yaml:"path,omitempty"`
	// Disabled turns history recording off entirely.
	Disabled bool `yaml:"disabled,omitempty"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "300ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// DefaultRequirements are the packages installed when none are configured.
var DefaultRequirements = []string{"sphinx", "sphinx_rtd_theme"}

// Default returns the zero-configuration defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from path. A missing file is not an error and
// yields Default(). A .env file in the working directory is loaded first so
// ${VAR} references inside the YAML can resolve against it.
func Load(path string) (*Config, error) {
	// Best-effort; most checkouts have no .env at all.
	_ = godotenv.Load()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Docs.Subdir == "" {
		c.Docs.Subdir = "docs"
	}
	if len(c.Toolchain.Requirements) == 0 {
		c.Toolchain.Requirements = append([]string(nil), DefaultRequirements...)
	}
	if c.Daemon.Listen == "" {
		c.Daemon.Listen = ":8080"
	}
	if c.Daemon.Debounce == 0 {
		c.Daemon.Debounce = Duration(300 * time.Millisecond)
	}
	if c.Daemon.RebuildInterval == 0 {
		c.Daemon.RebuildInterval = Duration(time.Hour)
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "docbuild.builds"
	}
	if c.Events.Stream == "" {
		c.Events.Stream = "DOCBUILD"
	}
}
