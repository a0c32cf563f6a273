// Package config holds harness configuration: where the subject binary
// and the vector files live, how runs behave, and how output looks.
//
// Precedence, lowest to highest: built-in defaults, the YAML config file,
// a project-local .env file, then real environment variables. Command
// flags sit above all of these and are applied by the command layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all harness configuration.
type Config struct {
	Subject SubjectConfig `yaml:"subject"`
	Vectors VectorConfig  `yaml:"vectors"`
	Run     RunConfig     `yaml:"run"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// SubjectConfig locates and bounds the emulator binary under test.
type SubjectConfig struct {
	Binary  string `yaml:"binary"`
	Timeout string `yaml:"timeout"`
}

// VectorConfig locates the test vectors, local and upstream.
type VectorConfig struct {
	Dir     string `yaml:"dir"`
	BaseURL string `yaml:"base_url"`
}

// RunConfig sets run mode defaults; flags override per invocation.
type RunConfig struct {
	Parallel          bool `yaml:"parallel"`
	MaxWorkers        int  `yaml:"max_workers"`
	ContinueOnFailure bool `yaml:"continue_on_failure"`
}

// UIConfig controls output styling.
type UIConfig struct {
	NoColor bool `yaml:"no_color"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Subject: SubjectConfig{
			Binary:  filepath.Join(".", "build", "clang", "debug", "harte", "harte"),
			Timeout: "30s",
		},
		Vectors: VectorConfig{
			Dir:     DefaultDataDir(),
			BaseURL: "https://github.com/TomHarte/ProcessorTests/raw/main/6502/v1",
		},
		Run: RunConfig{
			MaxWorkers: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultDataDir returns the shared vector cache under the user's home.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cpm_cache", "65x02", "1a4b", "6502", "v1")
}

// Load reads configuration from a YAML file, then layers .env and
// environment overrides on top. A missing file is not an error; defaults
// apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// A project-local .env feeds the same overrides without exporting
	// them; real environment variables win over it.
	_ = godotenv.Load()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OPHARNESS_BINARY"); v != "" {
		c.Subject.Binary = v
	}
	if v := os.Getenv("OPHARNESS_TIMEOUT"); v != "" {
		c.Subject.Timeout = v
	}
	if v := os.Getenv("OPHARNESS_DATA_DIR"); v != "" {
		c.Vectors.Dir = v
	}
	if v := os.Getenv("OPHARNESS_BASE_URL"); v != "" {
		c.Vectors.BaseURL = v
	}
	if v := os.Getenv("OPHARNESS_MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Run.MaxWorkers = n
		}
	}
	if os.Getenv("NO_COLOR") != "" {
		c.UI.NoColor = true
	}
}

// Validate checks the configuration for values no run could work with.
func (c *Config) Validate() error {
	if c.Subject.Binary == "" {
		return fmt.Errorf("subject.binary must not be empty")
	}
	if c.Vectors.Dir == "" {
		return fmt.Errorf("vectors.dir must not be empty")
	}
	if _, err := time.ParseDuration(c.Subject.Timeout); err != nil {
		return fmt.Errorf("invalid subject.timeout %q: %w", c.Subject.Timeout, err)
	}
	if c.Run.MaxWorkers < 1 {
		return fmt.Errorf("run.max_workers must be at least 1, got %d", c.Run.MaxWorkers)
	}
	return nil
}

// GetTimeout returns the per-case timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Subject.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
