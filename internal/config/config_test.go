package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearHarnessEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPHARNESS_BINARY", "OPHARNESS_TIMEOUT", "OPHARNESS_DATA_DIR",
		"OPHARNESS_BASE_URL", "OPHARNESS_MAX_WORKERS", "NO_COLOR",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Subject.Binary != filepath.Join(".", "build", "clang", "debug", "harte", "harte") {
		t.Errorf("unexpected default binary: %s", cfg.Subject.Binary)
	}
	if cfg.GetTimeout() != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.GetTimeout())
	}
	if cfg.Run.MaxWorkers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Run.MaxWorkers)
	}
	if cfg.Vectors.BaseURL != "https://github.com/TomHarte/ProcessorTests/raw/main/6502/v1" {
		t.Errorf("unexpected base URL: %s", cfg.Vectors.BaseURL)
	}
	if cfg.Run.Parallel || cfg.Run.ContinueOnFailure || cfg.UI.NoColor {
		t.Errorf("booleans should default off: %+v", cfg.Run)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearHarnessEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GetTimeout() != 30*time.Second {
		t.Errorf("expected defaults, got timeout %v", cfg.GetTimeout())
	}
}

func TestLoadFile(t *testing.T) {
	clearHarnessEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
subject:
  binary: /opt/harte/harte
  timeout: 45s
vectors:
  dir: /var/vectors
run:
  parallel: true
  max_workers: 8
ui:
  no_color: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Subject.Binary != "/opt/harte/harte" {
		t.Errorf("binary not loaded: %s", cfg.Subject.Binary)
	}
	if cfg.GetTimeout() != 45*time.Second {
		t.Errorf("timeout not loaded: %v", cfg.GetTimeout())
	}
	if cfg.Vectors.Dir != "/var/vectors" {
		t.Errorf("dir not loaded: %s", cfg.Vectors.Dir)
	}
	if !cfg.Run.Parallel || cfg.Run.MaxWorkers != 8 || !cfg.UI.NoColor {
		t.Errorf("run/ui settings not loaded: %+v %+v", cfg.Run, cfg.UI)
	}
	// Fields the file omits keep their defaults.
	if cfg.Vectors.BaseURL == "" {
		t.Errorf("base URL default lost")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	clearHarnessEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("subject: ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	clearHarnessEnv(t)
	t.Setenv("OPHARNESS_BINARY", "/env/harte")
	t.Setenv("OPHARNESS_TIMEOUT", "5s")
	t.Setenv("OPHARNESS_DATA_DIR", "/env/vectors")
	t.Setenv("OPHARNESS_BASE_URL", "http://127.0.0.1:9000/v1")
	t.Setenv("OPHARNESS_MAX_WORKERS", "2")
	t.Setenv("NO_COLOR", "1")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Subject.Binary != "/env/harte" {
		t.Errorf("binary override missed: %s", cfg.Subject.Binary)
	}
	if cfg.GetTimeout() != 5*time.Second {
		t.Errorf("timeout override missed: %v", cfg.GetTimeout())
	}
	if cfg.Vectors.Dir != "/env/vectors" {
		t.Errorf("dir override missed: %s", cfg.Vectors.Dir)
	}
	if cfg.Vectors.BaseURL != "http://127.0.0.1:9000/v1" {
		t.Errorf("base URL override missed: %s", cfg.Vectors.BaseURL)
	}
	if cfg.Run.MaxWorkers != 2 {
		t.Errorf("workers override missed: %d", cfg.Run.MaxWorkers)
	}
	if !cfg.UI.NoColor {
		t.Errorf("NO_COLOR override missed")
	}
}

func TestEnvOverridesBeatFile(t *testing.T) {
	clearHarnessEnv(t)
	t.Setenv("OPHARNESS_BINARY", "/env/harte")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("subject:\n  binary: /file/harte\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Subject.Binary != "/env/harte" {
		t.Errorf("environment should beat the file, got %s", cfg.Subject.Binary)
	}
}

func TestEnvOverrideIgnoresBadWorkerCount(t *testing.T) {
	clearHarnessEnv(t)
	t.Setenv("OPHARNESS_MAX_WORKERS", "banana")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Run.MaxWorkers != 4 {
		t.Errorf("bad override should keep the default, got %d", cfg.Run.MaxWorkers)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		mutat func(*Config)
	}{
		{"empty binary", func(c *Config) { c.Subject.Binary = "" }},
		{"empty dir", func(c *Config) { c.Vectors.Dir = "" }},
		{"bad timeout", func(c *Config) { c.Subject.Timeout = "soon" }},
		{"zero workers", func(c *Config) { c.Run.MaxWorkers = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutat(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestGetTimeoutFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Subject.Timeout = "not-a-duration"
	if cfg.GetTimeout() != 30*time.Second {
		t.Errorf("expected fallback timeout, got %v", cfg.GetTimeout())
	}
}
