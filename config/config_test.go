package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("resolved path: got %q want %q", resolved, path)
	}
	if cfg.Camera.FOVHorizontal != 55.0 || cfg.Camera.Baseline != 65.0 {
		t.Fatalf("unexpected camera defaults: %+v", cfg.Camera)
	}
	if cfg.Output.Suffix != "_spatial" || cfg.Encoder.Quality != 95 || cfg.Batch.Jobs != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !strings.HasSuffix(cfg.History.Path, filepath.Join("stereo2spatial", "history.db")) {
		t.Fatalf("unexpected history path %q", cfg.History.Path)
	}
}

func TestLoadOverridesAndNormalizes(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[camera]
fov_horizontal = 63.5

[output]
suffix = "_vision"
dir = "~/spatial"

[logging]
level = " DEBUG "
format = "JSON"

[batch]
jobs = 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Camera.FOVHorizontal != 63.5 || cfg.Camera.Baseline != 65.0 {
		t.Fatalf("unexpected camera: %+v", cfg.Camera)
	}
	if cfg.Output.Suffix != "_vision" {
		t.Fatalf("suffix: got %q", cfg.Output.Suffix)
	}
	if want := filepath.Join(home, "spatial"); cfg.Output.Dir != want {
		t.Fatalf("output dir: got %q want %q", cfg.Output.Dir, want)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	if cfg.Batch.Jobs != 4 {
		t.Fatalf("jobs: got %d", cfg.Batch.Jobs)
	}
}

func TestLoadUsesEnvironmentPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.toml")
	if err := os.WriteFile(path, []byte("[camera]\nbaseline = 40.0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvConfigPath, path)

	cfg, resolved, exists, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("got %q,%v want %q,true", resolved, exists, path)
	}
	if cfg.Camera.Baseline != 40.0 {
		t.Fatalf("baseline: got %v", cfg.Camera.Baseline)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[camera]\nfocal = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero fov", func(c *Config) { c.Camera.FOVHorizontal = 0 }},
		{"wide fov", func(c *Config) { c.Camera.FOVHorizontal = 180 }},
		{"negative baseline", func(c *Config) { c.Camera.Baseline = -1 }},
		{"quality", func(c *Config) { c.Encoder.Quality = 101 }},
		{"jobs", func(c *Config) { c.Batch.Jobs = -2 }},
		{"format", func(c *Config) { c.Logging.Format = "xml" }},
		{"level", func(c *Config) { c.Logging.Level = "trace" }},
	}
	for _, tt := range tests {
		cfg := Default()
		tt.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tt.name)
		}
	}

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists || cfg.Camera.FOVHorizontal != 55.0 {
		t.Fatalf("unexpected sample config: %+v", cfg)
	}
}
