package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.ExcludedFromAll) != 1 || cfg.ExcludedFromAll[0] != "terrascan" {
		t.Errorf("default exclusion list: %v", cfg.ExcludedFromAll)
	}
	if cfg.Workers != 1 || cfg.TopRules != 10 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
excluded_from_all: []
workers: 3
top_rules: 5
tool_timeout: 10m
tools:
  semgrep:
    extra_args: ["--exclude", "vendor"]
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.ExcludedFromAll) != 0 {
		t.Errorf("exclusions should be overridable: %v", cfg.ExcludedFromAll)
	}
	if cfg.Workers != 3 || cfg.TopRules != 5 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.ToolTimeout.Std() != 10*time.Minute {
		t.Errorf("timeout not parsed: %v", cfg.ToolTimeout)
	}
	if len(cfg.Tools["semgrep"].ExtraArgs) != 2 {
		t.Errorf("tool policy not parsed: %+v", cfg.Tools)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("workers: [not a number"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed config must fail loudly")
	}
}
