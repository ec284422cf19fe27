package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ToolPolicy holds per-tool overrides from the config file.
type ToolPolicy struct {
	ExtraArgs []string `yaml:"extra_args"`
}

// Duration accepts "10m"-style strings in YAML, which yaml.v3 does not
// do for time.Duration on its own.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the optional YAML policy file. Every field has a working
// default; a missing file is not an error.
type Config struct {
	// ExcludedFromAll lists tools the "all" alias does not expand to.
	// They still run when requested by exact name.
	ExcludedFromAll []string              `yaml:"excluded_from_all"`
	Workers         int                   `yaml:"workers"`
	TopRules        int                   `yaml:"top_rules"`
	ToolTimeout     Duration              `yaml:"tool_timeout"`
	Tools           map[string]ToolPolicy `yaml:"tools"`
}

// Default returns the built-in policy. Terrascan is kept out of the "all"
// bundle, preserved from the original tooling as configuration rather
// than a hard-coded name check.
func Default() *Config {
	return &Config{
		ExcludedFromAll: []string{"terrascan"},
		Workers:         1,
		TopRules:        10,
		ToolTimeout:     Duration(30 * time.Minute),
		Tools:           map[string]ToolPolicy{},
	}
}

// DefaultPath returns ~/.secreview/config.yaml, creating the directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".secreview")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config at path, falling back to defaults when the file
// does not exist. An empty path means "default location".
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.TopRules < 1 {
		cfg.TopRules = 10
	}
	if cfg.Tools == nil {
		cfg.Tools = map[string]ToolPolicy{}
	}
	return cfg, nil
}

// Save writes the config back to path.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
