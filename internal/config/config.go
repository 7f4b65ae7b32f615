// Package config loads createsubdb settings from YAML.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/subdb"
)

// Config is the createsubdb settings file.
type Config struct {
	Subset SubsetConfig `yaml:"subset"`
	Log    LogConfig    `yaml:"log"`
}

// SubsetConfig selects how the subset is written and how keys are read.
type SubsetConfig struct {
	Mode   string `yaml:"mode"`    // hard or soft
	IDMode string `yaml:"id_mode"` // numeric or lookup
}

// LogConfig configures the run logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Subset: SubsetConfig{
			Mode:   "hard",
			IDMode: "numeric",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configPath over the defaults. An empty path yields the defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", configPath, err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	d := Default()
	if cfg.Subset.Mode == "" {
		cfg.Subset.Mode = d.Subset.Mode
	}
	if cfg.Subset.IDMode == "" {
		cfg.Subset.IDMode = d.Subset.IDMode
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = d.Log.Format
	}
}

// Modes parses the subset and id modes.
func (c *Config) Modes() (subdb.SubsetMode, subdb.IDMode, error) {
	mode, err := subdb.ParseSubsetMode(c.Subset.Mode)
	if err != nil {
		return mode, 0, err
	}
	idMode, err := subdb.ParseIDMode(c.Subset.IDMode)
	return mode, idMode, err
}

// Logger builds the logger described by the log section.
func (c *Config) Logger() (*subdb.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "":
		return subdb.NewTextLogger(level), nil
	case "json":
		return subdb.NewJSONLogger(level), nil
	default:
		return nil, fmt.Errorf("log format %q: want text or json", c.Log.Format)
	}
}
