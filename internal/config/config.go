package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the chunk tool configuration.
type Config struct {
	RegionDir  string `yaml:"region_dir"`  // directory with r.<x>.<z>.mca files
	CachePath  string `yaml:"cache_path"`  // SQLite cache database
	BlocksPath string `yaml:"blocks_path"` // minecraft-data blocks.json
	LogLevel   string `yaml:"log_level"`   // debug, info, warn or error
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		RegionDir:  "world/region",
		CachePath:  "data/chunks.db",
		BlocksPath: "data/blocks.json",
		LogLevel:   "info",
	}
}

// Load reads a YAML config file. Fields missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := cfg.Level(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["region-dir"] {
		cfg.RegionDir = fromFile.RegionDir
	}
	if !explicitFlags["cache"] {
		cfg.CachePath = fromFile.CachePath
	}
	if !explicitFlags["blocks"] {
		cfg.BlocksPath = fromFile.BlocksPath
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
