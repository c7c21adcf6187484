// Package config loads tool configuration from a YAML file with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how scan results are rendered.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
	FormatText OutputFormat = "text"
)

// Config holds all configuration for py-import-scan
type Config struct {
	// IgnoreFile is the name of per-directory ignore files
	IgnoreFile string `yaml:"ignore_file" env:"PIS_IGNORE_FILE"`

	// Excludes are directory names excluded in addition to the defaults
	Excludes []string `yaml:"excludes" env:"PIS_EXCLUDES"`

	// Workers bounds the parallel parse pool (0 means NumCPU)
	Workers int `yaml:"workers" env:"PIS_WORKERS"`

	// FollowSymlinks enables following symlinks within the scan root
	FollowSymlinks bool `yaml:"follow_symlinks" env:"PIS_FOLLOW_SYMLINKS"`

	// CachePath is where the parse cache is persisted ("" disables it)
	CachePath string `yaml:"cache_path" env:"PIS_CACHE_PATH"`

	// CacheSize bounds the number of cached files
	CacheSize int `yaml:"cache_size" env:"PIS_CACHE_SIZE"`

	// Format is the default output format for scan results
	Format OutputFormat `yaml:"format" env:"PIS_FORMAT"`

	// Verbose enables debug logging
	Verbose bool `yaml:"verbose" env:"PIS_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		IgnoreFile: ".pisignore",
		Workers:    runtime.NumCPU(),
		CachePath:  "",
		CacheSize:  4096,
		Format:     FormatJSON,
		Verbose:    false,
	}
}

// configFilePath returns the default config file path
func configFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pis/config.yaml"
	}
	return filepath.Join(home, ".pis", "config.yaml")
}

// Load reads configuration from the default YAML file and applies environment
// variable overrides. A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := configFilePath()
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the given path, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// DefaultPath returns the path Load reads from.
func DefaultPath() string {
	return configFilePath()
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PIS_IGNORE_FILE"); v != "" {
		cfg.IgnoreFile = v
	}
	if v := os.Getenv("PIS_EXCLUDES"); v != "" {
		cfg.Excludes = strings.Split(v, ",")
	}
	if v := os.Getenv("PIS_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("PIS_FOLLOW_SYMLINKS"); v != "" {
		cfg.FollowSymlinks = v == "1" || v == "true"
	}
	if v := os.Getenv("PIS_CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv("PIS_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheSize = n
		}
	}
	if v := os.Getenv("PIS_FORMAT"); v != "" {
		cfg.Format = OutputFormat(v)
	}
	if v := os.Getenv("PIS_VERBOSE"); v != "" {
		cfg.Verbose = v == "1" || v == "true"
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	switch c.Format {
	case FormatJSON, FormatYAML, FormatText:
	default:
		return fmt.Errorf("invalid output format %q (want json, yaml or text)", c.Format)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must be >= 0, got %d", c.CacheSize)
	}
	return nil
}
