// Package config loads the partitioning settings shared by the CLI and the MCP
// server from a YAML file and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable that points the server at a config file.
const EnvPath = "IMAGE_PARTITION_CONFIG"

// Config represents the application configuration loaded from YAML
type Config struct {
	// Partition controls tree construction and pruning
	Partition struct {
		// Workers bounds the goroutines used to build a tree; 1 builds sequentially
		Workers int `yaml:"workers"`

		// MinParallelArea is the smallest rectangle whose halves are built concurrently
		MinParallelArea int `yaml:"minParallelArea"`

		// Metric names the color distance used for pruning: "hsl" or "ciede2000"
		Metric string `yaml:"metric"`

		// Tolerances lists the pruning tolerances rendered by default
		Tolerances []float64 `yaml:"tolerances"`
	} `yaml:"partition"`

	// Preprocess parameters applied before building
	Preprocess struct {
		// BlurRadius is the Gaussian pre-smoothing radius, 0 disables it
		BlurRadius float64 `yaml:"blurRadius"`
	} `yaml:"preprocess"`

	// Output parameters
	Output struct {
		// Dir is where rendered files go; empty means next to the input
		Dir string `yaml:"dir"`

		// Format is the raster format of rendered files
		Format string `yaml:"format"`

		// OutlineColor is the hex color of partition outlines
		OutlineColor string `yaml:"outlineColor"`
	} `yaml:"output"`

	// LogLevel is "info" or "debug"
	LogLevel string `yaml:"logLevel"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Partition.Workers = runtime.NumCPU()
	cfg.Partition.MinParallelArea = 4096
	cfg.Partition.Metric = "hsl"
	cfg.Partition.Tolerances = []float64{0.2, 0.1, 0.05, 0.025}

	cfg.Preprocess.BlurRadius = 0

	cfg.Output.Format = "png"
	cfg.Output.OutlineColor = "#FF000080"

	cfg.LogLevel = "info"

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
// Keys absent from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Partition.Workers < 1 {
		return fmt.Errorf("partition.workers must be at least 1, got %d", c.Partition.Workers)
	}
	if c.Partition.MinParallelArea < 0 {
		return fmt.Errorf("partition.minParallelArea must not be negative, got %d", c.Partition.MinParallelArea)
	}
	switch strings.ToLower(c.Partition.Metric) {
	case "", "hsl", "ciede2000":
	default:
		return fmt.Errorf("partition.metric: unknown metric %q", c.Partition.Metric)
	}
	for _, tol := range c.Partition.Tolerances {
		if tol < 0 {
			return fmt.Errorf("partition.tolerances: negative tolerance %g", tol)
		}
	}
	if c.Preprocess.BlurRadius < 0 {
		return fmt.Errorf("preprocess.blurRadius must not be negative, got %g", c.Preprocess.BlurRadius)
	}
	switch strings.ToLower(c.Output.Format) {
	case "png", "jpg", "jpeg", "gif", "qoi":
	default:
		return fmt.Errorf("output.format: unsupported format %q", c.Output.Format)
	}
	switch c.LogLevel {
	case "info", "debug":
	default:
		return errors.New("logLevel must be \"info\" or \"debug\"")
	}
	return nil
}

// Debug reports whether verbose logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}
