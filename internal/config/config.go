package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/metageek-llc/ManagedWifi/internal/logging"
)

// Config represents the complete wifiht configuration
type Config struct {
	Logging logging.Config `yaml:"logging"`
	Output  OutputConfig   `yaml:"output"`
	Decode  DecodeConfig   `yaml:"decode"`
	Watch   WatchConfig    `yaml:"watch"`
	Metrics MetricsConfig  `yaml:"metrics"`
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	Format string `yaml:"format"` // table, json, yaml
}

// DecodeConfig controls which information elements are decoded
type DecodeConfig struct {
	HTOnly bool `yaml:"ht_only"` // skip VHT elements
}

// WatchConfig holds scan polling configuration
type WatchConfig struct {
	Interface string        `yaml:"interface"`
	Interval  time.Duration `yaml:"interval"`
}

// MetricsConfig holds the Prometheus endpoint configuration
type MetricsConfig struct {
	Addr string `yaml:"addr"` // listen address, disabled when empty
	Path string `yaml:"path"`
}

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Logging: logging.Config{
			Level:      "info",
			Console:    true,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
		},
		Output: OutputConfig{
			Format: FormatTable,
		},
		Watch: WatchConfig{
			Interval: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
	}
}

// Load loads configuration from a YAML file on top of Default.  An empty
// path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
