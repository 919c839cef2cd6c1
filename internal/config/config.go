// Package config loads the one configuration surface shared by the
// dispatcher, storage node, and crawler binaries from a YAML file, the way
// chronicle's internal/config package loads its own single Config struct:
// a DefaultConfig() baseline, merged with whatever the file overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable named in the system's configuration surface.
type Config struct {
	RMI        RMIConfig        `yaml:"rmi"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Barrels    BarrelsConfig    `yaml:"barrels"`
	Downloader DownloaderConfig `yaml:"downloader"`
	Bloom      BloomConfig      `yaml:"bloom"`
	Statistics StatisticsConfig `yaml:"statistics"`
	Barrel     BarrelConfig     `yaml:"barrel"`
}

// RMIConfig locates the shared name registry.
type RMIConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GatewayConfig names the Dispatcher's registry binding.
type GatewayConfig struct {
	Name string `yaml:"name"`
}

// BarrelsConfig describes the configured Storage Node replica set. Names are
// formed as "<Prefix><index>"; index 0 is the primary.
type BarrelsConfig struct {
	Count  int    `yaml:"count"`
	Prefix string `yaml:"prefix"`
}

// Name returns the registry name of the i-th configured storage node.
func (b BarrelsConfig) Name(i int) string {
	return fmt.Sprintf("%s%d", b.Prefix, i)
}

// DownloaderConfig sizes the crawler process.
type DownloaderConfig struct {
	Threads int `yaml:"threads"`
	// RequestsPerSecond caps each worker's fetch rate; 0 means unlimited.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// BloomConfig sizes every storage node's Bloom filter.
type BloomConfig struct {
	ExpectedElements  int     `yaml:"expected_elements"`
	FalsePositiveRate float64 `yaml:"false_positive_rate"`
}

// StatisticsConfig controls the Dispatcher's stats-push tick.
type StatisticsConfig struct {
	MonitorIntervalMS int `yaml:"monitor_interval_ms"`
}

// BarrelConfig controls the primary Storage Node's autosave tick.
type BarrelConfig struct {
	AutosaveIntervalSeconds int `yaml:"autosave_interval_seconds"`
}

// DefaultConfig returns a Config populated with every documented default.
func DefaultConfig() *Config {
	return &Config{
		RMI: RMIConfig{
			Host: "127.0.0.1",
			Port: 9000,
		},
		Gateway: GatewayConfig{
			Name: "gateway",
		},
		Barrels: BarrelsConfig{
			Count:  2,
			Prefix: "barrel",
		},
		Downloader: DownloaderConfig{
			Threads:           2,
			RequestsPerSecond: 5,
		},
		Bloom: BloomConfig{
			ExpectedElements:  100000,
			FalsePositiveRate: 0.01,
		},
		Statistics: StatisticsConfig{
			MonitorIntervalMS: 3000,
		},
		Barrel: BarrelConfig{
			AutosaveIntervalSeconds: 60,
		},
	}
}

// Load reads a YAML config file at path and merges it over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads the config at path, falling back to DefaultConfig when
// the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(path)
}
