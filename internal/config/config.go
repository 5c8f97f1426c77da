package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Runner  RunnerConfig  `yaml:"runner"`
	Events  EventsConfig  `yaml:"events"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds admin HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type string `yaml:"type"` // "memory" or "file"
	Path string `yaml:"path"` // Path for file storage
}

// RunnerConfig holds sequence execution configuration
type RunnerConfig struct {
	Timeout        time.Duration     `yaml:"timeout"`        // per HTTP call
	MaxConcurrent  int               `yaml:"maxConcurrent"`  // concurrent sequences
	AbortOnFailure bool              `yaml:"abortOnFailure"` // default failure policy
	SeedBindings   map[string]string `yaml:"seedBindings"`   // e.g. auth token
	Headers        map[string]string `yaml:"headers"`        // added to every request
}

// EventsConfig holds execution event buffer configuration
type EventsConfig struct {
	MaxEvents int `yaml:"maxEvents"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Storage: StorageConfig{
			Type: "file",
			Path: "./data",
		},
		Runner: RunnerConfig{
			Timeout:        10 * time.Second,
			MaxConcurrent:  4,
			AbortOnFailure: false,
		},
		Events: EventsConfig{
			MaxEvents: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from a YAML file, overlaying the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
