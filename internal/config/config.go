// Package config loads the server's YAML configuration file using
// struct-tagged fields.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the server's bind address and logging level. Port
// defaults to 1234 and address to all interfaces.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the engine's zero-configuration defaults.
func Default() Config {
	return Config{Host: "0.0.0.0", Port: 1234, LogLevel: "info"}
}

// Load reads and parses a YAML config file at path, filling in any
// fields left zero in the file with Default's values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
