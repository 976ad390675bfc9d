package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a yaml config on top of Default, expanding ${VAR} and
// ${VAR:-fallback} references against the environment before parsing.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	data = substituteEnvVars(data)

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault is Load for optional --config flags: an empty or
// unreadable path falls back to the defaults.
func LoadOrDefault(path string) *Config {
	if path == "" {
		return Default()
	}

	cfg, err := Load(path)
	if err != nil {
		return Default()
	}

	return cfg
}
