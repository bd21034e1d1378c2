// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Simulate SimulateConfig `toml:"simulate"`
}

// SimulateConfig maps simulation-related settings.
type SimulateConfig struct {
	Layout        *string  `toml:"layout"`
	MillisPerUnit *float64 `toml:"ms-per-unit"`
	PressMillis   *int     `toml:"press-ms"`
	Parallel      *bool    `toml:"parallel"`
	Workers       *int     `toml:"workers"`
	NoVisualize   *bool    `toml:"no-visualize"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
