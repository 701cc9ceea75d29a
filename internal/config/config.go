// Package config implements the on-disk process configuration, adapted
// from the teacher's config.go: a plain YAML-backed struct with
// DefaultConfig/LoadConfig/SaveConfig, generalized from "a list of MPD
// targets" to the host process's server/library/logging settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig is the transport bind address. The debug posture is the
// top-level Config.Debug field.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LibraryConfig locates the persisted media library document (spec §6).
type LibraryConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig separates process-wide verbosity from the transport's own
// (spec §6: LOGLEVEL vs --server_log_level).
type LoggingConfig struct {
	Level       string `yaml:"level"`
	ServerLevel string `yaml:"server_level"`
}

// Config is the full process configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Library LibraryConfig `yaml:"library"`
	Logging LoggingConfig `yaml:"logging"`
	Debug   bool          `yaml:"debug"`
}

// DefaultPort is the wire protocol's default port (spec §6).
const DefaultPort = 9821

// DefaultConfig returns the configuration a fresh install should start
// from.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: DefaultPort,
		},
		Library: LibraryConfig{
			Path: "library.json",
		},
		Logging: LoggingConfig{
			Level:       "info",
			ServerLevel: "warn",
		},
	}
}

// LoadConfig reads and parses the YAML config at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as YAML.
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
