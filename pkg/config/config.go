/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/haxelion/fbx3d/pkg/fbx"
)

// Config represents the fbx3d configuration
type Config struct {
	Decoder DecoderConfig `yaml:"decoder"`
	Catalog CatalogConfig `yaml:"catalog"`
	Server  ServerConfig  `yaml:"server"`
	Logging Logging       `yaml:"logging"`
}

// DecoderConfig contains decoder limits
type DecoderConfig struct {
	MaxDepth      int   `yaml:"max_depth"`
	MaxAllocation int64 `yaml:"max_allocation"`
	StrictBounds  bool  `yaml:"strict_bounds"`
}

// CatalogConfig contains report catalog settings
type CatalogConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Bind           string `yaml:"bind"`
	Port           int    `yaml:"port"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	APIKey         string `yaml:"api_key,omitempty"` // Empty disables authentication
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Decoder: DecoderConfig{
			MaxDepth:      fbx.DefaultMaxDepth,
			MaxAllocation: fbx.DefaultMaxAllocation,
		},
		Catalog: CatalogConfig{
			Dir: "./data/catalog",
		},
		Server: ServerConfig{
			Bind:           "127.0.0.1",
			Port:           8080,
			MaxUploadBytes: 256 << 20,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// Options converts the decoder section to decoder options.
func (d DecoderConfig) Options() []fbx.Option {
	var opts []fbx.Option
	if d.MaxDepth > 0 {
		opts = append(opts, fbx.WithMaxDepth(d.MaxDepth))
	}
	if d.MaxAllocation > 0 {
		opts = append(opts, fbx.WithMaxAllocation(d.MaxAllocation))
	}
	if d.StrictBounds {
		opts = append(opts, fbx.WithStrictBounds())
	}
	return opts
}

// Validate checks the configuration for values the program cannot run with
func (c *Config) Validate() error {
	if c.Decoder.MaxDepth < 0 {
		return fmt.Errorf("decoder.max_depth cannot be negative: %d", c.Decoder.MaxDepth)
	}
	if c.Decoder.MaxAllocation < 0 {
		return fmt.Errorf("decoder.max_allocation cannot be negative: %d", c.Decoder.MaxAllocation)
	}
	if c.Catalog.Dir == "" {
		return fmt.Errorf("catalog.dir cannot be empty")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive: %d", c.Server.MaxUploadBytes)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid logging.format: %q", c.Logging.Format)
	}
	return nil
}

// LoadConfig loads configuration from the specified path. Fields absent from the
// file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./fbx3d.yaml"
	}

	// For Linux/macOS, use ~/.config/fbx3d/config.yaml
	configDir := filepath.Join(homeDir, ".config", "fbx3d")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
