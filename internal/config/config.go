// Package config handles tracer configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level tracer configuration.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Scan    ScanConfig    `yaml:"scan"`
	Store   StoreConfig   `yaml:"store"`
	Serve   ServeConfig   `yaml:"serve"`
}

// BrowserConfig controls the Chrome lifecycle.
type BrowserConfig struct {
	// Remote is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome.
	Remote  string `yaml:"remote"`
	Headful bool   `yaml:"headful"`
}

// ScanConfig controls scanning behaviour.
type ScanConfig struct {
	DeepScan          bool          `yaml:"deep_scan"`
	FontPreviewSource string        `yaml:"font_preview_source"` // pangram | og-description | page-content
	NavigateTimeout   time.Duration `yaml:"navigate_timeout"`
}

// StoreConfig controls scan-history persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ServeConfig controls the HTTP API.
type ServeConfig struct {
	Listen string `yaml:"listen"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Scan.FontPreviewSource == "" {
		c.Scan.FontPreviewSource = "pangram"
	}
	if c.Scan.NavigateTimeout <= 0 {
		c.Scan.NavigateTimeout = 45 * time.Second
	}
	if c.Store.Path == "" {
		c.Store.Path = "tracer.db"
	}
	if c.Serve.Listen == "" {
		c.Serve.Listen = "127.0.0.1:8077"
	}
}
