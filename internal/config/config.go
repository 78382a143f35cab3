// Package config provides configuration management for the mindmap server.
//
// Config files are YAML or TOML, chosen by extension. Locations (priority order):
//  1. $MINDMAP_CONFIG
//  2. ./mindmap.yaml
//  3. ./mindmap.toml
//  4. $XDG_CONFIG_HOME/mindmap/config.yaml
//  5. ~/.config/mindmap/config.yaml
//  6. /etc/mindmap/config.yaml
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"mindmap/internal/domain"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch format(path) {
	case "toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, path, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, path, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path in the format its extension names
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var buf bytes.Buffer
	switch format(path) {
	case "toml":
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
	default:
		data, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		buf.Write(data)
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}

func format(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(15 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		// the event stream holds responses open, so this only bounds ordinary handlers
		c.Server.WriteTimeout = Duration(60 * time.Second)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(120 * time.Second)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Graph.SeedLabel == "" {
		c.Graph.SeedLabel = domain.CentralTopicLabel
	}
	if c.Graph.SeedColor == "" {
		c.Graph.SeedColor = domain.CentralTopicColor
	}
	if c.Graph.DefaultStyle == "" {
		c.Graph.DefaultStyle = string(domain.DefaultStyle)
	}
	if c.Graph.SpawnRadius == 0 {
		c.Graph.SpawnRadius = 250
	}

	if c.Documents.MaxUploadBytes == 0 {
		c.Documents.MaxUploadBytes = 10 << 20
	}
	if c.Documents.MaxFiles == 0 {
		c.Documents.MaxFiles = 20
	}
	if c.Documents.ReadConcurrency == 0 {
		c.Documents.ReadConcurrency = 4
	}

	if c.Events.Buffer == 0 {
		c.Events.Buffer = 256
	}
	if c.Events.ClientBuffer == 0 {
		c.Events.ClientBuffer = 64
	}
	if c.Events.KeepAlive == 0 {
		c.Events.KeepAlive = Duration(30 * time.Second)
	}
}

// Validate reports the first setting that cannot be used
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return describe(err)
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Listen: %s, Log: %s\n", c.Server.Addr, c.Log.Level)
	summary += fmt.Sprintf("Seed: %q %s, Default style: %s\n", c.Graph.SeedLabel, c.Graph.SeedColor, c.Graph.DefaultStyle)
	summary += fmt.Sprintf("Uploads: %d bytes, %d files, %d concurrent reads",
		c.Documents.MaxUploadBytes, c.Documents.MaxFiles, c.Documents.ReadConcurrency)
	return summary
}
