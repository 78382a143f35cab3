package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Log       LogConfig       `yaml:"log" toml:"log"`
	Graph     GraphConfig     `yaml:"graph" toml:"graph"`
	Documents DocumentsConfig `yaml:"documents" toml:"documents"`
	Events    EventsConfig    `yaml:"events" toml:"events"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Addr            string   `yaml:"addr" toml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout" toml:"write_timeout"`
	IdleTimeout     Duration `yaml:"idle_timeout" toml:"idle_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	CORSOrigins     []string `yaml:"cors_origins" toml:"cors_origins"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level       string `yaml:"level" toml:"level" validate:"loglevel"`
	Development bool   `yaml:"development" toml:"development"`
}

// GraphConfig controls the initial diagram and node placement
type GraphConfig struct {
	SeedLabel    string  `yaml:"seed_label" toml:"seed_label"`
	SeedColor    string  `yaml:"seed_color" toml:"seed_color" validate:"hexcolor"`
	DefaultStyle string  `yaml:"default_style" toml:"default_style" validate:"connstyle"`
	SpawnRadius  float64 `yaml:"spawn_radius" toml:"spawn_radius" validate:"gte=0"`
}

// DocumentsConfig limits attachments
type DocumentsConfig struct {
	MaxUploadBytes  int64 `yaml:"max_upload_bytes" toml:"max_upload_bytes" validate:"gte=0"`
	MaxFiles        int   `yaml:"max_files" toml:"max_files" validate:"gte=0"`
	ReadConcurrency int   `yaml:"read_concurrency" toml:"read_concurrency" validate:"gte=0"`
}

// EventsConfig sizes the event stream buffers
type EventsConfig struct {
	Buffer       int      `yaml:"buffer" toml:"buffer" validate:"gte=0"`
	ClientBuffer int      `yaml:"client_buffer" toml:"client_buffer" validate:"gte=0"`
	KeepAlive    Duration `yaml:"keepalive" toml:"keepalive"`
}

// Duration wraps time.Duration so config files can say "10s"
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, used by the TOML decoder
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
