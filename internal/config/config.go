// Package config loads the runtime configuration from a YAML file with
// environment variable overrides for deployment settings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a roomsync client.
type Config struct {
	Session SessionConfig `yaml:"session" json:"session"`
	Channel ChannelConfig `yaml:"channel" json:"channel"`
	Export  ExportConfig  `yaml:"export" json:"export"`
	Redis   RedisConfig   `yaml:"redis" json:"redis"`
	HTTP    HTTPConfig    `yaml:"http" json:"http"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

// SessionConfig identifies the session and selects the state variant.
type SessionConfig struct {
	ID         string        `yaml:"id" json:"id"`
	Variant    string        `yaml:"variant" json:"variant"`
	AckTimeout time.Duration `yaml:"ack_timeout" json:"ack_timeout"`
}

// ChannelConfig selects the data channel transport.
type ChannelConfig struct {
	URL string `yaml:"url" json:"url"`
}

// ExportConfig controls where save acknowledgements are exported.
type ExportConfig struct {
	Dir    string `yaml:"dir" json:"dir"`
	Prefix string `yaml:"prefix" json:"prefix"`
}

// RedisConfig enables the Redis snapshot archive when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

// HTTPConfig enables the local observer API when Addr is set.
type HTTPConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// LogConfig controls the log level.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			ID:         "default",
			Variant:    "commerce",
			AckTimeout: 30 * time.Second,
		},
		Export: ExportConfig{
			Dir:    "snapshots",
			Prefix: "snapshot",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path, fills in defaults, applies environment
// overrides and validates the result. A missing file is not an error: the
// defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus environment.
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides deployment settings from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("ROOMSYNC_CHANNEL_URL"); v != "" {
		c.Channel.URL = v
	}
	if v := os.Getenv("ROOMSYNC_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("ROOMSYNC_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("ROOMSYNC_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("ROOMSYNC_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate reports configuration errors before anything connects.
func (c *Config) Validate() error {
	if c.Session.ID == "" {
		return fmt.Errorf("session.id must not be empty")
	}
	switch c.Session.Variant {
	case "commerce", "arcade":
	default:
		return fmt.Errorf("unknown session.variant %q (want commerce or arcade)", c.Session.Variant)
	}
	if c.Session.AckTimeout <= 0 {
		return fmt.Errorf("session.ack_timeout must be positive, got %s", c.Session.AckTimeout)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	return nil
}
