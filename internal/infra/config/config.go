// Package config provides configuration loading from YAML files.
package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Spotify SpotifyConfig `yaml:"spotify"`
	Queue   QueueConfig   `yaml:"queue"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Addr               string `yaml:"addr" default:":8080"`
	BaseURL            string `yaml:"base_url" default:"http://localhost:8080"`
	CookieSecret       string `yaml:"cookie_secret" validate:"required,min=16"`
	ShutdownTimeoutSec int    `yaml:"shutdown_timeout_sec" default:"10" validate:"gte=1,lte=60"`
}

// StoreConfig represents session store configuration.
type StoreConfig struct {
	Path string `yaml:"path" default:"minutemix.db"`
}

// SpotifyConfig represents Spotify API configuration.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id" validate:"required"`
	ClientSecret string `yaml:"client_secret" validate:"required"`
	Market       string `yaml:"market" validate:"omitempty,len=2"`
}

// QueueConfig represents queue generation configuration.
type QueueConfig struct {
	Trials          int                       `yaml:"trials" default:"10" validate:"gte=1,lte=1000"`
	CacheSize       int                       `yaml:"cache_size" default:"32" validate:"gte=1,lte=1024"`
	CacheTTLSec     int                       `yaml:"cache_ttl_sec" default:"300" validate:"gte=10"`
	SessionTTLHours int                       `yaml:"session_ttl_hours" default:"720" validate:"gte=1"`
	Presets         map[string]map[string]any `yaml:"presets,omitempty"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" default:"info"`
	Output string `yaml:"output" default:"stdout"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("MINUTEMIX_COOKIE_SECRET"); v != "" {
		c.Server.CookieSecret = v
	}
	if v := os.Getenv("MINUTEMIX_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("MINUTEMIX_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("MINUTEMIX_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if err := c.validateBaseURL(); err != nil {
		return err
	}

	return nil
}

// validateBaseURL checks that base_url is an absolute http(s) URL.
func (c *Config) validateBaseURL() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return errors.Wrap(err, "failed to parse base_url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Newf("base_url (%s) must use http or https", c.Server.BaseURL)
	}
	if u.Host == "" {
		return errors.Newf("base_url (%s) must include a host", c.Server.BaseURL)
	}
	return nil
}

// RedirectURL returns the OAuth callback URL under base_url.
func (c *Config) RedirectURL() string {
	return strings.TrimRight(c.Server.BaseURL, "/") + "/callback"
}

// ShutdownTimeout returns the graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSec) * time.Second
}

// CacheTTL returns the playlist track cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Queue.CacheTTLSec) * time.Second
}

// SessionTTL returns how long an idle web session stays valid.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Queue.SessionTTLHours) * time.Hour
}
