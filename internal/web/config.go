package web

import (
	"fmt"
	"time"
)

// Config represents the web server configuration
type Config struct {
	Host string     `mapstructure:"host" yaml:"host"`
	Port int        `mapstructure:"port" yaml:"port"`
	Auth AuthConfig `mapstructure:"auth" yaml:"auth"`
	// RunTimeout bounds one reconciliation triggered by a request.
	RunTimeout time.Duration `mapstructure:"run_timeout" yaml:"run_timeout"`
	// DefaultFormat is used when a request names no format.
	DefaultFormat string `mapstructure:"default_format" yaml:"default_format"`
}

// AuthConfig contains authentication settings
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		Host:          "0.0.0.0",
		Port:          8080,
		RunTimeout:    2 * time.Minute,
		DefaultFormat: "json",
	}
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
