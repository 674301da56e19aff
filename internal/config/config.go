// Package config loads wugctl configuration from a YAML file with
// WUG_-prefixed environment variable overrides.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Retry   RetryConfig   `yaml:"retry"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	URL                string `yaml:"url" validate:"required,url"`
	TimeoutMS          int    `yaml:"timeout_ms"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

type AuthConfig struct {
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password" validate:"required"`
}

type RetryConfig struct {
	MaxRetries int `yaml:"max_retries" validate:"min=0,max=10"`
}

type OutputConfig struct {
	Directory   string `yaml:"directory"`
	ReportTitle string `yaml:"report_title"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

var validate = validator.New()

// Load reads configuration from file and applies environment variable overrides
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.TimeoutMS == 0 {
		c.Server.TimeoutMS = 30000
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "."
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate ensures all required configuration values are set
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if !c.Logging.IsLogLevelValid() {
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format %q", c.Logging.Format)
	}
	return nil
}

// applyEnvOverrides checks for environment variables with WUG_ prefix
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WUG_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("WUG_SERVER_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.TimeoutMS = n
		}
	}
	if v := os.Getenv("WUG_INSECURE_SKIP_VERIFY"); v != "" {
		cfg.Server.InsecureSkipVerify = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("WUG_AUTH_USERNAME"); v != "" {
		cfg.Auth.Username = v
	}
	if v := os.Getenv("WUG_AUTH_PASSWORD"); v != "" {
		cfg.Auth.Password = v
	}
	if v := os.Getenv("WUG_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// GetTimeout returns the request timeout as a duration
func (s *ServerConfig) GetTimeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// IsLogLevelValid checks if the log level is valid
func (l *LoggingConfig) IsLogLevelValid() bool {
	validLevels := []string{"debug", "info", "warn", "error"}
	return slices.Contains(validLevels, strings.ToLower(l.Level))
}
