package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Files     FilesConfig     `yaml:"files" toml:"files"`
	System    SystemConfig    `yaml:"system" toml:"system"`
	Logging   LogConfig       `yaml:"logging" toml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" yaml:"port" toml:"port"`
	Host string `envconfig:"HOST" yaml:"host" toml:"host"`
}

// FilesConfig holds file manager configuration.
type FilesConfig struct {
	Root                    string `envconfig:"FILES_ROOT" yaml:"root" toml:"root"`
	MaxUploadBytes          int64  `envconfig:"FILES_MAX_UPLOAD_BYTES" yaml:"max_upload_bytes" toml:"max_upload_bytes"`
	SearchLimit             int    `envconfig:"FILES_SEARCH_LIMIT" yaml:"search_limit" toml:"search_limit"`
	OperationTimeoutSeconds int    `envconfig:"FILES_OPERATION_TIMEOUT_SECONDS" yaml:"operation_timeout_seconds" toml:"operation_timeout_seconds"`
}

// SystemConfig holds configuration of the OS utilities (packages, ping).
type SystemConfig struct {
	Enabled               bool `envconfig:"SYSTEM_ENABLED" yaml:"enabled" toml:"enabled"`
	CommandTimeoutSeconds int  `envconfig:"SYSTEM_COMMAND_TIMEOUT_SECONDS" yaml:"command_timeout_seconds" toml:"command_timeout_seconds"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" yaml:"development" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" yaml:"enabled" toml:"enabled"`
}

// OperationTimeout bounds a single mutating file operation.
func (f FilesConfig) OperationTimeout() time.Duration {
	return time.Duration(f.OperationTimeoutSeconds) * time.Second
}

// CommandTimeout bounds a single system command.
func (s SystemConfig) CommandTimeout() time.Duration {
	return time.Duration(s.CommandTimeoutSeconds) * time.Second
}

// Address returns host:port for the HTTP listener.
func (s ServerConfig) Address() string {
	return s.Host + ":" + s.Port
}

// Load builds the configuration. Later sources win:
// defaults, then the file named by CONFIG_FILE (YAML or TOML), then the
// environment. A .env file in the working directory is read into the
// environment first without overriding variables that are already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	// No default tags: unset variables leave earlier values alone.
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadFile overlays a YAML (.yaml, .yml) or TOML (.toml) file on cfg.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("unsupported config file format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Server.Port))
	}
	if !filepath.IsAbs(c.Files.Root) {
		errs = append(errs, fmt.Errorf("files root must be absolute, got %q", c.Files.Root))
	}
	if c.Files.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max upload bytes must be positive"))
	}
	if c.Files.SearchLimit <= 0 {
		errs = append(errs, errors.New("search limit must be positive"))
	}
	if c.Files.OperationTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("operation timeout must be positive"))
	}
	if c.System.CommandTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("command timeout must be positive"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("rate limit values must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Host: "0.0.0.0",
		},
		Files: FilesConfig{
			Root:                    "/opt",
			MaxUploadBytes:          100 << 20,
			SearchLimit:             500,
			OperationTimeoutSeconds: 600,
		},
		System: SystemConfig{
			Enabled:               true,
			CommandTimeoutSeconds: 30,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}
