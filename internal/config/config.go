package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server"`
	API       APIConfig       `yaml:"api" json:"api"`
	DB        DBConfig        `yaml:"db" json:"db"`
	Log       LogConfig       `yaml:"log" json:"log"`
	Transport TransportConfig `yaml:"transport" json:"transport"`
	Auth      AuthConfig      `yaml:"auth" json:"auth"`
}

type ServerConfig struct {
	Host string `yaml:"host" json:"host" env:"MIRROR_SERVER_HOST"`
	Port int    `yaml:"port" json:"port" env:"MIRROR_SERVER_PORT"`
}

// APIConfig moves the REST API to its own listener. With a zero port REST
// shares the server port with /mcp.
type APIConfig struct {
	Port int `yaml:"port" json:"port" env:"MIRROR_API_PORT"`
}

type DBConfig struct {
	Path string `yaml:"path" json:"path" env:"MIRROR_DB_PATH"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level" env:"MIRROR_LOG_LEVEL"`
	Path  string `yaml:"path" json:"path" env:"MIRROR_LOG_PATH"`
}

// TransportConfig selects how the MCP server is exposed: "stdio" or "http".
type TransportConfig struct {
	Mode string `yaml:"mode" json:"mode" env:"MIRROR_TRANSPORT"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled" env:"MIRROR_AUTH_ENABLED"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "mirror.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
	}
}

// Load reads configuration from an optional file and environment variables.
// Environment variables take precedence over the file.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("MIRROR_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that can't be defaulted.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q: want stdio or http", c.Transport.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api port %d", c.API.Port)
	}
	if c.DB.Path == "" {
		return fmt.Errorf("db path is required")
	}
	return nil
}

// loadFromFile reads YAML, or JSON with comments for .json and .jsonc files.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
	}
	return nil
}

// ParseLogLevel maps a configured level name to slog. Unknown names are info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
