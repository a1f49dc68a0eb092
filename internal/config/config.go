package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/utils"
)

// Config holds everything the server and CLIs need at startup. Values come
// from an optional YAML file and are overridden by environment variables.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadMB    int      `yaml:"max_upload_mb"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			MaxUploadMB: 32,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			Name:    "lotsight",
			SSLMode: "disable",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path (skipped when path is empty or absent)
// and then applies environment overrides on top.
func Load(path string, log *logger.Logger) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			if log != nil {
				log.Debug("Config file not found, using defaults", "path", path)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Server.Port = utils.GetEnvAsInt("PORT", cfg.Server.Port, log)
	cfg.Server.MaxUploadMB = utils.GetEnvAsInt("MAX_UPLOAD_MB", cfg.Server.MaxUploadMB, log)
	cfg.Database.Host = utils.GetEnv("DB_HOST", cfg.Database.Host, log)
	cfg.Database.Port = utils.GetEnvAsInt("DB_PORT", cfg.Database.Port, log)
	cfg.Database.User = utils.GetEnv("DB_USER", cfg.Database.User, log)
	cfg.Database.Password = utils.GetEnv("DB_PASSWORD", cfg.Database.Password, log)
	cfg.Database.Name = utils.GetEnv("DB_NAME", cfg.Database.Name, log)
	cfg.Database.SSLMode = utils.GetEnv("DB_SSLMODE", cfg.Database.SSLMode, log)
	cfg.Logging.Level = utils.GetEnv("LOG_LEVEL", cfg.Logging.Level, log)
	cfg.Tracing.Enabled = utils.GetEnvAsBool("TRACING_ENABLED", cfg.Tracing.Enabled, log)

	return cfg, nil
}

// DSN renders the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}
