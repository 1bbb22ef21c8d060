// Package config loads process configuration from the environment and the
// optional attendance rule file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/warp/punchclock/attendance"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Scheduler SchedulerConfig

	// Location is the zone that defines calendar days.
	Location *time.Location
	Rules    attendance.Rules
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string

	// AllowedOrigins are the CORS origins; empty means the local dev servers.
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Path string
}

type SchedulerConfig struct {
	Interval time.Duration
}

// IsDevelopment enables development-only features such as virtual time.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// SlogLevel maps LOG_LEVEL to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Load reads the given env files (".env" when none are named; a missing file
// is not an error) and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				config.App.AllowedOrigins = append(config.App.AllowedOrigins, o)
			}
		}
	}

	config.Database = DatabaseConfig{
		Path: getEnv("DB_PATH", "punchclock.db"),
	}

	interval, err := time.ParseDuration(getEnv("SCHEDULER_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_INTERVAL: %w", err)
	}
	config.Scheduler = SchedulerConfig{Interval: interval}

	loc, err := time.LoadLocation(getEnv("TIME_ZONE", "Asia/Tokyo"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE: %w", err)
	}
	config.Location = loc

	config.Rules = attendance.DefaultRules()
	if path := getEnv("RULES_FILE", ""); path != "" {
		rules, err := LoadRules(path)
		if err != nil {
			return nil, err
		}
		config.Rules = rules
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT out of range: %d", c.App.Port)
	}
	switch c.App.Env {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("APP_ENV must be development, staging or production, got %q", c.App.Env)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("SCHEDULER_INTERVAL must be positive")
	}
	return c.Rules.Validate()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
