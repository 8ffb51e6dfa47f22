// Package config loads application settings from flags, environment,
// .env and an optional YAML file through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// PLANNER_SERVER_PORT for server.port.
const EnvPrefix = "PLANNER"

// Config holds all configuration for the application.
type Config struct {
	ServerPort   int
	DatabasePath string

	LogLevel    string
	Environment string

	CycleCount        int
	SurfaceUnresolved bool

	SchedulerEnabled bool
	SchedulerSpec    string

	InterestFreeDays int
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "planner.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.environment", "development")
	v.SetDefault("planner.cycle_count", 26)
	v.SetDefault("planner.surface_unresolved", false)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.spec", "0 6 * * *")
	v.SetDefault("interestfree.default_days", 55)
}

// Setup prepares v: .env first, then defaults, environment binding, and the
// config file. file may be empty to search $HOME/.config/planner and the
// working directory. A missing config file is not an error.
func Setup(v *viper.Viper, file string) error {
	// godotenv.Load does not override variables already set.
	_ = godotenv.Load()

	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "planner"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// Load builds a Config from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ServerPort:        v.GetInt("server.port"),
		DatabasePath:      v.GetString("database.path"),
		LogLevel:          strings.ToLower(v.GetString("log.level")),
		Environment:       strings.ToLower(v.GetString("log.environment")),
		CycleCount:        v.GetInt("planner.cycle_count"),
		SurfaceUnresolved: v.GetBool("planner.surface_unresolved"),
		SchedulerEnabled:  v.GetBool("scheduler.enabled"),
		SchedulerSpec:     v.GetString("scheduler.spec"),
		InterestFreeDays:  v.GetInt("interestfree.default_days"),
	}

	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("invalid server.port %d", cfg.ServerPort)
	}
	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("database.path is not set")
	}
	if cfg.CycleCount <= 0 {
		return nil, fmt.Errorf("invalid planner.cycle_count %d: must be positive", cfg.CycleCount)
	}
	if cfg.InterestFreeDays <= 0 {
		return nil, fmt.Errorf("invalid interestfree.default_days %d: must be positive", cfg.InterestFreeDays)
	}
	if cfg.SchedulerEnabled {
		if _, err := cron.ParseStandard(cfg.SchedulerSpec); err != nil {
			return nil, fmt.Errorf("invalid scheduler.spec %q: %w", cfg.SchedulerSpec, err)
		}
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.ServerPort) }
