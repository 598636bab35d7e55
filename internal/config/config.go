//-------------------------------------------------------------------------
//
// CityRetail Warehouse ETL
//
// Copyright (c) 2025 - 2026, CityRetail Analytics
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for cityretail-etl.
// Paths and logging come from a config file overridable by CLI flags;
// warehouse credentials come strictly from the environment (DB_HOST,
// DB_PORT, DB_NAME, DB_USER, DB_PASS) and are never defaulted.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// ErrMissingCredential is returned when a required database credential
// is absent from the environment.
var ErrMissingCredential = errors.New("missing database credential")

// Config holds all configuration for cityretail-etl.
type Config struct {
	// Database holds warehouse connection credentials.
	Database DatabaseConfig `mapstructure:"database"`

	// DataDir is the root data directory. raw/, cleaned/ and logs/
	// live beneath it.
	DataDir string `mapstructure:"data_dir"`

	// ScriptsDir is the directory holding post-load SQL maintenance
	// scripts (kpi_views.sql, kpi_indexes.sql).
	ScriptsDir string `mapstructure:"scripts_dir"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig holds the warehouse credentials. Every field is
// required; there are no defaults.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// DefaultConfig returns a Config with default values. Database
// credentials are deliberately left empty.
func DefaultConfig() *Config {
	return &Config{
		DataDir:    "data",
		ScriptsDir: "sql",
		LogLevel:   "info",
	}
}

// Load reads configuration from config files and the environment.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./cityretail-etl.yaml
// 3. ~/.config/cityretail-etl/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("cityretail-etl")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "cityretail-etl"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Credentials are environment-only.
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASS")
	v.BindEnv("data_dir", "DATA_PATH")

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present. Missing
// credentials abort before any I/O is attempted.
func (c *Config) Validate() error {
	for _, cred := range []struct {
		env   string
		value string
	}{
		{"DB_HOST", c.Database.Host},
		{"DB_PORT", c.Database.Port},
		{"DB_NAME", c.Database.Name},
		{"DB_USER", c.Database.User},
		{"DB_PASS", c.Database.Password},
	} {
		if cred.value == "" {
			return fmt.Errorf("%w: %s is not set", ErrMissingCredential, cred.env)
		}
	}
	if _, err := strconv.Atoi(c.Database.Port); err != nil {
		return fmt.Errorf("DB_PORT must be numeric, got %q", c.Database.Port)
	}
	return nil
}

// ConnString builds a PostgreSQL connection URL from the credentials.
func (c *Config) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		url.QueryEscape(c.Database.User),
		url.QueryEscape(c.Database.Password),
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// RawDir returns the directory holding raw extracts.
func (c *Config) RawDir() string {
	return filepath.Join(c.DataDir, "raw")
}

// CleanedDir returns the directory holding cleaned snapshots.
func (c *Config) CleanedDir() string {
	return filepath.Join(c.DataDir, "cleaned")
}

// LogFile returns the path of the persistent log file.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "logs", "etl.log")
}

// EnsureDirs creates the raw, cleaned and log directories if absent.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.RawDir(), c.CleanedDir(), filepath.Dir(c.LogFile())} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
