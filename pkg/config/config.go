// Package config loads the driftscope configuration from file, environment,
// and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete driftscope configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Server  ServerConfig  `mapstructure:"server"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StorageConfig contains snapshot storage configuration.
type StorageConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

// CacheConfig contains drift result cache configuration.
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	MaxEntries int  `mapstructure:"max_entries"`
}

// ServerConfig contains the HTTP read path configuration.
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EngineConfig contains drift engine tuning.
type EngineConfig struct {
	Parallelism int `mapstructure:"parallelism"`
}

// OutputConfig contains output formatting configuration.
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Storage: StorageConfig{BaseDir: filepath.Join(homeDir, ".driftscope")},
		Cache:   CacheConfig{Enabled: true, MaxEntries: 128},
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8600},
		Engine:  EngineConfig{Parallelism: 0},
		Output:  OutputConfig{Format: "table"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads configuration from the config file (if present), environment
// variables prefixed DRIFTSCOPE_, and defaults.
func Load() (*Config, error) {
	defaults := DefaultConfig()

	viper.SetDefault("storage.base_dir", defaults.Storage.BaseDir)
	viper.SetDefault("cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("cache.max_entries", defaults.Cache.MaxEntries)
	viper.SetDefault("server.host", defaults.Server.Host)
	viper.SetDefault("server.port", defaults.Server.Port)
	viper.SetDefault("engine.parallelism", defaults.Engine.Parallelism)
	viper.SetDefault("output.format", defaults.Output.Format)
	viper.SetDefault("logging.level", defaults.Logging.Level)

	if viper.ConfigFileUsed() == "" {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		if homeDir, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".driftscope"))
		}
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("DRIFTSCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return &cfg, nil
}
