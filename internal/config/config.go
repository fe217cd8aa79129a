package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Database paths
	SQLitePath string `mapstructure:"sqlite-path"`
	FSMDBPath  string `mapstructure:"fsm-db-path"`

	// S3 configuration (for s3:// image paths)
	S3Region string `mapstructure:"s3-region"`

	// Monitor cadence in milliseconds
	PollIntervalMS int `mapstructure:"poll-interval-ms"`

	// Write granularity in bytes
	ChunkSize int `mapstructure:"chunk-size"`

	// FSM configuration
	FSMMaxRetries int `mapstructure:"fsm-max-retries"`
}

// Load reads configuration from environment, config file, and defaults
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("sqlite-path", ".artifacts/multiflash.db")
	viper.SetDefault("fsm-db-path", ".artifacts/fsm.db")
	viper.SetDefault("s3-region", "us-east-1")
	viper.SetDefault("poll-interval-ms", 500)
	viper.SetDefault("chunk-size", 4*1024*1024)
	viper.SetDefault("fsm-max-retries", 5)

	// Environment variables (will be MULTIFLASH_SQLITE_PATH, etc.)
	viper.SetEnvPrefix("MULTIFLASH")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Config file (optional)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.multiflash")

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()

	// Unmarshal into config struct
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	if c.SQLitePath == "" {
		return fmt.Errorf("sqlite-path cannot be empty")
	}
	if c.FSMDBPath == "" {
		return fmt.Errorf("fsm-db-path cannot be empty")
	}
	if c.S3Region == "" {
		return fmt.Errorf("s3-region cannot be empty")
	}
	if c.PollIntervalMS <= 0 {
		return fmt.Errorf("poll-interval-ms must be positive")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk-size must be positive")
	}
	if c.FSMMaxRetries < 0 {
		return fmt.Errorf("fsm-max-retries must be non-negative")
	}
	return nil
}
