// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	DBURL             string        `mapstructure:"DB_URL"`
	HTTPAddr          string        `mapstructure:"HTTP_ADDR"`
	GithubToken       string        `mapstructure:"GITHUB_TOKEN"`
	GithubAPIURL      string        `mapstructure:"GITHUB_API_URL"`
	GeminiAPIKey      string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel       string        `mapstructure:"GEMINI_MODEL"`
	EnrichmentTimeout time.Duration `mapstructure:"ENRICHMENT_TIMEOUT"`
	WorkerCount       int           `mapstructure:"WORKER_COUNT"`
	QueueSize         int           `mapstructure:"QUEUE_SIZE"`
	DefaultMaxCommits int           `mapstructure:"DEFAULT_MAX_COMMITS"`
	RetryMaxAttempts  int           `mapstructure:"RETRY_MAX_ATTEMPTS"`
	RetryBaseDelay    time.Duration `mapstructure:"RETRY_BASE_DELAY"`
	RetryMaxDelay     time.Duration `mapstructure:"RETRY_MAX_DELAY"`
	ReposToSync       []string      `mapstructure:"REPOS_TO_SYNC"`
	SyncSchedule      string        `mapstructure:"SYNC_SCHEDULE"`
}

// keys lists every setting so that AutomaticEnv can see variables without a default.
var keys = []string{
	"LOG_LEVEL", "DB_URL", "HTTP_ADDR", "GITHUB_TOKEN", "GITHUB_API_URL",
	"GEMINI_API_KEY", "GEMINI_MODEL", "ENRICHMENT_TIMEOUT", "WORKER_COUNT",
	"QUEUE_SIZE", "DEFAULT_MAX_COMMITS", "RETRY_MAX_ATTEMPTS", "RETRY_BASE_DELAY",
	"RETRY_MAX_DELAY", "REPOS_TO_SYNC", "SYNC_SCHEDULE",
}

// LoadConfig reads configuration from a .env file in the working directory
// and/or environment variables. Environment variables win.
func LoadConfig() (*Config, error) {
	return load(".")
}

func load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GEMINI_MODEL", "gemini-3-flash-preview")
	v.SetDefault("ENRICHMENT_TIMEOUT", "8s")
	v.SetDefault("WORKER_COUNT", 4)
	v.SetDefault("QUEUE_SIZE", 100)
	v.SetDefault("DEFAULT_MAX_COMMITS", 100)
	v.SetDefault("RETRY_MAX_ATTEMPTS", 3)
	v.SetDefault("RETRY_BASE_DELAY", "2s")
	v.SetDefault("RETRY_MAX_DELAY", "10s")
	v.SetDefault("SYNC_SCHEDULE", "@every 1h")

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(configPath)
	_ = v.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.ReposToSync = splitList(cfg.ReposToSync)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	// Validate required fields
	if c.DBURL == "" {
		return errors.New("DB_URL is a required configuration field")
	}
	if c.GithubToken == "" {
		return errors.New("GITHUB_TOKEN is a required configuration field")
	}

	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1, got %d", c.WorkerCount)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("QUEUE_SIZE must be at least 1, got %d", c.QueueSize)
	}
	if c.DefaultMaxCommits < 1 || c.DefaultMaxCommits > 1000 {
		return fmt.Errorf("DEFAULT_MAX_COMMITS must be between 1 and 1000, got %d", c.DefaultMaxCommits)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.RetryMaxAttempts)
	}
	if c.RetryBaseDelay < 0 || c.RetryMaxDelay < c.RetryBaseDelay {
		return errors.New("RETRY_BASE_DELAY must be non-negative and not exceed RETRY_MAX_DELAY")
	}
	if c.EnrichmentTimeout <= 0 {
		return errors.New("ENRICHMENT_TIMEOUT must be positive")
	}
	return nil
}

// EnrichmentEnabled reports whether an AI provider is configured.
func (c *Config) EnrichmentEnabled() bool {
	return c.GeminiAPIKey != ""
}

// splitList normalizes REPOS_TO_SYNC, which may be separated by commas and/or spaces.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		out = append(out, strings.FieldsFunc(item, func(r rune) bool {
			return r == ',' || r == ' '
		})...)
	}
	return out
}
