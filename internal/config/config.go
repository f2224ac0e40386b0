// Package config handles configuration loading and management for coverdesk.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for coverdesk.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Router    RouterConfig    `mapstructure:"router"`
	Timeouts  TimeoutsConfig  `mapstructure:"timeouts"`
	Database  DatabaseConfig  `mapstructure:"database"`
	FAQ       FAQConfig       `mapstructure:"faq"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"`
	MaxTokens  int64  `mapstructure:"max_tokens"`
	MaxRetries int    `mapstructure:"max_retries"`
	// Bedrock routes requests through AWS Bedrock instead of the direct API.
	Bedrock    bool   `mapstructure:"bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// RouterConfig bounds routing.
type RouterConfig struct {
	MaxIterations int `mapstructure:"max_iterations"`
}

// TimeoutsConfig holds the per-call timeouts.
type TimeoutsConfig struct {
	Classify   time.Duration `mapstructure:"classify"`
	Dispatch   time.Duration `mapstructure:"dispatch"`
	Synthesize time.Duration `mapstructure:"synthesize"`
	Escalate   time.Duration `mapstructure:"escalate"`
}

// DatabaseConfig selects the SQLite file and driver.
type DatabaseConfig struct {
	// Path is the database file. Empty uses the XDG data directory.
	Path string `mapstructure:"path"`
	// Driver is "sqlite" (pure Go) or "sqlite3" (cgo).
	Driver string `mapstructure:"driver"`
}

// FAQConfig holds knowledge base settings.
type FAQConfig struct {
	TopK int `mapstructure:"top_k"`
	// Path is an optional YAML file replacing the built-in FAQs.
	Path      string          `mapstructure:"path"`
	Watch     bool            `mapstructure:"watch"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
}

// EmbeddingConfig enables semantic reranking of FAQ results.
type EmbeddingConfig struct {
	// Provider is "gemini" or empty to disable reranking.
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	// Format is "console" or "json".
	Format string `mapstructure:"format"`
	// File receives log output. Empty writes to stderr.
	File string `mapstructure:"file"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, GEMINI_API_KEY, COVERDESK_*)
// 2. Project config (.coverdesk.yaml in current directory or parent)
// 3. User config (~/.config/coverdesk/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	bindEnv(v)

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	bindEnv(v)

	return unmarshal(v)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("coverdesk")
	v.AutomaticEnv()

	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("faq.embedding.api_key", "GEMINI_API_KEY")
	v.BindEnv("logging.level", "COVERDESK_LOG_LEVEL")
	v.BindEnv("database.path", "COVERDESK_DB")
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.FAQ.Embedding.APIKey = expandEnv(cfg.FAQ.Embedding.APIKey)
	cfg.Database.Path = expandEnv(cfg.Database.Path)
	cfg.FAQ.Path = expandEnv(cfg.FAQ.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if c.Router.MaxIterations < 1 {
		return fmt.Errorf("router.max_iterations must be at least 1, got %d", c.Router.MaxIterations)
	}
	if c.FAQ.TopK < 1 {
		return fmt.Errorf("faq.top_k must be at least 1, got %d", c.FAQ.TopK)
	}
	switch c.Database.Driver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("database.driver must be sqlite or sqlite3, got %q", c.Database.Driver)
	}
	switch c.FAQ.Embedding.Provider {
	case "", "gemini":
	default:
		return fmt.Errorf("faq.embedding.provider must be empty or gemini, got %q", c.FAQ.Embedding.Provider)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

// Save writes the configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return SaveTo(cfg, filepath.Join(userConfigDir, "config.yaml"))
}

// SaveTo writes the configuration to path.
func SaveTo(cfg *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.base_url", cfg.Anthropic.BaseURL)
	v.Set("anthropic.max_tokens", cfg.Anthropic.MaxTokens)
	v.Set("anthropic.max_retries", cfg.Anthropic.MaxRetries)
	v.Set("anthropic.bedrock", cfg.Anthropic.Bedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("router.max_iterations", cfg.Router.MaxIterations)
	v.Set("timeouts.classify", cfg.Timeouts.Classify.String())
	v.Set("timeouts.dispatch", cfg.Timeouts.Dispatch.String())
	v.Set("timeouts.synthesize", cfg.Timeouts.Synthesize.String())
	v.Set("timeouts.escalate", cfg.Timeouts.Escalate.String())
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.driver", cfg.Database.Driver)
	v.Set("faq.top_k", cfg.FAQ.TopK)
	v.Set("faq.path", cfg.FAQ.Path)
	v.Set("faq.watch", cfg.FAQ.Watch)
	v.Set("faq.embedding.provider", cfg.FAQ.Embedding.Provider)
	v.Set("faq.embedding.api_key", cfg.FAQ.Embedding.APIKey)
	v.Set("faq.embedding.model", cfg.FAQ.Embedding.Model)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.format", cfg.Logging.Format)
	v.Set("logging.file", cfg.Logging.File)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("anthropic.api_key", d.Anthropic.APIKey)
	v.SetDefault("anthropic.model", d.Anthropic.Model)
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("anthropic.max_tokens", d.Anthropic.MaxTokens)
	v.SetDefault("anthropic.max_retries", d.Anthropic.MaxRetries)
	v.SetDefault("anthropic.bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("router.max_iterations", d.Router.MaxIterations)

	v.SetDefault("timeouts.classify", d.Timeouts.Classify.String())
	v.SetDefault("timeouts.dispatch", d.Timeouts.Dispatch.String())
	v.SetDefault("timeouts.synthesize", d.Timeouts.Synthesize.String())
	v.SetDefault("timeouts.escalate", d.Timeouts.Escalate.String())

	v.SetDefault("database.path", "")
	v.SetDefault("database.driver", d.Database.Driver)

	v.SetDefault("faq.top_k", d.FAQ.TopK)
	v.SetDefault("faq.path", "")
	v.SetDefault("faq.watch", false)
	v.SetDefault("faq.embedding.provider", "")
	v.SetDefault("faq.embedding.api_key", "")
	v.SetDefault("faq.embedding.model", d.FAQ.Embedding.Model)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", "")
}

// getUserConfigDir returns the XDG config directory for coverdesk.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "coverdesk")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "coverdesk")
	}
	return filepath.Join(home, ".config", "coverdesk")
}

// findProjectConfig searches for .coverdesk.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".coverdesk.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model:      "claude-sonnet-4-20250514",
			MaxTokens:  1024,
			MaxRetries: 2,
		},
		Router: RouterConfig{
			MaxIterations: 5,
		},
		Timeouts: TimeoutsConfig{
			Classify:   30 * time.Second,
			Dispatch:   60 * time.Second,
			Synthesize: 30 * time.Second,
			Escalate:   30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
		},
		FAQ: FAQConfig{
			TopK: 3,
			Embedding: EmbeddingConfig{
				Model: "gemini-embedding-001",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
