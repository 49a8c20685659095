// Package config handles configuration loading for quorum.
// It supports XDG config paths, environment variables, and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the quorum server.
type Config struct {
	Store     StoreConfig     `mapstructure:"store"`
	Tasks     TasksConfig     `mapstructure:"tasks"`
	Inbox     InboxConfig     `mapstructure:"inbox"`
	Handoff   HandoffConfig   `mapstructure:"handoff"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Log       LogConfig       `mapstructure:"log"`
}

// StoreConfig holds durable-store settings.
type StoreConfig struct {
	// Path is the SQLite database location.
	Path string `mapstructure:"path"`
}

// TasksConfig holds task lifecycle settings.
type TasksConfig struct {
	// DefaultTimeout bounds task and handoff execution when no
	// override is given.
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
	// Retention is the age past which terminal tasks are deleted.
	Retention time.Duration `mapstructure:"retention"`
	// CleanupSchedule is a 5-field cron expression for the janitor.
	CleanupSchedule string `mapstructure:"cleanup_schedule"`
}

// InboxConfig holds inbox settings.
type InboxConfig struct {
	// MaxMessages is the per-recipient message cap.
	MaxMessages int `mapstructure:"max_messages"`
}

// HandoffConfig holds supervisor settings.
type HandoffConfig struct {
	// MaxDepth bounds recursive handoff chains.
	MaxDepth int `mapstructure:"max_depth"`
	// MaskErrors replaces unexpected internal error text with a
	// generic message in caller-visible results.
	MaskErrors bool `mapstructure:"mask_errors"`
}

// ProvidersConfig holds per-provider subprocess settings.
type ProvidersConfig struct {
	// Timeout bounds a single provider invocation.
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxRetries is the maximum attempt count for transient failures.
	MaxRetries int `mapstructure:"max_retries"`
	// RetryBaseDelay is the initial backoff delay.
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	Gemini         GeminiConfig  `mapstructure:"gemini"`
	Codex          CodexConfig   `mapstructure:"codex"`
	Copilot        CopilotConfig `mapstructure:"copilot"`
}

// GeminiConfig holds Gemini CLI settings.
type GeminiConfig struct {
	// WorkDir is the working directory for the gemini subprocess.
	WorkDir string `mapstructure:"workdir"`
	// DefaultModel selects a model when the caller does not.
	DefaultModel string `mapstructure:"default_model"`
}

// CodexConfig holds Codex CLI settings.
type CodexConfig struct {
	// WorkDir is the working directory for the codex subprocess.
	WorkDir string `mapstructure:"workdir"`
}

// CopilotConfig holds Copilot CLI settings.
type CopilotConfig struct {
	// WorkDir is the working directory for the copilot subprocess.
	WorkDir string `mapstructure:"workdir"`
}

// CacheConfig holds result-cache settings.
type CacheConfig struct {
	// Dir is the cache directory. Empty selects the default under
	// the user cache dir.
	Dir string `mapstructure:"dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the logrus level name (debug, info, warn, error).
	Level string `mapstructure:"level"`
}

// DefaultDBPath returns the default SQLite database location.
func DefaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "quorum", "quorum.db")
}

// DefaultCacheDir returns the default result-cache directory.
func DefaultCacheDir() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, _ := os.UserHomeDir()
		cacheDir = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheDir, "quorum")
}

// getUserConfigDir returns the XDG config directory for quorum.
func getUserConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "quorum")
}

// Load loads configuration from the user config file and environment.
// Precedence (highest to lowest):
// 1. Environment variables (QUORUM_*)
// 2. User config (~/.config/quorum/config.yaml)
// 3. Built-in defaults
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

	bindEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	bindEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Providers.MaxRetries < 1 {
		return fmt.Errorf("providers.max_retries must be at least 1, got %d", c.Providers.MaxRetries)
	}
	if c.Handoff.MaxDepth < 0 {
		return fmt.Errorf("handoff.max_depth must not be negative, got %d", c.Handoff.MaxDepth)
	}
	if c.Inbox.MaxMessages < 1 {
		return fmt.Errorf("inbox.max_messages must be at least 1, got %d", c.Inbox.MaxMessages)
	}
	if c.Tasks.DefaultTimeout <= 0 {
		return fmt.Errorf("tasks.default_timeout must be positive, got %s", c.Tasks.DefaultTimeout)
	}
	return nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("store.path", DefaultDBPath())
	v.SetDefault("tasks.default_timeout", 2*time.Minute)
	v.SetDefault("tasks.retention", 24*time.Hour)
	v.SetDefault("tasks.cleanup_schedule", "0 * * * *")
	v.SetDefault("inbox.max_messages", 100)
	v.SetDefault("handoff.max_depth", 3)
	v.SetDefault("handoff.mask_errors", false)
	v.SetDefault("providers.timeout", 2*time.Minute)
	v.SetDefault("providers.max_retries", 3)
	v.SetDefault("providers.retry_base_delay", time.Second)
	v.SetDefault("providers.gemini.workdir", "/tmp")
	v.SetDefault("providers.codex.workdir", "/tmp/codex-workspace")
	v.SetDefault("providers.copilot.workdir", "/tmp")
	v.SetDefault("cache.dir", DefaultCacheDir())
	v.SetDefault("log.level", "info")
}

// bindEnv maps environment variables onto config keys.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("QUORUM")
	v.AutomaticEnv()

	v.BindEnv("store.path", "QUORUM_DB_PATH")
	v.BindEnv("handoff.mask_errors", "QUORUM_MASK_ERRORS")
	v.BindEnv("log.level", "QUORUM_LOG_LEVEL")
	v.BindEnv("providers.gemini.workdir", "GEMINI_CWD")
	v.BindEnv("providers.gemini.default_model", "GEMINI_DEFAULT_MODEL")
	v.BindEnv("providers.codex.workdir", "CODEX_CWD")
}
