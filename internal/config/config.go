package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// DefaultBaseURL is the OpenRouter chat-completions endpoint root.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Config represents the complete superchat configuration
type Config struct {
	Chat    ChatConfig    `mapstructure:"chat"`
	API     APIConfig     `mapstructure:"api"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	TUI     TUIConfig     `mapstructure:"tui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ChatConfig controls the conversation flow
type ChatConfig struct {
	// Rounds is how many times each active agent answers one user turn in a debate (1-5, default: 1)
	Rounds int `mapstructure:"rounds"`
	// MaxSlots is the number of participant slots available during setup (default: 5)
	MaxSlots int `mapstructure:"max_slots"`
	// Flow selects how /start proceeds with several models (default: "staged")
	// Options: "staged" (1:1 with each model, then debate), "direct" (debate immediately)
	Flow string `mapstructure:"flow"`
	// Preamble replaces the built-in role preamble when non-empty
	Preamble string `mapstructure:"preamble"`
}

// APIConfig controls the remote model endpoint
type APIConfig struct {
	// BaseURL is the OpenAI-compatible endpoint root (default: OpenRouter)
	BaseURL string `mapstructure:"base_url"`
	// TimeoutSeconds bounds a single model call; a timeout skips that agent for the round (default: 120)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// MaxRetries is how many times the HTTP client retries transient failures (default: 2)
	MaxRetries int `mapstructure:"max_retries"`
	// MaxTokens caps each completion, 0 leaves it to the provider (default: 0)
	MaxTokens int `mapstructure:"max_tokens"`
	// Referer and Title identify the application to OpenRouter
	Referer string `mapstructure:"referer"`
	Title   string `mapstructure:"title"`
}

// CatalogConfig controls where the model catalog comes from
type CatalogConfig struct {
	// Path to a models.yaml file; empty uses the catalog built into the binary
	Path string `mapstructure:"path"`
}

// TUIConfig controls the terminal UI behavior
type TUIConfig struct {
	// Plain forces line-mode output even on a terminal (default: false)
	Plain bool `mapstructure:"plain"`
	// WrapWidth is the maximum width of rendered replies, 0 follows the terminal (default: 0)
	WrapWidth int `mapstructure:"wrap_width"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is written to disk (default: false)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Chat: ChatConfig{
			Rounds:   1,
			MaxSlots: 5,
			Flow:     FlowStaged,
		},
		API: APIConfig{
			BaseURL:        DefaultBaseURL,
			TimeoutSeconds: 120,
			MaxRetries:     2,
			MaxTokens:      0,
			Referer:        "https://github.com/Iron-Ham/superchat",
			Title:          "superchat",
		},
		Catalog: CatalogConfig{
			Path: "", // Empty means the embedded catalog
		},
		TUI: TUIConfig{
			Plain:     false,
			WrapWidth: 0,
		},
		Logging: LoggingConfig{
			Enabled:    false,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Timeout returns the per-call timeout as a time.Duration
func (c *APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Staged reports whether /start should walk each model privately before the debate.
func (c *ChatConfig) Staged() bool {
	return c.Flow != FlowDirect
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Chat defaults
	viper.SetDefault("chat.rounds", defaults.Chat.Rounds)
	viper.SetDefault("chat.max_slots", defaults.Chat.MaxSlots)
	viper.SetDefault("chat.flow", defaults.Chat.Flow)
	viper.SetDefault("chat.preamble", defaults.Chat.Preamble)

	// API defaults
	viper.SetDefault("api.base_url", defaults.API.BaseURL)
	viper.SetDefault("api.timeout_seconds", defaults.API.TimeoutSeconds)
	viper.SetDefault("api.max_retries", defaults.API.MaxRetries)
	viper.SetDefault("api.max_tokens", defaults.API.MaxTokens)
	viper.SetDefault("api.referer", defaults.API.Referer)
	viper.SetDefault("api.title", defaults.API.Title)

	// Catalog defaults
	viper.SetDefault("catalog.path", defaults.Catalog.Path)

	// TUI defaults
	viper.SetDefault("tui.plain", defaults.TUI.Plain)
	viper.SetDefault("tui.wrap_width", defaults.TUI.WrapWidth)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "superchat")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".superchat"
	}
	return filepath.Join(home, ".config", "superchat")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StateDir returns ~/.superchat, which holds the legacy key file and debug logs.
func StateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".superchat"
	}
	return filepath.Join(home, ".superchat")
}
