package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/superchat/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify superchat configuration",
	Long: `View or modify superchat configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  superchat config set chat.rounds 2
  superchat config set chat.flow direct

Valid keys:
  chat.rounds          - Times each agent answers per message (1-5)
  chat.max_slots       - Number of model slots (1-10)
  chat.flow            - staged or direct
  api.timeout_seconds  - Per-call timeout
  api.max_retries      - HTTP retries for transient failures
  api.max_tokens       - Completion cap, 0 for the provider default
  catalog.path         - models.yaml replacing the built-in catalog
  tui.plain            - Always use line mode (true/false)
  tui.wrap_width       - Reply wrap column, 0 follows the terminal
  logging.enabled      - Write ~/.superchat/debug.log (true/false)
  logging.level        - debug, info, warn or error`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at $XDG_CONFIG_HOME/superchat/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Save the OpenRouter API key",
	Long: `Save the OpenRouter API key to ~/.superchat/config (mode 0600).

Without an argument the key is read from standard input; on a terminal
it is prompted for without echo.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigSetKey,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetKeyCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg := config.Get()

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n")
	}
	if key, err := config.LoadAPIKey(); err == nil {
		where := key.Path
		if where == "" {
			where = "environment"
		}
		fmt.Fprintf(out, "API key:     %s (from %s)\n", maskKey(key.Key), where)
	} else {
		fmt.Fprintf(out, "API key:     (not set)\n")
	}
	fmt.Fprintln(out)

	data, err := yaml.Marshal(settingsOf(cfg))
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// settingsOf mirrors the config file layout.
func settingsOf(cfg *config.Config) map[string]any {
	return map[string]any{
		"chat": map[string]any{
			"rounds":    cfg.Chat.Rounds,
			"max_slots": cfg.Chat.MaxSlots,
			"flow":      cfg.Chat.Flow,
			"preamble":  cfg.Chat.Preamble,
		},
		"api": map[string]any{
			"base_url":        cfg.API.BaseURL,
			"timeout_seconds": cfg.API.TimeoutSeconds,
			"max_retries":     cfg.API.MaxRetries,
			"max_tokens":      cfg.API.MaxTokens,
			"referer":         cfg.API.Referer,
			"title":           cfg.API.Title,
		},
		"catalog": map[string]any{
			"path": cfg.Catalog.Path,
		},
		"tui": map[string]any{
			"plain":      cfg.TUI.Plain,
			"wrap_width": cfg.TUI.WrapWidth,
		},
		"logging": map[string]any{
			"enabled":     cfg.Logging.Enabled,
			"level":       cfg.Logging.Level,
			"max_size_mb": cfg.Logging.MaxSizeMB,
			"max_backups": cfg.Logging.MaxBackups,
		},
	}
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "…" + key[len(key)-4:]
}

// settableKeys maps config set keys to their value type.
var settableKeys = map[string]string{
	"chat.rounds":         "int",
	"chat.max_slots":      "int",
	"chat.flow":           "string",
	"api.timeout_seconds": "int",
	"api.max_retries":     "int",
	"api.max_tokens":      "int",
	"catalog.path":        "string",
	"tui.plain":           "bool",
	"tui.wrap_width":      "int",
	"logging.enabled":     "bool",
	"logging.level":       "string",
}

func parseSetting(key, value string) (any, error) {
	keyType, ok := settableKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'superchat config set --help' to see valid keys", key)
	}

	switch keyType {
	case "bool":
		if value != "true" && value != "false" {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return value == "true", nil
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return nil, fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		return intVal, nil
	default:
		return value, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	typedValue, err := parseSetting(key, value)
	if err != nil {
		return err
	}

	// Validate the whole config with the new value before writing it
	viper.Set(key, typedValue)
	if _, err := config.Load(); err != nil {
		return err
	}

	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", configFile)
	return nil
}

// defaultConfigContent is written by config init.
const defaultConfigContent = `# superchat configuration
# Every key can also be set with an environment variable, e.g. SUPERCHAT_CHAT_ROUNDS=2

chat:
  # Times each active agent answers one message in the group chat (1-5)
  rounds: 1
  # Number of model slots available during setup (1-10)
  max_slots: 5
  # staged: talk to each model privately before the group chat
  # direct: go straight to the group chat
  flow: staged
  # Replaces the built-in role instructions when set
  preamble: ""

api:
  base_url: https://openrouter.ai/api/v1
  # A call that takes longer is skipped for the round
  timeout_seconds: 120
  max_retries: 2
  # 0 leaves the completion length to the provider
  max_tokens: 0

catalog:
  # models.yaml replacing the built-in catalog
  path: ""

tui:
  # Always use line-mode output
  plain: false
  # Reply wrap column, 0 follows the terminal
  wrap_width: 0

logging:
  # Write ~/.superchat/debug.log (same as --debug)
  enabled: false
  level: info
  max_size_mb: 10
  max_backups: 3
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'superchat config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	fmt.Fprintln(cmd.OutOrStdout(), "Edit this file to customize superchat's behavior.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. ./config.yaml (current directory)\n")
	fmt.Fprintln(out, "\nEnvironment variables: SUPERCHAT_* (e.g., SUPERCHAT_CHAT_ROUNDS)")

	fmt.Fprintln(out, "\nAPI key files, in order:")
	for i, path := range config.KeyFiles() {
		fmt.Fprintf(out, "  %d. %s\n", i+1, path)
	}
	return nil
}

func runConfigSetKey(cmd *cobra.Command, args []string) error {
	var key string
	switch {
	case len(args) == 1:
		key = args[0]
	case term.IsTerminal(int(os.Stdin.Fd())):
		fmt.Fprint(cmd.OutOrStdout(), "OpenRouter API key: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
		key = string(raw)
	default:
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read key: %w", err)
		}
		key = line
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key must not be empty")
	}

	path, err := config.SaveAPIKey(key)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved API key to %s\n", path)
	return nil
}
