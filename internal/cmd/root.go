package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/superchat/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "superchat",
	Short: "Chat with several LLMs at once and let them debate",
	Long: `Superchat puts up to five OpenRouter models in one terminal conversation.

Assign models to slots with /model, then /start. With the staged flow
each model first answers your prompt privately; /promote shares that
exchange with the group. Once every model is promoted or booted, they
debate: each one answers every message in slot order.`,
	Args:          cobra.NoArgs,
	RunE:          runChat,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default is $XDG_CONFIG_HOME/superchat/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	registerChatFlags(rootCmd)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SUPERCHAT")
	// Replace dots with underscores for nested keys in env vars
	// e.g., SUPERCHAT_CHAT_ROUNDS for chat.rounds
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
