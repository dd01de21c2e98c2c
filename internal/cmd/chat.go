package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/Iron-Ham/superchat/internal/catalog"
	"github.com/Iron-Ham/superchat/internal/config"
	"github.com/Iron-Ham/superchat/internal/debate"
	"github.com/Iron-Ham/superchat/internal/dispatch"
	"github.com/Iron-Ham/superchat/internal/event"
	"github.com/Iron-Ham/superchat/internal/logging"
	"github.com/Iron-Ham/superchat/internal/session"
	"github.com/Iron-Ham/superchat/internal/tui"
)

var (
	chatModels []string
	chatDebug  bool
)

func registerChatFlags(c *cobra.Command) {
	c.Flags().StringSliceVarP(&chatModels, "model", "m", nil, "Assign models to slots 1..n (repeatable, comma or space separated)")
	c.Flags().IntP("rounds", "r", config.Default().Chat.Rounds, "Times each agent answers per message (1-5)")
	c.Flags().StringP("flow", "f", config.FlowStaged, "How /start proceeds: staged or direct")
	c.Flags().Bool("plain", false, "Use line-mode output even on a terminal")
	c.Flags().BoolVarP(&chatDebug, "debug", "d", false, "Write a debug log to ~/.superchat/debug.log")

	_ = viper.BindPFlag("chat.rounds", c.Flags().Lookup("rounds"))
	_ = viper.BindPFlag("chat.flow", c.Flags().Lookup("flow"))
	_ = viper.BindPFlag("tui.plain", c.Flags().Lookup("plain"))
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if chatDebug {
		cfg.Logging.Enabled = true
		cfg.Logging.Level = "debug"
	}

	key, err := config.LoadAPIKey()
	if err != nil {
		return err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()
	if key.Path != "" {
		logger.Debug("api key loaded", "path", key.Path)
	}

	client, err := dispatch.NewOpenRouterClient(dispatch.OpenRouterConfig{
		APIKey:     key.Key,
		BaseURL:    cfg.API.BaseURL,
		MaxRetries: cfg.API.MaxRetries,
		Referer:    cfg.API.Referer,
		Title:      cfg.API.Title,
	})
	if err != nil {
		return err
	}

	bus := event.NewBus()
	bus.SetLogger(logger)

	ctrl := debate.NewController(debate.Config{
		Catalog: cat,
		Session: session.Options{
			MaxSlots: cfg.Chat.MaxSlots,
			Rounds:   cfg.Chat.Rounds,
			Staged:   cfg.Chat.Staged(),
		},
		Preamble: cfg.Chat.Preamble,
		Dispatcher: dispatch.NewDispatcher(client,
			dispatch.WithTimeout(cfg.API.Timeout()),
			dispatch.WithMaxTokens(cfg.API.MaxTokens),
			dispatch.WithLogger(logger),
		),
		Bus:    bus,
		Logger: logger,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	for _, q := range modelQueries(chatModels) {
		if err := ctrl.Handle(ctx, "/model "+q); err != nil {
			return fmt.Errorf("--model %s: %w", q, err)
		}
	}

	if cfg.TUI.Plain || !isInteractive() {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		return tui.NewPlain(ctrl, os.Stdin, os.Stdout, wrapWidth(cfg)).Run(ctx)
	}
	return tui.New(ctx, ctrl, os.Stdout, cfg.TUI.WrapWidth).Run()
}

// modelQueries splits --model values on commas and whitespace.
func modelQueries(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})...)
	}
	return out
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Path != "" {
		return catalog.Load(cfg.Catalog.Path)
	}
	return catalog.Default()
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	logger, err := logging.NewLogger(config.StateDir(), cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	return logger, nil
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// wrapWidth picks the plain renderer's wrap column.
func wrapWidth(cfg *config.Config) int {
	if cfg.TUI.WrapWidth > 0 {
		return cfg.TUI.WrapWidth
	}
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 0
}
