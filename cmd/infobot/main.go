package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"infobot/internal/channel"
	"infobot/internal/config"
	"infobot/internal/logging"
)

var (
	version    = "1.0.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "infobot",
		Short: "Telegram bot for weather, exchange rates and MOEX quotes",
		Long: `infobot answers Telegram webhook updates with the current weather
(Open-Meteo), Bank of Russia exchange rates and MOEX share prices.
Without a subcommand it runs the webhook server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default: defaults + environment)")

	root.AddCommand(serveCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(configCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	l, closer := logging.New(logging.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer closer.Close()
	logger = l
	slog.SetDefault(logger)

	bot, err := newBot(cfg)
	if err != nil {
		return err
	}
	logger.Info("telegram bot authorized", "username", bot.Self.UserName)

	a := newApp(cfg, bot, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.webhook.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			logger.Info("shutdown signal received")
		}
		return nil
	})

	logger.Info("infobot started",
		"version", version,
		"addr", a.webhook.Addr(),
		"webhook_path", cfg.Server.WebhookPath,
		"language", cfg.Bot.Language,
		"default_city", cfg.Bot.DefaultCity,
	)

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("infobot stopped")
	return nil
}

func newBot(cfg *config.Config) (*tgbotapi.BotAPI, error) {
	return channel.NewBotAPI(cfg.Telegram.Token, cfg.Telegram.APIEndpoint, nil)
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Read(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			data, err := yaml.Marshal(config.Sanitize(cfg))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [path]",
		Short: "Get a config value (e.g. server.port)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Read(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			val, err := config.GetByPath(config.Sanitize(cfg), args[0])
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(val, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "paths",
		Short: "List all config keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPaths(config.Defaults()) {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	})

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "infobot v%s (%s/%s, Go %s)\n", version, runtime.GOOS, runtime.GOARCH, runtime.Version())
		},
	}
}
