package main

import (
	"log/slog"

	"infobot/internal/channel"
	"infobot/internal/command"
	"infobot/internal/config"
	"infobot/internal/provider"
)

// app holds the wired components of a running bot.
type app struct {
	weather    *provider.OpenMeteo
	rates      *provider.CBR
	stocks     *provider.MOEX
	dispatcher *command.Dispatcher
	webhook    *channel.Webhook
}

func newApp(cfg *config.Config, bot channel.BotAPI, logger *slog.Logger) *app {
	client := provider.NewClient(provider.ClientConfig{
		Timeout:   cfg.Upstream.Timeout,
		Retries:   cfg.Upstream.Retries,
		UserAgent: cfg.Upstream.UserAgent,
		Logger:    logger,
	})

	a := &app{
		weather: provider.NewOpenMeteo(client, cfg.Upstream.GeocodingURL, cfg.Upstream.ForecastURL, cfg.Bot.Language),
		rates:   provider.NewCBR(client, cfg.Upstream.RatesURL),
		stocks:  provider.NewMOEX(client, cfg.Upstream.StockURL),
	}

	sender := channel.NewTelegram(channel.TelegramConfig{
		Bot:     bot,
		Retries: cfg.Telegram.SendRetries,
		Logger:  logger,
	})

	a.dispatcher = command.New(command.Config{
		Weather:     a.weather,
		Rates:       a.rates,
		Stocks:      a.stocks,
		Sender:      sender,
		Language:    cfg.Bot.Language,
		DefaultCity: cfg.Bot.DefaultCity,
		Logger:      logger,
	})

	a.webhook = channel.NewWebhook(channel.WebhookConfig{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		Path:          cfg.Server.WebhookPath,
		Secret:        cfg.Telegram.WebhookSecret,
		HandleTimeout: cfg.Server.HandleTimeout,
		Health:        a.dispatcher.Catalog().Health,
		Metrics:       cfg.Metrics.Enabled,
		Logger:        logger,
	}, a.dispatcher)

	return a
}
