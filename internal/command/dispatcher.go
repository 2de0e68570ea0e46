// Package command turns the text of an inbound message into a reply.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"infobot/internal/domain"
	"infobot/internal/logging"
	"infobot/internal/metrics"
)

// Sender delivers a reply to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Config wires a Dispatcher.
type Config struct {
	Weather     domain.WeatherProvider
	Rates       domain.RatesProvider
	Stocks      domain.StockProvider
	Sender      Sender
	Language    string
	DefaultCity string
	Logger      *slog.Logger
	Now         func() time.Time
}

// Dispatcher matches commands, calls the matching fetcher and formats the reply.
// It keeps no per-chat state.
type Dispatcher struct {
	weather     domain.WeatherProvider
	rates       domain.RatesProvider
	stocks      domain.StockProvider
	sender      Sender
	catalog     *Catalog
	defaultCity string
	logger      *slog.Logger
	now         func() time.Time
}

// New creates a Dispatcher.
func New(cfg Config) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.DefaultCity == "" {
		cfg.DefaultCity = "Moscow"
	}
	return &Dispatcher{
		weather:     cfg.Weather,
		rates:       cfg.Rates,
		stocks:      cfg.Stocks,
		sender:      cfg.Sender,
		catalog:     CatalogFor(cfg.Language),
		defaultCity: cfg.DefaultCity,
		logger:      cfg.Logger,
		now:         cfg.Now,
	}
}

// Catalog returns the message catalog in use.
func (d *Dispatcher) Catalog() *Catalog { return d.catalog }

// Reply computes the answer to text. ok is false when there is nothing to send.
func (d *Dispatcher) Reply(ctx context.Context, text string) (reply string, ok bool) {
	if text == "" {
		return "", false
	}
	logger := logging.FromContext(ctx, d.logger)

	switch {
	case text == "/start":
		metrics.CommandHandled("start")
		return d.catalog.Start, true

	case text == "/help":
		metrics.CommandHandled("help")
		return d.catalog.Help, true

	case text == "/exchange":
		metrics.CommandHandled("exchange")
		rates, err := d.rates.Rates(ctx)
		if err != nil {
			logger.Error("exchange rates failed", "err", err, "kind", domain.KindOf(err))
			return d.catalog.RatesError(err), true
		}
		return d.catalog.Rates(rates, d.now()), true

	case strings.HasPrefix(text, "/weather"):
		metrics.CommandHandled("weather")
		city := argument(text)
		if city == "" {
			city = d.defaultCity
		}
		w, err := d.weather.Weather(ctx, city)
		if err != nil {
			logger.Error("weather failed", "city", city, "err", err, "kind", domain.KindOf(err))
			return d.catalog.WeatherError(city, err), true
		}
		return d.catalog.Weather(w), true

	case strings.HasPrefix(text, "/stock"):
		metrics.CommandHandled("stock")
		ticker := strings.ToUpper(argument(text))
		if ticker == "" {
			return d.catalog.StockUsage, true
		}
		s, err := d.stocks.Stock(ctx, ticker)
		if err != nil {
			logger.Error("stock quote failed", "ticker", ticker, "err", err, "kind", domain.KindOf(err))
			return d.catalog.StockError(ticker, err), true
		}
		return d.catalog.Stock(s, d.now()), true

	default:
		metrics.CommandHandled("echo")
		return fmt.Sprintf(d.catalog.Echo, text), true
	}
}

// Handle replies to one message. Send failures are logged and returned; the
// caller does not retry them.
func (d *Dispatcher) Handle(ctx context.Context, chatID int64, text string) error {
	logger := logging.FromContext(ctx, d.logger)

	reply, ok := d.Reply(ctx, text)
	if !ok {
		logger.Debug("nothing to reply", "chat_id", chatID)
		return nil
	}
	if err := d.sender.Send(ctx, chatID, reply); err != nil {
		logger.Error("reply not delivered", "chat_id", chatID, "err", err)
		return fmt.Errorf("send reply to %d: %w", chatID, err)
	}
	return nil
}

// argument returns the second space-separated token of text, or "" if absent.
func argument(text string) string {
	parts := strings.Split(text, " ")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
