package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"infobot/internal/logging"
	"infobot/internal/metrics"
)

const (
	telegramMaxMsgLen = 4000
	telegramMaxRetry  = 3
)

// BotAPI is the part of *tgbotapi.BotAPI the sender needs.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// NewBotAPI connects to the Bot API at endpoint (a "%s/%s" token/method
// template; empty means api.telegram.org). It calls getMe, so a bad token
// fails here.
func NewBotAPI(token, endpoint string, client *http.Client) (*tgbotapi.BotAPI, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram getMe: %w", err)
	}
	return bot, nil
}

// TelegramConfig configures the sender.
type TelegramConfig struct {
	Bot     BotAPI
	Retries int // extra attempts per chunk; 0 sends once
	Logger  *slog.Logger
}

// Telegram delivers plain-text replies through sendMessage.
type Telegram struct {
	bot     BotAPI
	retries int
	logger  *slog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewTelegram creates a sender.
func NewTelegram(cfg TelegramConfig) *Telegram {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Retries > telegramMaxRetry {
		cfg.Retries = telegramMaxRetry
	}
	return &Telegram{
		bot:     cfg.Bot,
		retries: cfg.Retries,
		logger:  cfg.Logger,
		sleep:   sleepCtx,
	}
}

// Send posts text to chatID, splitting it when it exceeds the message limit.
func (t *Telegram) Send(ctx context.Context, chatID int64, text string) error {
	logger := logging.FromContext(ctx, t.logger)
	for _, chunk := range splitMessage(text, telegramMaxMsgLen) {
		if err := t.sendChunk(ctx, chatID, chunk); err != nil {
			metrics.SendErrors.Inc()
			logger.Error("telegram send failed", "chat_id", chatID, "err", err)
			return err
		}
	}
	metrics.RepliesSent.Inc()
	logger.Info("reply sent", "chat_id", chatID, "length", len(text))
	return nil
}

func (t *Telegram) sendChunk(ctx context.Context, chatID int64, text string) error {
	logger := logging.FromContext(ctx, t.logger)
	var err error
	for attempt := 0; attempt <= t.retries; attempt++ {
		if attempt > 0 {
			backoff := retryDelay(err, attempt)
			logger.Warn("telegram send error, retrying", "err", err, "backoff", backoff, "attempt", attempt)
			if serr := t.sleep(ctx, backoff); serr != nil {
				return serr
			}
		}
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err = t.bot.Send(msg); err == nil {
			return nil
		}
	}
	return err
}

// retryDelay honours Telegram's retry_after on 429, else backs off linearly.
func retryDelay(err error, attempt int) time.Duration {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return time.Duration(apiErr.RetryAfter) * time.Second
	}
	return time.Duration(attempt) * time.Second
}

// splitMessage cuts text into chunks of at most maxLen bytes, preferring a
// newline in the second half of the window and never splitting a rune.
func splitMessage(text string, maxLen int) []string {
	var chunks []string
	for len(text) > maxLen {
		cutAt := strings.LastIndex(text[:maxLen], "\n")
		if cutAt < maxLen/2 {
			cutAt = maxLen
			for cutAt > 0 && !utf8.RuneStart(text[cutAt]) {
				cutAt--
			}
		}
		chunks = append(chunks, text[:cutAt])
		text = text[cutAt:]
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
