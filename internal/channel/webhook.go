package channel

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"infobot/internal/logging"
	"infobot/internal/metrics"
)

const (
	maxBodyBytes      = 1 << 20
	secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"
)

// Handler replies to one inbound message.
type Handler interface {
	Handle(ctx context.Context, chatID int64, text string) error
}

// WebhookConfig configures the inbound HTTP server.
type WebhookConfig struct {
	Host          string
	Port          int
	Path          string        // webhook URL path (default: /webhook)
	Secret        string        // expected X-Telegram-Bot-Api-Secret-Token; empty disables the check
	HandleTimeout time.Duration // upper bound for handling one update
	Health        string        // body of GET /
	Metrics       bool          // expose GET /metrics
	Logger        *slog.Logger
}

// Webhook receives Telegram updates over HTTP and hands messages to a Handler.
type Webhook struct {
	addr          string
	path          string
	secret        string
	handleTimeout time.Duration
	health        string
	metrics       bool
	handler       Handler
	logger        *slog.Logger
	server        *http.Server
}

// NewWebhook creates the webhook server.
func NewWebhook(cfg WebhookConfig, handler Handler) *Webhook {
	if cfg.Path == "" {
		cfg.Path = "/webhook"
	}
	if cfg.Port == 0 {
		cfg.Port = 10000
	}
	if cfg.HandleTimeout <= 0 {
		cfg.HandleTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Webhook{
		addr:          net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		path:          cfg.Path,
		secret:        cfg.Secret,
		handleTimeout: cfg.HandleTimeout,
		health:        cfg.Health,
		metrics:       cfg.Metrics,
		handler:       handler,
		logger:        cfg.Logger,
	}
}

// Addr returns the listen address.
func (w *Webhook) Addr() string { return w.addr }

// Routes returns the HTTP handler with all endpoints registered.
func (w *Webhook) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(w.path, w.handleWebhook)
	mux.HandleFunc("GET /{$}", w.handleHealth)
	if w.metrics {
		mux.HandleFunc("GET /metrics", metrics.Collector.Handler())
	}
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (w *Webhook) Start(ctx context.Context) error {
	w.server = &http.Server{
		Addr:              w.addr,
		Handler:           w.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      w.handleTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	w.logger.Info("webhook server starting", "addr", w.addr, "path", w.path)

	errCh := make(chan error, 1)
	go func() {
		if err := w.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		w.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return w.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("webhook server: %w", err)
	}
}

func (w *Webhook) handleHealth(rw http.ResponseWriter, _ *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(rw, w.health)
}

// handleWebhook always answers 200 once the caller is authorized, so Telegram
// never redelivers an update.
func (w *Webhook) handleWebhook(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if w.secret != "" {
		got := r.Header.Get(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(w.secret)) != 1 {
			w.logger.Warn("webhook rejected: bad secret token", "remote", r.RemoteAddr)
			http.Error(rw, "Forbidden", http.StatusForbidden)
			return
		}
	}

	metrics.UpdatesTotal.Inc()
	logger := w.logger.With("request_id", uuid.NewString())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	defer r.Body.Close()
	if err != nil {
		logger.Error("read webhook body", "err", err)
		writeStatus(rw, "error")
		return
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		logger.Error("decode update", "err", err, "body_len", len(body))
		writeStatus(rw, "error")
		return
	}
	logger = logger.With("update_id", update.UpdateID)

	msg := update.Message
	if msg == nil {
		logger.Debug("update without message ignored")
		writeStatus(rw, "ok")
		return
	}
	if msg.Chat == nil {
		logger.Error("message without chat")
		writeStatus(rw, "error")
		return
	}

	logger.Info("webhook received", "chat_id", msg.Chat.ID, "text_len", len(msg.Text))

	if err := w.dispatch(r.Context(), logger, msg.Chat.ID, msg.Text); err != nil {
		writeStatus(rw, "error")
		return
	}
	writeStatus(rw, "ok")
}

// dispatch runs the handler detached from the client's cancellation and bounded
// by the handle timeout. A panic is reported as an error. Send failures are
// already logged by the handler and do not change the reply status.
func (w *Webhook) dispatch(parent context.Context, logger *slog.Logger, chatID int64, text string) (err error) {
	metrics.InFlight.Inc()
	defer metrics.InFlight.Dec()

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic while handling update", "panic", rec)
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), w.handleTimeout)
	defer cancel()
	ctx = logging.WithLogger(ctx, logger)

	if err := w.handler.Handle(ctx, chatID, text); err != nil {
		logger.Debug("update handled with error", "chat_id", chatID, "err", err)
	}
	return nil
}

func writeStatus(rw http.ResponseWriter, status string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(http.StatusOK)
	json.NewEncoder(rw).Encode(map[string]string{"status": status})
}
