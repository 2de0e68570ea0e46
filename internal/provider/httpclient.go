package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"infobot/internal/domain"
	"infobot/internal/metrics"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "infobot/1.0"
	maxRetries       = 5
)

// ClientConfig configures the HTTP client shared by all upstream providers.
type ClientConfig struct {
	Timeout   time.Duration
	Retries   int // extra attempts on transport errors, 5xx and 429; 0 disables retry
	UserAgent string
	Logger    *slog.Logger
}

// NewClient returns a resty client with connection pooling, a hard timeout and
// optional exponential backoff.
func NewClient(cfg ClientConfig) *resty.Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Retries > maxRetries {
		cfg.Retries = maxRetries
	}

	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	client := resty.NewWithClient(&http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	})
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetHeader("Accept", "application/json")

	if cfg.Retries > 0 {
		logger := cfg.Logger
		if logger == nil {
			logger = slog.Default()
		}
		client.SetRetryCount(cfg.Retries).
			SetRetryWaitTime(500 * time.Millisecond).
			SetRetryMaxWaitTime(4 * time.Second).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				if err != nil {
					return true
				}
				return r.StatusCode() >= 500 || r.StatusCode() == http.StatusTooManyRequests
			}).
			AddRetryHook(func(r *resty.Response, err error) {
				if r == nil || r.Request == nil {
					logger.Warn("retrying upstream request", "err", err)
					return
				}
				logger.Warn("retrying upstream request",
					"url", r.Request.URL,
					"attempt", r.Request.Attempt,
					"status", r.StatusCode(),
					"err", err,
				)
			})
	}

	return client
}

// get performs a GET and returns the raw body, classifying failures as
// domain.UpstreamError. Latency and errors are recorded per source.
func get(ctx context.Context, client *resty.Client, source, url string, query map[string]string) ([]byte, error) {
	start := time.Now()
	req := client.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(url)
	metrics.ObserveUpstream(source, time.Since(start))
	if err != nil {
		return nil, upstreamErr(source, domain.KindTransport, 0, err)
	}
	if resp.IsError() {
		body := resp.Body()
		if len(body) > 200 {
			body = body[:200]
		}
		return nil, upstreamErr(source, domain.KindStatus, resp.StatusCode(), errors.New(string(body)))
	}
	return resp.Body(), nil
}

func upstreamErr(source string, kind domain.ErrorKind, status int, err error) error {
	metrics.UpstreamError(source, string(kind))
	return &domain.UpstreamError{Source: source, Kind: kind, Status: status, Err: err}
}

func decodeErr(source string, err error) error {
	return upstreamErr(source, domain.KindDecode, 0, fmt.Errorf("decode response: %w", err))
}
