// Package config loads and validates the bot configuration.
//
// Values come from three layers, later ones winning: built-in defaults, an
// optional YAML file (with ${VAR} and ${VAR:-default} substitution), and the
// process environment (BOT_TOKEN, PORT, ...).
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Server   ServerConfig   `yaml:"server"`
	Bot      BotConfig      `yaml:"bot"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type TelegramConfig struct {
	Token         string `yaml:"token" env:"BOT_TOKEN"`
	WebhookSecret string `yaml:"webhook_secret" env:"WEBHOOK_SECRET"`
	APIEndpoint   string `yaml:"api_endpoint"` // "%s/%s" template for token and method
	SendRetries   int    `yaml:"send_retries"`
}

type ServerConfig struct {
	Host          string        `yaml:"host" env:"HOST"`
	Port          int           `yaml:"port" env:"PORT"`
	WebhookPath   string        `yaml:"webhook_path"`
	HandleTimeout time.Duration `yaml:"handle_timeout"`
}

type BotConfig struct {
	Language    string `yaml:"language" env:"BOT_LANGUAGE"`
	DefaultCity string `yaml:"default_city" env:"DEFAULT_CITY"`
}

type UpstreamConfig struct {
	GeocodingURL string        `yaml:"geocoding_url"`
	ForecastURL  string        `yaml:"forecast_url"`
	RatesURL     string        `yaml:"rates_url"`
	StockURL     string        `yaml:"stock_url"`
	Timeout      time.Duration `yaml:"timeout"`
	Retries      int           `yaml:"retries"`
	UserAgent    string        `yaml:"user_agent"`
}

type LoggingConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format"`
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads the configuration and validates it.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Read layers defaults, the file at path (skipped when path is empty) and the
// environment without validating the result.
func Read(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		path = expandPath(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
		}

		// Substitute environment variables: ${VAR} and ${VAR:-default}
		data = []byte(ExpandEnvVars(string(data)))

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("cannot read environment: %w", err)
	}

	cfg.Logging.File = expandPath(cfg.Logging.File)
	return cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvVars replaces ${VAR} and ${VAR:-default} references. Unset
// variables without a default are left as written.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		hasDefault := strings.Contains(match, ":-")

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return groups[2]
			}
			return match
		}
		return val
	})
}

// Validate checks that the config has usable values and reports every problem at once.
func Validate(cfg *Config) error {
	var errs []string

	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		errs = append(errs, "telegram.token is required (set BOT_TOKEN)")
	}
	if cfg.Telegram.SendRetries < 0 || cfg.Telegram.SendRetries > 3 {
		errs = append(errs, "telegram.send_retries must be between 0 and 3")
	}
	if cfg.Telegram.APIEndpoint != "" && strings.Count(cfg.Telegram.APIEndpoint, "%s") != 2 {
		errs = append(errs, "telegram.api_endpoint must contain two %s placeholders (token, method)")
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if !strings.HasPrefix(cfg.Server.WebhookPath, "/") || cfg.Server.WebhookPath == "/" {
		errs = append(errs, "server.webhook_path must start with / and not be the root")
	}
	if cfg.Server.HandleTimeout < time.Second {
		errs = append(errs, "server.handle_timeout must be >= 1s")
	}

	switch cfg.Bot.Language {
	case "en", "ru":
		// valid
	default:
		errs = append(errs, "bot.language must be one of: en, ru")
	}
	if strings.TrimSpace(cfg.Bot.DefaultCity) == "" {
		errs = append(errs, "bot.default_city must not be empty")
	}

	for name, raw := range map[string]string{
		"upstream.geocoding_url": cfg.Upstream.GeocodingURL,
		"upstream.forecast_url":  cfg.Upstream.ForecastURL,
		"upstream.rates_url":     cfg.Upstream.RatesURL,
		"upstream.stock_url":     cfg.Upstream.StockURL,
	} {
		if !isHTTPURL(raw) {
			errs = append(errs, fmt.Sprintf("%s must be an absolute http(s) URL", name))
		}
	}
	if cfg.Upstream.Timeout < time.Second {
		errs = append(errs, "upstream.timeout must be >= 1s")
	}
	if cfg.Upstream.Retries < 0 || cfg.Upstream.Retries > 5 {
		errs = append(errs, "upstream.retries must be between 0 and 5")
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, "logging.level must be one of: debug, info, warn, error")
	}
	switch cfg.Logging.Format {
	case "text", "json":
		// valid
	default:
		errs = append(errs, "logging.format must be one of: text, json")
	}

	if len(errs) > 0 {
		slices.Sort(errs)
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
