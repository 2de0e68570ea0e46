package config

import "time"

func Defaults() *Config {
	return &Config{
		Telegram: TelegramConfig{
			APIEndpoint: "https://api.telegram.org/bot%s/%s",
		},
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          10000,
			WebhookPath:   "/webhook",
			HandleTimeout: 30 * time.Second,
		},
		Bot: BotConfig{
			Language:    "en",
			DefaultCity: "Moscow",
		},
		Upstream: UpstreamConfig{
			GeocodingURL: "https://geocoding-api.open-meteo.com/v1/search",
			ForecastURL:  "https://api.open-meteo.com/v1/forecast",
			RatesURL:     "https://www.cbr-xml-daily.ru/daily_json.js",
			StockURL:     "https://iss.moex.com/iss/engines/stock/markets/shares/boards/TQBR/securities",
			Timeout:      10 * time.Second,
			UserAgent:    "infobot/1.0",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
