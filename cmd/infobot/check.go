package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"infobot/internal/config"
	"infobot/internal/provider"
)

func checkCmd() *cobra.Command {
	var ticker string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run diagnostic checks against the configuration and upstream APIs",
		Long: `Verifies that the configuration is valid, the bot token is accepted by
Telegram, the listen port is free and every upstream API answers.
Reports pass/fail for each check and exits non-zero on any failure.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Read(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "infobot check v%s\n", version)
			fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

			r := runChecks(cmd.Context(), out, cfg, ticker)
			fmt.Fprintf(out, "\n%d passed, %d failed\n", r.passed, r.failed)
			if r.failed > 0 {
				return fmt.Errorf("%d check(s) failed", r.failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ticker, "ticker", "SBER", "ticker used to probe the stock API")
	return cmd
}

type checkResult struct {
	out    io.Writer
	passed int
	failed int
}

func (r *checkResult) pass(check, detail string) {
	r.passed++
	fmt.Fprintf(r.out, "  [PASS] %-20s %s\n", check, detail)
}

func (r *checkResult) fail(check, detail string) {
	r.failed++
	fmt.Fprintf(r.out, "  [FAIL] %-20s %s\n", check, detail)
}

func runChecks(ctx context.Context, out io.Writer, cfg *config.Config, ticker string) *checkResult {
	if ctx == nil {
		ctx = context.Background()
	}
	r := &checkResult{out: out}

	// 1. Config validates
	if err := config.Validate(cfg); err != nil {
		r.fail("Config validation", err.Error())
	} else {
		r.pass("Config validation", "valid")
	}

	// 2. Token accepted by Telegram
	if cfg.Telegram.Token == "" {
		r.fail("Telegram token", "not set (BOT_TOKEN)")
	} else if bot, err := newBot(cfg); err != nil {
		r.fail("Telegram token", err.Error())
	} else {
		r.pass("Telegram token", "@"+bot.Self.UserName)
	}

	// 3. Listen port free
	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	if err := checkPort(addr); err != nil {
		r.fail("Listen address", err.Error())
	} else {
		r.pass("Listen address", addr)
	}

	// 4. Upstream APIs
	client := provider.NewClient(provider.ClientConfig{
		Timeout:   cfg.Upstream.Timeout,
		UserAgent: cfg.Upstream.UserAgent,
		Logger:    logger,
	})
	probeCtx, cancel := context.WithTimeout(ctx, 3*cfg.Upstream.Timeout+time.Second)
	defer cancel()

	weather := provider.NewOpenMeteo(client, cfg.Upstream.GeocodingURL, cfg.Upstream.ForecastURL, cfg.Bot.Language)
	if w, err := weather.Weather(probeCtx, cfg.Bot.DefaultCity); err != nil {
		r.fail("Weather API", err.Error())
	} else {
		r.pass("Weather API", fmt.Sprintf("%s %s°C", w.City, strconv.FormatFloat(w.Temperature, 'f', -1, 64)))
	}

	if rates, err := provider.NewCBR(client, cfg.Upstream.RatesURL).Rates(probeCtx); err != nil {
		r.fail("Rates API", err.Error())
	} else {
		r.pass("Rates API", fmt.Sprintf("USD %s, EUR %s", rates.USD.Current(), rates.EUR.Current()))
	}

	if s, err := provider.NewMOEX(client, cfg.Upstream.StockURL).Stock(probeCtx, ticker); err != nil {
		r.fail("Stock API", err.Error())
	} else {
		r.pass("Stock API", fmt.Sprintf("%s %s", s.Ticker, s.Price))
	}

	return r
}

func checkPort(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ln.Close()
}
