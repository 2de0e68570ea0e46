package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"infobot/internal/domain"
)

const clockLayout = "15:04:05"

// Weather renders current weather. The timestamp is the observation time at the place.
func (c *Catalog) Weather(w *domain.Weather) string {
	desc, ok := c.WeatherCodes[w.Code]
	if !ok {
		desc = c.UnknownWeather
	}
	dayNight := c.Night
	if w.IsDay {
		dayNight = c.Day
	}

	lines := []string{
		c.WeatherTitle,
		separator,
		"🏙️ " + w.City,
		"📅 " + c.FormatDateLine(w.ObservedAt),
		separator,
		fmt.Sprintf(c.Temperature, formatFloat(w.Temperature)),
		fmt.Sprintf(c.Wind, formatFloat(w.WindSpeed)),
		"📝 " + desc,
		dayNight,
		separator,
		fmt.Sprintf(c.DataAt, w.ObservedAt.Format(clockLayout)),
	}
	return strings.Join(lines, "\n")
}

// Rates renders the USD and EUR lines stamped with now.
func (c *Catalog) Rates(r *domain.Rates, now time.Time) string {
	lines := []string{
		c.RatesTitle,
		separator,
		rateLine("🇺🇸", r.USD),
		rateLine("🇪🇺", r.EUR),
		separator,
		fmt.Sprintf(c.DataAt, now.Format(clockLayout)),
	}
	return strings.Join(lines, "\n")
}

func rateLine(flag string, r domain.Rate) string {
	change := r.Change()
	return fmt.Sprintf("%s %s: %s ₽ %s %s",
		flag, r.Code, domain.Short(r.Current()), domain.DirectionOf(change).Glyph(), domain.Signed(change, -1))
}

// Stock renders a share quote stamped with now.
func (c *Catalog) Stock(s *domain.Stock, now time.Time) string {
	lines := []string{
		c.StockTitle,
		separator,
		fmt.Sprintf("🏢 %s (%s)", s.Name, s.Ticker),
		fmt.Sprintf(c.Price, s.Price.String()),
		fmt.Sprintf(c.Change,
			domain.DirectionOf(s.Change).Glyph(),
			domain.Signed(s.Change, 2),
			domain.Signed(s.ChangePct, 2)),
		separator,
		fmt.Sprintf(c.DataAt, now.Format(clockLayout)),
	}
	return strings.Join(lines, "\n")
}

// WeatherError maps a weather fetch failure to a reply. city is the text the user typed.
func (c *Catalog) WeatherError(city string, err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Sprintf(c.CityNotFound, city)
	case errors.Is(err, domain.ErrNoData):
		return c.WeatherNoData
	default:
		return c.WeatherFailed
	}
}

// RatesError maps a rates fetch failure to a reply.
func (c *Catalog) RatesError(err error) string {
	if errors.Is(err, domain.ErrNoData) {
		return c.RatesNoData
	}
	return c.RatesFailed
}

// StockError maps a stock fetch failure to a reply.
func (c *Catalog) StockError(ticker string, err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Sprintf(c.StockNotFound, ticker)
	case errors.Is(err, domain.ErrNoMarketData):
		return fmt.Sprintf(c.StockNoMarket, ticker)
	case errors.Is(err, domain.ErrNoPrice):
		return fmt.Sprintf(c.StockNoPrice, ticker)
	default:
		return fmt.Sprintf(c.StockFailed, ticker)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
