package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Weather is the current weather at a geocoded place.
type Weather struct {
	City        string // canonical name from the geocoder
	Latitude    float64
	Longitude   float64
	Temperature float64 // °C
	WindSpeed   float64 // km/h
	Code        int     // WMO weather code
	IsDay       bool
	ObservedAt  time.Time
}

// Rate is one currency entry of the central bank daily feed.
type Rate struct {
	Code     string
	Value    decimal.Decimal
	Previous decimal.Decimal
}

// Current returns the rate rounded to kopecks.
func (r Rate) Current() decimal.Decimal {
	return r.Value.Round(2)
}

// Change returns Value-Previous rounded to kopecks.
func (r Rate) Change() decimal.Decimal {
	return r.Value.Sub(r.Previous).Round(2)
}

// Rates holds the currencies the bot reports.
type Rates struct {
	USD Rate
	EUR Rate
}

// Stock is a quote for one security on the exchange board.
type Stock struct {
	Ticker    string
	Name      string
	Price     decimal.Decimal
	Change    decimal.Decimal
	ChangePct decimal.Decimal
}

// WeatherProvider resolves a city and returns its current weather.
type WeatherProvider interface {
	Weather(ctx context.Context, city string) (*Weather, error)
}

// RatesProvider returns the latest central bank rates.
type RatesProvider interface {
	Rates(ctx context.Context) (*Rates, error)
}

// StockProvider returns a quote for an upper-case ticker.
type StockProvider interface {
	Stock(ctx context.Context, ticker string) (*Stock, error)
}
