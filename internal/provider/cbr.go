package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"infobot/internal/domain"
)

const (
	DefaultRatesURL = "https://www.cbr-xml-daily.ru/daily_json.js"

	sourceRates = "rates"
)

// CBR reads the central bank daily rates feed. The feed is served with a
// JavaScript content type, so the body is decoded directly.
type CBR struct {
	client *resty.Client
	url    string
}

// NewCBR creates a rates provider. An empty URL falls back to the public feed.
func NewCBR(client *resty.Client, url string) *CBR {
	if url == "" {
		url = DefaultRatesURL
	}
	return &CBR{client: client, url: url}
}

type dailyResponse struct {
	Valute json.RawMessage `json:"Valute"`
}

type dailyRate struct {
	Code     string           `json:"CharCode"`
	Value    *decimal.Decimal `json:"Value"`
	Previous *decimal.Decimal `json:"Previous"`
}

// Rates implements domain.RatesProvider.
func (c *CBR) Rates(ctx context.Context) (*domain.Rates, error) {
	body, err := get(ctx, c.client, sourceRates, c.url, nil)
	if err != nil {
		return nil, err
	}

	var daily dailyResponse
	if err := json.Unmarshal(body, &daily); err != nil {
		return nil, decodeErr(sourceRates, err)
	}
	if daily.Valute == nil {
		return nil, domain.ErrNoData
	}
	var valute map[string]dailyRate
	if err := json.Unmarshal(daily.Valute, &valute); err != nil {
		return nil, decodeErr(sourceRates, err)
	}

	usd, err := pickRate(valute, "USD")
	if err != nil {
		return nil, err
	}
	eur, err := pickRate(valute, "EUR")
	if err != nil {
		return nil, err
	}
	return &domain.Rates{USD: usd, EUR: eur}, nil
}

func pickRate(valute map[string]dailyRate, code string) (domain.Rate, error) {
	r, ok := valute[code]
	if !ok {
		return domain.Rate{}, decodeErr(sourceRates, fmt.Errorf("%s missing from feed", code))
	}
	if r.Value == nil || r.Previous == nil {
		return domain.Rate{}, decodeErr(sourceRates, fmt.Errorf("%s entry lacks Value or Previous", code))
	}
	if r.Code == "" {
		r.Code = code
	}
	return domain.Rate{Code: r.Code, Value: *r.Value, Previous: *r.Previous}, nil
}
