package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"infobot/internal/domain"
)

const (
	DefaultStockURL = "https://iss.moex.com/iss/engines/stock/markets/shares/boards/TQBR/securities"

	sourceStock = "stock"
)

// Positional fallbacks for ISS tables when the columns header is absent.
const (
	colShortName  = 2
	colLast       = 12
	colLastChange = 13
	colChangePct  = 14
)

// MOEX reads a single security from the ISS board endpoint.
type MOEX struct {
	client  *resty.Client
	baseURL string
}

// NewMOEX creates a stock provider. An empty URL falls back to the TQBR board.
func NewMOEX(client *resty.Client, baseURL string) *MOEX {
	if baseURL == "" {
		baseURL = DefaultStockURL
	}
	return &MOEX{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Stock implements domain.StockProvider. The ticker is upper-cased before the request.
func (m *MOEX) Stock(ctx context.Context, ticker string) (*domain.Stock, error) {
	ticker = strings.ToUpper(ticker)
	endpoint := m.baseURL + "/" + url.PathEscape(ticker) + ".json"

	body, err := get(ctx, m.client, sourceStock, endpoint, map[string]string{"iss.meta": "off"})
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, decodeErr(sourceStock, fmt.Errorf("invalid JSON for %s", ticker))
	}
	doc := gjson.ParseBytes(body)

	sec := doc.Get("securities.data.0")
	if !sec.IsArray() {
		return nil, fmt.Errorf("security %s: %w", ticker, domain.ErrNotFound)
	}
	md := doc.Get("marketdata.data.0")
	if !md.IsArray() {
		return nil, fmt.Errorf("security %s: %w", ticker, domain.ErrNoMarketData)
	}

	secCols := doc.Get("securities.columns")
	mdCols := doc.Get("marketdata.columns")

	price, ok := decimalAt(md, column(mdCols, "LAST", colLast))
	if !ok || price.IsZero() {
		return nil, fmt.Errorf("security %s: %w", ticker, domain.ErrNoPrice)
	}
	change, _ := decimalAt(md, column(mdCols, "LASTCHANGE", colLastChange))
	pct, _ := decimalAt(md, column(mdCols, "LASTCHANGEPRCNT", colChangePct))

	shortName := ticker
	if v := sec.Get(fmt.Sprintf("%d", column(secCols, "SHORTNAME", colShortName))); v.String() != "" {
		shortName = v.String()
	}

	return &domain.Stock{
		Ticker:    ticker,
		Name:      shortName,
		Price:     price,
		Change:    change,
		ChangePct: pct,
	}, nil
}

// column finds a named column in an ISS header, falling back to its usual position.
func column(cols gjson.Result, name string, fallback int) int {
	if !cols.IsArray() {
		return fallback
	}
	for i, c := range cols.Array() {
		if c.String() == name {
			return i
		}
	}
	return fallback
}

// decimalAt returns the number at index i of row. Null or missing cells yield zero and false.
func decimalAt(row gjson.Result, i int) (decimal.Decimal, bool) {
	cell := row.Get(fmt.Sprintf("%d", i))
	if cell.Type != gjson.Number {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cell.Raw)
	if err != nil {
		return decimal.NewFromFloat(cell.Float()), true
	}
	return d, true
}
