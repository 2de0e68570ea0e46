package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Direction of a price change.
type Direction int

const (
	Flat Direction = iota
	Up
	Down
)

// DirectionOf returns Up for d > 0, Down for d < 0 and Flat otherwise.
func DirectionOf(d decimal.Decimal) Direction {
	switch d.Sign() {
	case 1:
		return Up
	case -1:
		return Down
	default:
		return Flat
	}
}

// Glyph returns the emoji shown next to a change.
func (d Direction) Glyph() string {
	switch d {
	case Up:
		return "📈"
	case Down:
		return "📉"
	default:
		return "➡️"
	}
}

// Short prints d without trailing zeros but keeps at least one decimal: 95.5, 95.0.
func Short(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		return d.StringFixed(1)
	}
	return s
}

// Signed formats d with an explicit "+" for positive values. Negative values keep
// their own minus. places < 0 prints the Short form, otherwise a fixed
// number of decimals.
func Signed(d decimal.Decimal, places int32) string {
	var s string
	if places < 0 {
		s = Short(d)
	} else {
		s = d.StringFixed(places)
	}
	if d.Sign() > 0 {
		return "+" + s
	}
	return s
}
