package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDirectionOf(t *testing.T) {
	t.Run("positive is up", func(t *testing.T) {
		if got := DirectionOf(decimal.NewFromFloat(0.5)); got != Up {
			t.Errorf("expected Up, got %v", got)
		}
	})

	t.Run("negative is down", func(t *testing.T) {
		if got := DirectionOf(decimal.NewFromFloat(-0.01)); got != Down {
			t.Errorf("expected Down, got %v", got)
		}
	})

	t.Run("zero is flat", func(t *testing.T) {
		if got := DirectionOf(decimal.Zero); got != Flat {
			t.Errorf("expected Flat, got %v", got)
		}
	})
}

func TestDirection_Glyph(t *testing.T) {
	if Up.Glyph() != "📈" {
		t.Errorf("up glyph = %q", Up.Glyph())
	}
	if Down.Glyph() != "📉" {
		t.Errorf("down glyph = %q", Down.Glyph())
	}
	if Flat.Glyph() != "➡️" {
		t.Errorf("flat glyph = %q", Flat.Glyph())
	}
}

func TestSigned(t *testing.T) {
	cases := []struct {
		in     string
		places int32
		want   string
	}{
		{"0.5", -1, "+0.5"},
		{"-1.25", -1, "-1.25"},
		{"0", -1, "0.0"},
		{"2", -1, "+2.0"},
		{"3.1", 2, "+3.10"},
		{"-0.456", 2, "-0.46"},
		{"0", 2, "0.00"},
	}
	for _, c := range cases {
		got := Signed(decimal.RequireFromString(c.in), c.places)
		if got != c.want {
			t.Errorf("Signed(%s, %d) = %q, want %q", c.in, c.places, got, c.want)
		}
	}
}

func TestShort(t *testing.T) {
	cases := map[string]string{
		"95.5":   "95.5",
		"95.50":  "95.5",
		"95":     "95.0",
		"100.00": "100.0",
		"-0.07":  "-0.07",
		"0":      "0.0",
	}
	for in, want := range cases {
		if got := Short(decimal.RequireFromString(in)); got != want {
			t.Errorf("Short(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestRate_Change(t *testing.T) {
	r := Rate{
		Code:     "USD",
		Value:    decimal.NewFromFloat(95.50),
		Previous: decimal.NewFromFloat(95.00),
	}
	if got := r.Current().String(); got != "95.5" {
		t.Errorf("Current() = %s, want 95.5", got)
	}
	if got := Signed(r.Change(), -1); got != "+0.5" {
		t.Errorf("Change() = %s, want +0.5", got)
	}
}

func TestRate_ChangeRounding(t *testing.T) {
	r := Rate{
		Value:    decimal.RequireFromString("81.2345"),
		Previous: decimal.RequireFromString("81.3001"),
	}
	if got := r.Change().String(); got != "-0.07" {
		t.Errorf("Change() = %s, want -0.07", got)
	}
	if got := r.Current().String(); got != "81.23" {
		t.Errorf("Current() = %s, want 81.23", got)
	}
}
