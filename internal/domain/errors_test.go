package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestUpstreamError(t *testing.T) {
	base := errors.New("connection refused")

	t.Run("transport", func(t *testing.T) {
		err := &UpstreamError{Source: "rates", Kind: KindTransport, Err: base}
		if err.Error() != "rates: transport: connection refused" {
			t.Errorf("Error() = %q", err.Error())
		}
		if !errors.Is(err, base) {
			t.Error("expected error to wrap base")
		}
		if !IsTransport(err) {
			t.Error("IsTransport should be true")
		}
	})

	t.Run("status", func(t *testing.T) {
		err := &UpstreamError{Source: "stock", Kind: KindStatus, Status: 503, Err: errors.New("unavailable")}
		if err.Error() != "stock: status 503: unavailable" {
			t.Errorf("Error() = %q", err.Error())
		}
		if IsTransport(err) {
			t.Error("status error is not transport")
		}
	})

	t.Run("wrapped kind", func(t *testing.T) {
		err := fmt.Errorf("weather: %w", &UpstreamError{Source: "forecast", Kind: KindDecode, Err: base})
		if KindOf(err) != KindDecode {
			t.Errorf("KindOf = %q, want decode", KindOf(err))
		}
	})

	t.Run("plain error", func(t *testing.T) {
		if KindOf(ErrNotFound) != "" {
			t.Error("sentinel should have no kind")
		}
		if IsTransport(ErrNotFound) {
			t.Error("sentinel is not transport")
		}
	})
}
