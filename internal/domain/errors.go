package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the upstream has no entry for the requested city or ticker.
	ErrNotFound = errors.New("not found")

	// ErrNoData is returned when the upstream answered but the expected section is absent.
	ErrNoData = errors.New("no data")

	// ErrNoMarketData is returned when a security exists but has no market data row.
	ErrNoMarketData = errors.New("no market data")

	// ErrNoPrice is returned when the market data row carries no last price.
	ErrNoPrice = errors.New("no price")
)

// ErrorKind classifies an upstream failure.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport" // dial, TLS, timeout, connection reset
	KindStatus    ErrorKind = "status"    // non-2xx response
	KindDecode    ErrorKind = "decode"    // body is not the expected shape
)

// UpstreamError wraps a failed call to an external data API.
type UpstreamError struct {
	Source string // "geocoding", "forecast", "rates", "stock"
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("%s: %s %d: %v", e.Source, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is an upstream transport failure.
func IsTransport(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Kind == KindTransport
	}
	return false
}

// KindOf returns the upstream error kind of err, or "" if err is not an UpstreamError.
func KindOf(err error) ErrorKind {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return ""
}
