package providers

import (
	"context"
	"errors"
	"fmt"
)

// Query is one round-trip lookup against the flight provider.
type Query struct {
	DepartureID  string
	ArrivalID    string
	OutboundDate string
	ReturnDate   string
}

type Provider interface {
	Name() string
	Search(ctx context.Context, q Query) (*Response, error)
}

var ErrMissingAPIKey = errors.New("provider API key not configured")

// ProviderError describes a failed provider call. StatusCode is zero when no
// HTTP response was received.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Body       []byte
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return e.Provider + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Message:  err.Error(),
		Err:      err,
	}
}
