// Package adapter defines the boundary between bookmaker feeds and the core.
// Adapters translate provider payloads into the typed Raw* records and
// perform no name resolution.
package adapter

import (
	"context"
	"errors"
	"fmt"

	"odds-aggregator/internal/domain"
)

// Adapter fetches one bookmaker's leagues, fixtures and odds.
type Adapter interface {
	// Name is the source name; it keys the sources table.
	Name() string
	FetchLeagues(ctx context.Context) ([]domain.RawLeague, error)
	FetchFixtures(ctx context.Context) ([]domain.RawFixture, error)
	FetchOdds(ctx context.Context) ([]domain.RawOdds, error)
}

// ErrNetwork is returned when a feed cannot be reached.
var ErrNetwork = errors.New("network failure")

// NetworkError is an ErrNetwork for one request.
type NetworkError struct {
	URL   string
	Proxy string
	Err   error
}

func (e *NetworkError) Error() string {
	if e.Proxy != "" {
		return fmt.Sprintf("network failure: %s via %s: %v", e.URL, e.Proxy, e.Err)
	}
	return fmt.Sprintf("network failure: %s: %v", e.URL, e.Err)
}

// Unwrap exposes both ErrNetwork and the cause.
func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}
