// Package marketdata loads aligned per-symbol daily bar history for a run.
// All data-quality problems (missing symbols, empty calendars, unresolvable
// values) are surfaced at this boundary so that undefined values never reach
// the statistics engine.
package marketdata

import (
	"context"
	"errors"
	"time"

	"equity-strategy-lab/internal/domain"
)

// Provider errors.
var (
	// ErrDataUnavailable marks a data-quality failure at the provider
	// boundary: a missing symbol, an empty calendar, or values the fill
	// policy could not resolve.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrNoSymbols is returned when a request names no symbols.
	ErrNoSymbols = errors.New("no symbols requested")
)

// Provider returns aligned OHLCV + adjusted-close history for a symbol list
// over [start, end]. The returned history shares one strictly increasing
// trading-day calendar across all symbols and has no missing values: the fill
// policy has already been applied.
type Provider interface {
	History(ctx context.Context, symbols []string, start, end time.Time) (*domain.History, error)
}
