package marketdata

import (
	"context"
	"fmt"
	"time"

	"equity-strategy-lab/internal/domain"
	"equity-strategy-lab/internal/storage"
)

// StoreProvider serves history out of a storage.BarStore.
type StoreProvider struct {
	bars storage.BarStore
}

// NewStoreProvider creates a Provider backed by a bar store.
func NewStoreProvider(bars storage.BarStore) *StoreProvider {
	return &StoreProvider{bars: bars}
}

// Compile-time interface check.
var _ Provider = (*StoreProvider)(nil)

// History loads and aligns bars for the symbols over [start, end].
func (p *StoreProvider) History(ctx context.Context, symbols []string, start, end time.Time) (*domain.History, error) {
	normalized := make([]string, len(symbols))
	barsBySymbol := make(map[string][]*domain.DailyBar, len(symbols))
	for i, s := range symbols {
		symbol := domain.NormalizeSymbol(s)
		if err := domain.ValidateSymbol(symbol); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
		}
		normalized[i] = symbol

		bars, err := p.bars.GetByDateRange(ctx, symbol, start, end)
		if err != nil {
			return nil, fmt.Errorf("load bars for %s: %w", symbol, err)
		}
		barsBySymbol[symbol] = bars
	}
	return buildHistory(normalized, barsBySymbol)
}
