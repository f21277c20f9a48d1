package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"equity-strategy-lab/internal/domain"
	"equity-strategy-lab/internal/storage"
)

// BarStore is an in-memory implementation of storage.BarStore.
type BarStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DailyBar // keyed by (symbol, date)
}

// NewBarStore creates a new in-memory daily bar store.
func NewBarStore() *BarStore {
	return &BarStore{data: make(map[string]*domain.DailyBar)}
}

func barKey(symbol string, date time.Time) string {
	return fmt.Sprintf("%s|%s", symbol, domain.NormalizeDate(date).Format("2006-01-02"))
}

// InsertBulk adds multiple bars. Fails entire batch on duplicate (symbol, date).
func (s *BarStore) InsertBulk(_ context.Context, bars []*domain.DailyBar) error {
	if len(bars) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(bars))
	for _, b := range bars {
		if b == nil || b.Symbol == "" || b.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		key := barKey(b.Symbol, b.Date)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, b := range bars {
		barCopy := *b
		barCopy.Date = domain.NormalizeDate(b.Date)
		s.data[barKey(b.Symbol, b.Date)] = &barCopy
	}
	return nil
}

// GetBySymbol retrieves all bars for a symbol, ordered by date ASC.
func (s *BarStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.DailyBar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DailyBar
	for _, b := range s.data {
		if b.Symbol == symbol {
			barCopy := *b
			result = append(result, &barCopy)
		}
	}
	sortBars(result)
	return result, nil
}

// GetByDateRange retrieves bars for a symbol within [start, end] (inclusive).
func (s *BarStore) GetByDateRange(_ context.Context, symbol string, start, end time.Time) ([]*domain.DailyBar, error) {
	start = domain.NormalizeDate(start)
	end = domain.NormalizeDate(end)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DailyBar
	for _, b := range s.data {
		if b.Symbol == symbol && !b.Date.Before(start) && !b.Date.After(end) {
			barCopy := *b
			result = append(result, &barCopy)
		}
	}
	sortBars(result)
	return result, nil
}

// Symbols lists all symbols with at least one bar, sorted.
func (s *BarStore) Symbols(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, b := range s.data {
		seen[b.Symbol] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out, nil
}

func sortBars(bars []*domain.DailyBar) {
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})
}

var _ storage.BarStore = (*BarStore)(nil)
