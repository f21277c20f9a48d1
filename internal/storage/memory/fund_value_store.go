package memory

import (
	"context"
	"sort"
	"sync"

	"equity-strategy-lab/internal/domain"
	"equity-strategy-lab/internal/storage"
)

// FundValueStore is an in-memory implementation of storage.FundValueStore.
type FundValueStore struct {
	mu   sync.RWMutex
	runs map[string][]domain.FundValueRecord
}

// NewFundValueStore creates a new in-memory fund value store.
func NewFundValueStore() *FundValueStore {
	return &FundValueStore{runs: make(map[string][]domain.FundValueRecord)}
}

// InsertRun adds a run's full equity curve.
func (s *FundValueStore) InsertRun(_ context.Context, runID string, records []domain.FundValueRecord) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[runID]; exists {
		return storage.ErrDuplicateKey
	}

	curve := make([]domain.FundValueRecord, len(records))
	for i, r := range records {
		curve[i] = domain.FundValueRecord{Date: domain.NormalizeDate(r.Date), Value: r.Value}
	}
	s.runs[runID] = curve
	return nil
}

// GetByRun retrieves a run's equity curve ordered by date ASC.
func (s *FundValueStore) GetByRun(_ context.Context, runID string) ([]domain.FundValueRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	curve, ok := s.runs[runID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	out := append([]domain.FundValueRecord(nil), curve...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

var _ storage.FundValueStore = (*FundValueStore)(nil)
