package memory

import (
	"context"
	"sync"

	"equity-strategy-lab/internal/domain"
	"equity-strategy-lab/internal/storage"
)

// OrderStore is an in-memory implementation of storage.OrderStore.
type OrderStore struct {
	mu      sync.RWMutex
	batches map[string][]domain.Order
}

// NewOrderStore creates a new in-memory order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{batches: make(map[string][]domain.Order)}
}

// InsertBatch adds a named batch of orders in input order.
func (s *OrderStore) InsertBatch(_ context.Context, batchID string, orders []domain.Order) error {
	if batchID == "" {
		return storage.ErrInvalidInput
	}
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.batches[batchID]; exists {
		return storage.ErrDuplicateKey
	}
	s.batches[batchID] = append([]domain.Order(nil), orders...)
	return nil
}

// GetByBatch retrieves a batch's orders in input order.
func (s *OrderStore) GetByBatch(_ context.Context, batchID string) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders, ok := s.batches[batchID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]domain.Order(nil), orders...), nil
}

var _ storage.OrderStore = (*OrderStore)(nil)
