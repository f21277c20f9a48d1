package postgres

import (
	"context"
	"fmt"
	"time"

	"equity-strategy-lab/internal/domain"
	"equity-strategy-lab/internal/storage"
)

// OrderStore implements storage.OrderStore using PostgreSQL.
type OrderStore struct {
	pool *Pool
}

// NewOrderStore creates a new OrderStore.
func NewOrderStore(pool *Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Compile-time interface check.
var _ storage.OrderStore = (*OrderStore)(nil)

// InsertBatch adds a named batch of orders in input order.
// Returns ErrDuplicateKey if the batch already exists.
func (s *OrderStore) InsertBatch(ctx context.Context, batchID string, orders []domain.Order) error {
	if batchID == "" {
		return storage.ErrInvalidInput
	}
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO order_batches (batch_id) VALUES ($1)`, batchID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert order batch: %w", err)
	}

	query := `
		INSERT INTO orders (batch_id, seq, order_date, symbol, side, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, o := range orders {
		_, err := tx.Exec(ctx, query,
			batchID, i, o.Date, o.Symbol, string(o.Side), o.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByBatch retrieves a batch's orders in input order.
// Returns ErrNotFound if the batch does not exist.
func (s *OrderStore) GetByBatch(ctx context.Context, batchID string) ([]domain.Order, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM order_batches WHERE batch_id = $1)`, batchID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check order batch: %w", err)
	}
	if !exists {
		return nil, storage.ErrNotFound
	}

	rows, err := s.pool.Query(ctx, `
		SELECT order_date, symbol, side, quantity
		FROM orders
		WHERE batch_id = $1
		ORDER BY seq ASC
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query orders by batch: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var (
			date     time.Time
			symbol   string
			side     string
			quantity int
		)
		if err := rows.Scan(&date, &symbol, &side, &quantity); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, domain.Order{
			Date:     domain.NormalizeDate(date),
			Symbol:   symbol,
			Side:     domain.Side(side),
			Quantity: quantity,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}
