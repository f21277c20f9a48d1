package storage

import (
	"context"
	"time"

	"equity-strategy-lab/internal/domain"
)

// BarStore provides access to daily_bars storage.
type BarStore interface {
	// InsertBulk adds multiple bars. Fails entire batch on duplicate (symbol, date).
	InsertBulk(ctx context.Context, bars []*domain.DailyBar) error

	// GetBySymbol retrieves all bars for a symbol, ordered by date ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.DailyBar, error)

	// GetByDateRange retrieves bars for a symbol within [start, end] (inclusive),
	// ordered by date ASC.
	GetByDateRange(ctx context.Context, symbol string, start, end time.Time) ([]*domain.DailyBar, error)

	// Symbols lists all symbols with at least one bar, sorted.
	Symbols(ctx context.Context) ([]string, error)
}

// OrderStore provides access to order batches.
type OrderStore interface {
	// InsertBatch adds a named batch of orders in input order.
	// Returns ErrDuplicateKey if the batch already exists.
	InsertBatch(ctx context.Context, batchID string, orders []domain.Order) error

	// GetByBatch retrieves a batch's orders in input order.
	// Returns ErrNotFound if the batch does not exist.
	GetByBatch(ctx context.Context, batchID string) ([]domain.Order, error)
}

// FundValueStore provides access to simulated equity curves.
type FundValueStore interface {
	// InsertRun adds a run's full equity curve.
	// Returns ErrDuplicateKey if the run already exists.
	InsertRun(ctx context.Context, runID string, records []domain.FundValueRecord) error

	// GetByRun retrieves a run's equity curve ordered by date ASC.
	// Returns ErrNotFound if the run does not exist.
	GetByRun(ctx context.Context, runID string) ([]domain.FundValueRecord, error)
}
