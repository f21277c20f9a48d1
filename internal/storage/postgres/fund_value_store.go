package postgres

import (
	"context"
	"fmt"
	"time"

	"equity-strategy-lab/internal/domain"
	"equity-strategy-lab/internal/storage"
)

// FundValueStore implements storage.FundValueStore using PostgreSQL.
type FundValueStore struct {
	pool *Pool
}

// NewFundValueStore creates a new FundValueStore.
func NewFundValueStore(pool *Pool) *FundValueStore {
	return &FundValueStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FundValueStore = (*FundValueStore)(nil)

// InsertRun adds a run's full equity curve.
// Returns ErrDuplicateKey if the run already exists.
func (s *FundValueStore) InsertRun(ctx context.Context, runID string, records []domain.FundValueRecord) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO fund_runs (run_id) VALUES ($1)`, runID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert fund run: %w", err)
	}

	query := `
		INSERT INTO fund_values (run_id, value_date, total_value)
		VALUES ($1, $2, $3)
	`
	for _, r := range records {
		if _, err := tx.Exec(ctx, query, runID, r.Date, r.Value); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert fund value: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRun retrieves a run's equity curve ordered by date ASC.
// Returns ErrNotFound if the run does not exist.
func (s *FundValueStore) GetByRun(ctx context.Context, runID string) ([]domain.FundValueRecord, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM fund_runs WHERE run_id = $1)`, runID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check fund run: %w", err)
	}
	if !exists {
		return nil, storage.ErrNotFound
	}

	rows, err := s.pool.Query(ctx, `
		SELECT value_date, total_value
		FROM fund_values
		WHERE run_id = $1
		ORDER BY value_date ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query fund values: %w", err)
	}
	defer rows.Close()

	var records []domain.FundValueRecord
	for rows.Next() {
		var (
			date  time.Time
			value float64
		)
		if err := rows.Scan(&date, &value); err != nil {
			return nil, fmt.Errorf("scan fund value: %w", err)
		}
		records = append(records, domain.FundValueRecord{
			Date:  domain.NormalizeDate(date),
			Value: value,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fund values: %w", err)
	}
	return records, nil
}
