package clickhouse

import (
	"context"
	"fmt"
	"time"

	"equity-strategy-lab/internal/domain"
	"equity-strategy-lab/internal/storage"
)

// BarStore implements storage.BarStore using ClickHouse.
type BarStore struct {
	conn *Conn
}

// NewBarStore creates a new BarStore.
func NewBarStore(conn *Conn) *BarStore {
	return &BarStore{conn: conn}
}

// Compile-time interface check.
var _ storage.BarStore = (*BarStore)(nil)

// InsertBulk adds multiple bars. Fails entire batch on duplicate (symbol, date).
// ClickHouse MergeTree does not enforce uniqueness, so duplicates are checked
// explicitly before the batch insert.
func (s *BarStore) InsertBulk(ctx context.Context, bars []*domain.DailyBar) error {
	if len(bars) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		symbol string
		date   string
	}
	seen := make(map[key]struct{}, len(bars))
	for _, b := range bars {
		if b == nil || b.Symbol == "" || b.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		k := key{b.Symbol, domain.NormalizeDate(b.Date).Format("2006-01-02")}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing rows
	for _, b := range bars {
		exists, err := s.exists(ctx, b.Symbol, b.Date)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO daily_bars (
			symbol, bar_date, open, high, low, close, volume, adj_close
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, b := range bars {
		err = batch.Append(
			b.Symbol, domain.NormalizeDate(b.Date),
			b.Open, b.High, b.Low, b.Close, b.Volume, b.AdjClose,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetBySymbol retrieves all bars for a symbol, ordered by date ASC.
func (s *BarStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.DailyBar, error) {
	query := `
		SELECT symbol, bar_date, open, high, low, close, volume, adj_close
		FROM daily_bars
		WHERE symbol = ?
		ORDER BY bar_date ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query bars by symbol: %w", err)
	}
	defer rows.Close()

	return scanBars(rows)
}

// GetByDateRange retrieves bars for a symbol within [start, end] (inclusive).
func (s *BarStore) GetByDateRange(ctx context.Context, symbol string, start, end time.Time) ([]*domain.DailyBar, error) {
	query := `
		SELECT symbol, bar_date, open, high, low, close, volume, adj_close
		FROM daily_bars
		WHERE symbol = ? AND bar_date >= ? AND bar_date <= ?
		ORDER BY bar_date ASC
	`

	rows, err := s.conn.Query(ctx, query,
		symbol, domain.NormalizeDate(start), domain.NormalizeDate(end))
	if err != nil {
		return nil, fmt.Errorf("query bars by date range: %w", err)
	}
	defer rows.Close()

	return scanBars(rows)
}

// Symbols lists all symbols with at least one bar, sorted.
func (s *BarStore) Symbols(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, `SELECT DISTINCT symbol FROM daily_bars ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		symbols = append(symbols, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate symbols: %w", err)
	}
	return symbols, nil
}

func (s *BarStore) exists(ctx context.Context, symbol string, date time.Time) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		`SELECT count() FROM daily_bars WHERE symbol = ? AND bar_date = ?`,
		symbol, domain.NormalizeDate(date),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanBars(rows rowScanner) ([]*domain.DailyBar, error) {
	var bars []*domain.DailyBar
	for rows.Next() {
		var b domain.DailyBar
		err := rows.Scan(
			&b.Symbol, &b.Date,
			&b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.AdjClose,
		)
		if err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Date = domain.NormalizeDate(b.Date)
		bars = append(bars, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars: %w", err)
	}
	return bars, nil
}
