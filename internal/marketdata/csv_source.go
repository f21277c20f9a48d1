package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"equity-strategy-lab/internal/domain"
)

// CSVSource serves history from a directory of per-symbol CSV files
// (SYMBOL.csv, Yahoo export layout: Date,Open,High,Low,Close,Volume,Adj Close).
// Rows may appear in any order; they are aligned by date.
type CSVSource struct {
	dir string
}

// NewCSVSource creates a Provider reading from a data directory.
func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{dir: dir}
}

// Compile-time interface check.
var _ Provider = (*CSVSource)(nil)

// History loads and aligns bars for the symbols over [start, end].
func (s *CSVSource) History(_ context.Context, symbols []string, start, end time.Time) (*domain.History, error) {
	start = domain.NormalizeDate(start)
	end = domain.NormalizeDate(end)

	normalized := make([]string, len(symbols))
	barsBySymbol := make(map[string][]*domain.DailyBar, len(symbols))
	for i, raw := range symbols {
		symbol := domain.NormalizeSymbol(raw)
		if err := domain.ValidateSymbol(symbol); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
		}
		normalized[i] = symbol

		bars, err := s.readSymbolFile(symbol, start, end)
		if err != nil {
			return nil, err
		}
		barsBySymbol[symbol] = bars
	}
	return buildHistory(normalized, barsBySymbol)
}

// ReadSymbol loads one symbol's bars in [start, end] without alignment.
// Used by ingestion to move CSV files into a bar store.
func (s *CSVSource) ReadSymbol(symbol string, start, end time.Time) ([]*domain.DailyBar, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if err := domain.ValidateSymbol(symbol); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	return s.readSymbolFile(symbol, domain.NormalizeDate(start), domain.NormalizeDate(end))
}

func (s *CSVSource) readSymbolFile(symbol string, start, end time.Time) ([]*domain.DailyBar, error) {
	// '$' prefixes index symbols but is awkward in filenames
	name := strings.ReplaceAll(symbol, "$", "_") + ".csv"

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no data file for symbol %s", ErrDataUnavailable, symbol)
		}
		return nil, fmt.Errorf("open data file for %s: %w", symbol, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 7

	var bars []*domain.DailyBar
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		line++

		// Header row
		if line == 1 && strings.EqualFold(record[0], "date") {
			continue
		}

		bar, err := parseBarRecord(symbol, record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", name, line, err)
		}
		if bar.Date.Before(start) || bar.Date.After(end) {
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseBarRecord(symbol string, record []string) (*domain.DailyBar, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", record[0], err)
	}

	fields := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse field %d %q: %w", i+1, record[i+1], err)
		}
		fields[i] = v
	}

	return &domain.DailyBar{
		Symbol:   symbol,
		Date:     domain.NormalizeDate(date),
		Open:     fields[0],
		High:     fields[1],
		Low:      fields[2],
		Close:    fields[3],
		Volume:   fields[4],
		AdjClose: fields[5],
	}, nil
}
