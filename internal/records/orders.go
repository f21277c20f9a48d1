// Package records reads and writes the flat-file record formats at the
// system boundary: order lists, fund-value curves and indicator streams.
// Files are headerless CSV keyed by split year,month,day columns.
package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"equity-strategy-lab/internal/domain"
)

// ErrMalformedRecord tags per-line parse failures.
var ErrMalformedRecord = errors.New("malformed record")

// ReadOrders parses an order list: year,month,day,symbol,side,quantity per
// line, side case-insensitive, an optional trailing empty column tolerated.
// In lenient mode (strict=false, the default mode of the commands) malformed
// lines are collected as line-identifying errors and parsing continues; in
// strict mode the first malformed line aborts the batch.
func ReadOrders(r io.Reader, strict bool) ([]domain.Order, []error, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var orders []domain.Order
	var lineErrs []error
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, lineErrs, fmt.Errorf("read orders: %w", err)
		}
		line++

		o, err := parseOrderRecord(record)
		if err != nil {
			err = fmt.Errorf("line %d: %w", line, err)
			if strict {
				return nil, nil, err
			}
			lineErrs = append(lineErrs, err)
			continue
		}
		orders = append(orders, o)
	}
	return orders, lineErrs, nil
}

func parseOrderRecord(record []string) (domain.Order, error) {
	record = trimTrailingEmpty(record)
	if len(record) != 6 {
		return domain.Order{}, fmt.Errorf("%w: expected 6 columns, got %d", ErrMalformedRecord, len(record))
	}

	date, err := parseDateColumns(record[0], record[1], record[2])
	if err != nil {
		return domain.Order{}, err
	}
	side, err := domain.ParseSide(record[4])
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(record[5]))
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: quantity %q", ErrMalformedRecord, record[5])
	}

	o, err := domain.NewOrder(date, record[3], side, quantity)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return o, nil
}

// WriteOrders renders orders in the same column layout ReadOrders accepts.
func WriteOrders(w io.Writer, orders []domain.Order) error {
	writer := csv.NewWriter(w)
	for _, o := range orders {
		record := append(dateColumns(o.Date), o.Symbol, string(o.Side), strconv.Itoa(o.Quantity))
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write orders: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func parseDateColumns(year, month, day string) (time.Time, error) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: year %q", ErrMalformedRecord, year)
	}
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, fmt.Errorf("%w: month %q", ErrMalformedRecord, month)
	}
	d, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, fmt.Errorf("%w: day %q", ErrMalformedRecord, day)
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), nil
}

func dateColumns(t time.Time) []string {
	return []string{
		strconv.Itoa(t.Year()),
		strconv.Itoa(int(t.Month())),
		strconv.Itoa(t.Day()),
	}
}

func trimTrailingEmpty(record []string) []string {
	for len(record) > 0 && strings.TrimSpace(record[len(record)-1]) == "" {
		record = record[:len(record)-1]
	}
	return record
}
