package marketdata

import (
	"fmt"
	"sort"
	"time"

	"equity-strategy-lab/internal/domain"
)

// fillMissing resolves gaps in a series aligned to the calendar, in this
// exact priority: (1) forward-fill from the most recent prior valid value,
// (2) backward-fill remaining leading gaps, (3) constant-fill anything still
// missing with 1.0. The order is load-bearing: changing it changes statistics
// silently.
func fillMissing(values []float64, present []bool) []float64 {
	out := make([]float64, len(values))
	filled := make([]bool, len(values))

	// Stage 1: forward fill
	have := false
	last := 0.0
	for i := range values {
		if present[i] {
			last = values[i]
			have = true
		}
		if have {
			out[i] = last
			filled[i] = true
		}
	}

	// Stage 2: backward fill leading gaps
	have = false
	next := 0.0
	for i := len(values) - 1; i >= 0; i-- {
		if filled[i] {
			next = out[i]
			have = true
			continue
		}
		if have {
			out[i] = next
			filled[i] = true
		}
	}

	// Stage 3: constant fill
	for i := range out {
		if !filled[i] {
			out[i] = 1.0
		}
	}
	return out
}

// buildHistory aligns per-symbol bars onto one shared calendar (the sorted
// union of observed trading days) and applies the fill policy per symbol and
// field. A symbol with no bars at all is a data-quality failure.
func buildHistory(symbols []string, barsBySymbol map[string][]*domain.DailyBar) (*domain.History, error) {
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}

	dateSet := make(map[time.Time]struct{})
	for _, symbol := range symbols {
		bars := barsBySymbol[symbol]
		if len(bars) == 0 {
			return nil, fmt.Errorf("%w: no bars for symbol %s", ErrDataUnavailable, symbol)
		}
		for _, b := range bars {
			dateSet[domain.NormalizeDate(b.Date)] = struct{}{}
		}
	}
	if len(dateSet) == 0 {
		return nil, fmt.Errorf("%w: empty trading calendar", ErrDataUnavailable)
	}

	days := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	calendar, err := domain.NewTradingCalendar(days)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	history := domain.NewHistory(calendar, symbols)
	for _, field := range domain.AllFields {
		frame, err := history.Frame(field)
		if err != nil {
			return nil, err
		}
		for _, symbol := range symbols {
			values := make([]float64, calendar.Len())
			present := make([]bool, calendar.Len())
			for _, b := range barsBySymbol[symbol] {
				i, ok := calendar.Index(b.Date)
				if !ok {
					continue
				}
				values[i] = b.FieldValue(field)
				present[i] = true
			}
			for i, v := range fillMissing(values, present) {
				if err := frame.Set(i, symbol, v); err != nil {
					return nil, err
				}
			}
		}
	}
	return history, nil
}
