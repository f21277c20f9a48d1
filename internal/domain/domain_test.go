package domain

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewTradingCalendar_Ordering(t *testing.T) {
	cal, err := NewTradingCalendar([]time.Time{day(2011, 1, 10), day(2011, 1, 11), day(2011, 1, 12)})
	if err != nil {
		t.Fatalf("NewTradingCalendar failed: %v", err)
	}
	if cal.Len() != 3 || !cal.First().Equal(day(2011, 1, 10)) || !cal.Last().Equal(day(2011, 1, 12)) {
		t.Errorf("unexpected calendar: len=%d first=%v last=%v", cal.Len(), cal.First(), cal.Last())
	}

	if _, err := NewTradingCalendar(nil); !errors.Is(err, ErrEmptyCalendar) {
		t.Errorf("expected ErrEmptyCalendar, got %v", err)
	}
	_, err = NewTradingCalendar([]time.Time{day(2011, 1, 11), day(2011, 1, 10)})
	if !errors.Is(err, ErrUnorderedCalendar) {
		t.Errorf("expected ErrUnorderedCalendar, got %v", err)
	}
	// A repeated day is not strictly increasing either
	_, err = NewTradingCalendar([]time.Time{day(2011, 1, 10), day(2011, 1, 10)})
	if !errors.Is(err, ErrUnorderedCalendar) {
		t.Errorf("expected ErrUnorderedCalendar for duplicate day, got %v", err)
	}
}

func TestCalendar_IndexIgnoresTimeOfDay(t *testing.T) {
	cal, err := NewTradingCalendar([]time.Time{day(2011, 1, 10), day(2011, 1, 11)})
	if err != nil {
		t.Fatalf("NewTradingCalendar failed: %v", err)
	}

	noon := time.Date(2011, 1, 11, 12, 30, 0, 0, time.UTC)
	i, ok := cal.Index(noon)
	if !ok || i != 1 {
		t.Errorf("expected index 1 for noon timestamp, got %d %v", i, ok)
	}
}

func TestWeekdays_SkipsWeekendsAndHolidays(t *testing.T) {
	// 2011-01-14 is a Friday, 17th a Monday (a holiday here)
	days := Weekdays(day(2011, 1, 14), day(2011, 1, 18), day(2011, 1, 17))

	want := []time.Time{day(2011, 1, 14), day(2011, 1, 18)}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d: %v", len(want), len(days), days)
	}
	for i := range want {
		if !days[i].Equal(want[i]) {
			t.Errorf("day %d: expected %v, got %v", i, want[i], days[i])
		}
	}
}

func TestParseSide_CaseInsensitive(t *testing.T) {
	for _, raw := range []string{"Buy", "BUY", "buy", " buy "} {
		side, err := ParseSide(raw)
		if err != nil || side != SideBuy {
			t.Errorf("ParseSide(%q) = %v, %v", raw, side, err)
		}
	}
	if _, err := ParseSide("hold"); !errors.Is(err, ErrUnknownSide) {
		t.Errorf("expected ErrUnknownSide, got %v", err)
	}
}

func TestNewOrder_Validation(t *testing.T) {
	o, err := NewOrder(day(2011, 1, 10), " aapl ", SideBuy, 100)
	if err != nil {
		t.Fatalf("NewOrder failed: %v", err)
	}
	if o.Symbol != "AAPL" || o.SignedQuantity() != 100 {
		t.Errorf("unexpected order: %+v", o)
	}

	if _, err := NewOrder(day(2011, 1, 10), "AAPL", SideSell, 0); !errors.Is(err, ErrNonPositiveAmount) {
		t.Errorf("expected ErrNonPositiveAmount, got %v", err)
	}
	if _, err := NewOrder(day(2011, 1, 10), "aa pl", SideBuy, 1); !errors.Is(err, ErrInvalidSymbol) {
		t.Errorf("expected ErrInvalidSymbol, got %v", err)
	}
	if _, err := NewOrder(time.Time{}, "AAPL", SideBuy, 1); !errors.Is(err, ErrZeroOrderDate) {
		t.Errorf("expected ErrZeroOrderDate, got %v", err)
	}

	sell, err := NewOrder(day(2011, 1, 10), "AAPL", SideSell, 40)
	if err != nil {
		t.Fatalf("NewOrder failed: %v", err)
	}
	if sell.SignedQuantity() != -40 {
		t.Errorf("expected signed quantity -40, got %d", sell.SignedQuantity())
	}
}

func TestPortfolio_WithTradeIsImmutable(t *testing.T) {
	base := NewPortfolio(1000)
	next := base.WithTrade("AAPL", 10, -500)

	if base.Cash != 1000 || base.Holding("AAPL") != 0 {
		t.Errorf("base portfolio mutated: %+v", base)
	}
	if next.Cash != 500 || next.Holding("AAPL") != 10 {
		t.Errorf("unexpected derived portfolio: cash=%f holding=%d", next.Cash, next.Holding("AAPL"))
	}
}

func TestPortfolio_Value(t *testing.T) {
	p := NewPortfolio(1000).WithTrade("AAPL", 10, -500).WithTrade("IBM", -5, 250)

	value, err := p.Value(func(symbol string) (float64, error) {
		switch symbol {
		case "AAPL":
			return 60, nil
		case "IBM":
			return 40, nil
		}
		return 0, errors.New("no price")
	})
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	// 750 cash + 10*60 - 5*40
	if value != 1150 {
		t.Errorf("expected value 1150, got %f", value)
	}
}

func TestPortfolio_SymbolsDropsFlatPositions(t *testing.T) {
	p := NewPortfolio(0).WithTrade("AAPL", 10, 0).WithTrade("AAPL", -10, 0).WithTrade("IBM", 1, 0)

	symbols := p.Symbols()
	if len(symbols) != 1 || symbols[0] != "IBM" {
		t.Errorf("expected only IBM, got %v", symbols)
	}
}

func TestAllocationVector_Validate(t *testing.T) {
	if err := (AllocationVector{0.3, 0.3, 0.4}).Validate(); err != nil {
		t.Errorf("valid vector rejected: %v", err)
	}
	if err := (AllocationVector{0.5, 0.6}).Validate(); !errors.Is(err, ErrAllocationSum) {
		t.Errorf("expected ErrAllocationSum, got %v", err)
	}
	if err := (AllocationVector{1.5, -0.5}).Validate(); !errors.Is(err, ErrAllocationWeight) {
		t.Errorf("expected ErrAllocationWeight, got %v", err)
	}
}

func TestFrame_ColumnAndSet(t *testing.T) {
	cal, err := NewTradingCalendar([]time.Time{day(2011, 1, 10), day(2011, 1, 11)})
	if err != nil {
		t.Fatalf("NewTradingCalendar failed: %v", err)
	}
	f := NewFrame(cal, []string{"AAPL"})

	if err := f.Set(1, "AAPL", 42); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	col, err := f.Column("AAPL")
	if err != nil {
		t.Fatalf("Column failed: %v", err)
	}
	if col[0] != 0 || col[1] != 42 {
		t.Errorf("unexpected column: %v", col)
	}

	if _, err := f.At(0, "GOOG"); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("expected ErrUnknownSymbol, got %v", err)
	}
}
