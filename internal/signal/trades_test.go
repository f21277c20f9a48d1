package signal

import (
	"errors"
	"testing"
	"time"

	"equity-strategy-lab/internal/domain"
)

func testCalendar(t *testing.T, n int) *domain.TradingCalendar {
	t.Helper()
	days := make([]time.Time, n)
	for i := range days {
		days[i] = day(2012, 3, 1).AddDate(0, 0, i)
	}
	cal, err := domain.NewTradingCalendar(days)
	if err != nil {
		t.Fatalf("NewTradingCalendar failed: %v", err)
	}
	return cal
}

func TestEventTrades_PairsBuyAndSell(t *testing.T) {
	cal := testCalendar(t, 10)
	events := []Event{
		{Date: cal.Day(2), Symbol: "ABC"},
	}

	orders, err := EventTrades(cal, events, TradeConfig{Quantity: 100, HoldingDays: 5})
	if err != nil {
		t.Fatalf("EventTrades failed: %v", err)
	}

	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	buy, sell := orders[0], orders[1]
	if buy.Side != domain.SideBuy || !buy.Date.Equal(cal.Day(2)) || buy.Quantity != 100 {
		t.Errorf("unexpected buy order: %+v", buy)
	}
	if sell.Side != domain.SideSell || !sell.Date.Equal(cal.Day(7)) || sell.Quantity != 100 {
		t.Errorf("unexpected sell order: %+v", sell)
	}
}

func TestEventTrades_ClampsSellToLastDay(t *testing.T) {
	cal := testCalendar(t, 10)
	events := []Event{
		{Date: cal.Day(7), Symbol: "ABC"}, // exit would land at index 12
	}

	orders, err := EventTrades(cal, events, TradeConfig{Quantity: 100, HoldingDays: 5})
	if err != nil {
		t.Fatalf("EventTrades failed: %v", err)
	}

	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if !orders[1].Date.Equal(cal.Last()) {
		t.Errorf("expected sell clamped to %v, got %v", cal.Last(), orders[1].Date)
	}
}

func TestEventTrades_EventOnLastDay(t *testing.T) {
	cal := testCalendar(t, 5)
	events := []Event{
		{Date: cal.Last(), Symbol: "ABC"},
	}

	orders, err := EventTrades(cal, events, TradeConfig{Quantity: 100, HoldingDays: 5})
	if err != nil {
		t.Fatalf("EventTrades failed: %v", err)
	}

	// Both legs land on the last day; the round trip is flat but still emitted.
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if !orders[0].Date.Equal(orders[1].Date) {
		t.Errorf("expected same-day buy/sell, got %v and %v", orders[0].Date, orders[1].Date)
	}
}

func TestEventTrades_PreservesEventOrder(t *testing.T) {
	cal := testCalendar(t, 10)
	events := []Event{
		{Date: cal.Day(1), Symbol: "ABC"},
		{Date: cal.Day(1), Symbol: "XYZ"},
		{Date: cal.Day(3), Symbol: "ABC"},
	}

	orders, err := EventTrades(cal, events, TradeConfig{Quantity: 50, HoldingDays: 2})
	if err != nil {
		t.Fatalf("EventTrades failed: %v", err)
	}

	if len(orders) != 6 {
		t.Fatalf("expected 6 orders, got %d", len(orders))
	}
	wantSymbols := []string{"ABC", "ABC", "XYZ", "XYZ", "ABC", "ABC"}
	for i, want := range wantSymbols {
		if orders[i].Symbol != want {
			t.Errorf("order %d: expected symbol %s, got %s", i, want, orders[i].Symbol)
		}
	}
}

func TestEventTrades_InvalidConfig(t *testing.T) {
	cal := testCalendar(t, 5)

	_, err := EventTrades(cal, nil, TradeConfig{Quantity: 0, HoldingDays: 5})
	if !errors.Is(err, domain.ErrNonPositiveAmount) {
		t.Errorf("expected ErrNonPositiveAmount, got %v", err)
	}

	_, err = EventTrades(cal, nil, TradeConfig{Quantity: 100, HoldingDays: 0})
	if !errors.Is(err, ErrBadWindow) {
		t.Errorf("expected ErrBadWindow, got %v", err)
	}
}

func TestEventTrades_OffCalendarDate(t *testing.T) {
	cal := testCalendar(t, 5)
	events := []Event{
		{Date: day(2020, 1, 1), Symbol: "ABC"},
	}

	_, err := EventTrades(cal, events, TradeConfig{Quantity: 100, HoldingDays: 5})
	if !errors.Is(err, ErrDateOffCalendar) {
		t.Errorf("expected ErrDateOffCalendar, got %v", err)
	}
}
