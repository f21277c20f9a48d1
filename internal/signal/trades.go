package signal

import (
	"errors"
	"fmt"

	"equity-strategy-lab/internal/domain"
)

// ErrDateOffCalendar marks an event dated outside the trading calendar.
var ErrDateOffCalendar = errors.New("event date not in trading calendar")

// Trade emission defaults.
const (
	DefaultHoldingDays   = 5
	DefaultTradeQuantity = 100
)

// TradeConfig controls how detected events become orders.
type TradeConfig struct {
	// Quantity is the share count bought per event.
	Quantity int
	// HoldingDays is the offset in trading days from entry to exit. Exits
	// past the end of the calendar are clamped to the last trading day.
	HoldingDays int
}

// Validate checks the config.
func (c TradeConfig) Validate() error {
	if c.Quantity <= 0 {
		return domain.ErrNonPositiveAmount
	}
	if c.HoldingDays <= 0 {
		return ErrBadWindow
	}
	return nil
}

// EventTrades converts events into paired orders: a buy on the event date and
// a sell HoldingDays trading days later. Events near the end of the calendar
// still produce both legs; the sell lands on the last trading day. Orders come
// out in event order, buy before its sell.
func EventTrades(calendar *domain.TradingCalendar, events []Event, cfg TradeConfig) ([]domain.Order, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, 2*len(events))
	for _, ev := range events {
		entry, ok := calendar.Index(ev.Date)
		if !ok {
			return nil, fmt.Errorf("%w: %s %s", ErrDateOffCalendar, ev.Symbol, ev.Date.Format("2006-01-02"))
		}
		exit := entry + cfg.HoldingDays
		if exit >= calendar.Len() {
			exit = calendar.Len() - 1
		}

		buy, err := domain.NewOrder(calendar.Day(entry), ev.Symbol, domain.SideBuy, cfg.Quantity)
		if err != nil {
			return nil, err
		}
		sell, err := domain.NewOrder(calendar.Day(exit), ev.Symbol, domain.SideSell, cfg.Quantity)
		if err != nil {
			return nil, err
		}
		orders = append(orders, buy, sell)
	}
	return orders, nil
}
