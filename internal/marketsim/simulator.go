// Package marketsim replays dated orders against historical closes and
// produces the resulting equity curve. Fills are unconstrained: every order
// executes in full at the same-day close, cash and holdings may go negative.
// Same-day close fills carry a small optimistic bias versus next-open fills;
// results are comparable across runs, not broker-accurate.
package marketsim

import (
	"errors"
	"fmt"
	"time"

	"equity-strategy-lab/internal/domain"
	"equity-strategy-lab/internal/stats"
)

// Simulator errors.
var (
	ErrNoOrders      = errors.New("no orders to simulate")
	ErrBadPriceField = errors.New("price field must be close or adj_close")
)

// Config parameterizes one simulation run.
type Config struct {
	// StartingCash is the initial all-cash portfolio value.
	StartingCash float64
	// PriceField selects the fill/valuation series. Raw and adjusted closes
	// give materially different results, so the caller must choose.
	PriceField domain.Field
}

// Validate checks the config.
func (c Config) Validate() error {
	if c.PriceField != domain.FieldClose && c.PriceField != domain.FieldAdjClose {
		return fmt.Errorf("%w: %q", ErrBadPriceField, c.PriceField)
	}
	return nil
}

// Result is the outcome of one simulation run.
type Result struct {
	// EquityCurve holds one valuation per trading day, in calendar order.
	EquityCurve []domain.FundValueRecord
	// Final is the portfolio after the last trading day.
	Final domain.Portfolio
	// Summary is the statistics summary of the equity curve.
	Summary *stats.Summary
	// Skipped lists orders dated outside the trading calendar. They are
	// never executed and never fatal; callers should surface them as a data
	// quality signal.
	Skipped []domain.Order
}

// Simulator replays order lists against one aligned price history.
type Simulator struct {
	cfg    Config
	prices *domain.Frame
}

// New creates a simulator over a price history.
func New(history *domain.History, cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	prices, err := history.Frame(cfg.PriceField)
	if err != nil {
		return nil, err
	}
	return &Simulator{cfg: cfg, prices: prices}, nil
}

// Apply executes one day's orders against a portfolio at the given day's
// closes. It is pure: the input portfolio is unchanged.
func (s *Simulator) Apply(portfolio domain.Portfolio, dayIndex int, orders []domain.Order) (domain.Portfolio, error) {
	for _, o := range orders {
		px, err := s.prices.At(dayIndex, o.Symbol)
		if err != nil {
			return domain.Portfolio{}, fmt.Errorf("price %s on %s: %w", o.Symbol, s.prices.Calendar().Day(dayIndex).Format("2006-01-02"), err)
		}
		shares := o.SignedQuantity()
		portfolio = portfolio.WithTrade(o.Symbol, shares, -float64(shares)*px)
	}
	return portfolio, nil
}

// Run replays all orders chronologically and values the portfolio at every
// trading day's close, applying that day's orders first.
func (s *Simulator) Run(orders []domain.Order) (*Result, error) {
	if len(orders) == 0 {
		return nil, ErrNoOrders
	}
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return nil, err
		}
	}

	calendar := s.prices.Calendar()

	// Bucket orders by day index up front so the main pass is one scan over
	// the calendar regardless of order count.
	byDay := make(map[int][]domain.Order)
	var skipped []domain.Order
	for _, o := range orders {
		i, ok := calendar.Index(o.Date)
		if !ok {
			skipped = append(skipped, o)
			continue
		}
		byDay[i] = append(byDay[i], o)
	}

	portfolio := domain.NewPortfolio(s.cfg.StartingCash)
	curve := make([]domain.FundValueRecord, 0, calendar.Len())
	for i := 0; i < calendar.Len(); i++ {
		var err error
		portfolio, err = s.Apply(portfolio, i, byDay[i])
		if err != nil {
			return nil, err
		}

		value, err := portfolio.Value(s.priceAt(i))
		if err != nil {
			return nil, err
		}
		curve = append(curve, domain.FundValueRecord{Date: calendar.Day(i), Value: value})
	}

	summary, err := stats.Summarize(curveValues(curve))
	if err != nil {
		return nil, fmt.Errorf("summarize equity curve: %w", err)
	}

	return &Result{
		EquityCurve: curve,
		Final:       portfolio,
		Summary:     summary,
		Skipped:     skipped,
	}, nil
}

func (s *Simulator) priceAt(dayIndex int) func(symbol string) (float64, error) {
	return func(symbol string) (float64, error) {
		return s.prices.At(dayIndex, symbol)
	}
}

func curveValues(curve []domain.FundValueRecord) []float64 {
	out := make([]float64, len(curve))
	for i, r := range curve {
		out[i] = r.Value
	}
	return out
}

// OrderSymbols returns the distinct symbols referenced by the orders, in
// first-appearance order. Used to size the history load before a run.
func OrderSymbols(orders []domain.Order) []string {
	seen := make(map[string]struct{}, len(orders))
	var out []string
	for _, o := range orders {
		if _, ok := seen[o.Symbol]; ok {
			continue
		}
		seen[o.Symbol] = struct{}{}
		out = append(out, o.Symbol)
	}
	return out
}

// OrderDateRange returns the earliest and latest order dates.
func OrderDateRange(orders []domain.Order) (start, end time.Time, err error) {
	if len(orders) == 0 {
		return time.Time{}, time.Time{}, ErrNoOrders
	}
	start, end = orders[0].Date, orders[0].Date
	for _, o := range orders[1:] {
		if o.Date.Before(start) {
			start = o.Date
		}
		if o.Date.After(end) {
			end = o.Date
		}
	}
	return start, end, nil
}
